package main

import (
	"context"
	"flag"
	"os"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	kind := flag.String("kind", "ingredients", "What to import: ingredients or tags")
	file := flag.String("file", "", "Path to a JSON or CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if *file == "" {
		logging.Fatal().Msg("-file is required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("Failed to read import file")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate database")
	}

	catalog := service.NewCatalogService(repository.NewTagRepository(db), repository.NewIngredientRepository(db))
	if err := run(context.Background(), catalog, *kind, *file, data); err != nil {
		logging.Fatal().Err(err).Str("kind", *kind).Msg("Import failed")
	}
}

func run(ctx context.Context, catalog service.ICatalogService, kind, path string, data []byte) error {
	switch kind {
	case "ingredients":
		records, err := parseIngredients(path, data)
		if err != nil {
			return err
		}
		written, err := catalog.ImportIngredients(ctx, records)
		if err != nil {
			return err
		}
		logging.Info().Int("records", len(records)).Int64("written", written).Msg("Ingredients imported")
	case "tags":
		records, err := parseTags(path, data)
		if err != nil {
			return err
		}
		written, err := catalog.ImportTags(ctx, records)
		if err != nil {
			return err
		}
		logging.Info().Int("written", written).Msg("Tags imported")
	default:
		return &service.ValidationError{Fields: map[string][]string{"kind": {"must be ingredients or tags"}}}
	}
	return nil
}
