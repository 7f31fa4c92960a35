package main

import (
	"context"
	"errors"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

const testPassword = "testpassword123"

var testUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
	{Email: "alice.cooper@example.com", Username: "alicecooper", FirstName: "Alice", LastName: "Cooper"},
}

var defaultTags = []types.TagView{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate database")
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	users := service.NewUserService(userRepo, nil)
	catalog := service.NewCatalogService(repository.NewTagRepository(db), repository.NewIngredientRepository(db))

	logging.Info().Msg("Creating test users...")
	created := 0
	for _, req := range testUsers {
		req.Password = testPassword
		if _, err := users.Register(ctx, req); err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				logging.Info().Str("email", req.Email).Msg("User already exists, skipping")
				continue
			}
			logging.Fatal().Err(err).Str("email", req.Email).Msg("Failed to create user")
		}
		created++
		logging.Info().Str("email", req.Email).Str("username", req.Username).Msg("Created user")
	}

	if _, err := catalog.ImportTags(ctx, defaultTags); err != nil {
		var conflict *service.ConflictError
		if !errors.As(err, &conflict) {
			logging.Fatal().Err(err).Msg("Failed to create tags")
		}
		logging.Info().Msg("Default tags already present, skipping")
	}

	logging.Info().
		Int("created", created).
		Str("password", testPassword).
		Msg("Test users ready")
}
