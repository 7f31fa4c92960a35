package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/internal/repository"
)

// ShoppingListFilename is the attachment name of the downloaded report.
const ShoppingListFilename = "shopping_list.txt"

// ReportLine is one aggregated entry of a shopping list.
type ReportLine struct {
	Name   string
	Amount int
	Unit   string
}

func (l ReportLine) String() string {
	return fmt.Sprintf("%s - %d %s", l.Name, l.Amount, l.Unit)
}

// Aggregate sums amounts per ingredient name in first-encounter order.
// Lines sharing a name are merged even when their ingredient ids differ; the
// unit of the first contributing line is kept and units are never converted.
func Aggregate(lines []repository.LineRow) []ReportLine {
	index := make(map[string]int, len(lines))
	report := make([]ReportLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.Name]; ok {
			report[i].Amount += line.Amount
			continue
		}
		index[line.Name] = len(report)
		report = append(report, ReportLine{Name: line.Name, Amount: line.Amount, Unit: line.MeasurementUnit})
	}
	return report
}

// FormatReport joins report lines with newlines.
func FormatReport(report []ReportLine) string {
	out := make([]string, len(report))
	for i, line := range report {
		out[i] = line.String()
	}
	return strings.Join(out, "\n")
}

type ShoppingListService struct {
	recipes *repository.RecipeRepository
}

var _ IShoppingListService = (*ShoppingListService)(nil)

func NewShoppingListService(recipes *repository.RecipeRepository) *ShoppingListService {
	return &ShoppingListService{recipes: recipes}
}

// BuildReport aggregates every line of every recipe in the user's cart.
func (s *ShoppingListService) BuildReport(ctx context.Context, userID uint) ([]ReportLine, error) {
	lines, err := s.recipes.CartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load shopping cart: %w", err)
	}
	return Aggregate(lines), nil
}

// Render returns the plain-text report for the user.
func (s *ShoppingListService) Render(ctx context.Context, userID uint) (string, error) {
	report, err := s.BuildReport(ctx, userID)
	if err != nil {
		return "", err
	}
	return FormatReport(report), nil
}
