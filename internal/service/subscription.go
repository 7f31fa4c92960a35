package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/repository"
	"github.com/foodgram/backend/internal/types"
)

// Unlimited disables the per-author recipe preview limit.
const Unlimited = -1

// ParseRecipesLimit reads the recipes_limit query value. Absent, unparseable
// or negative values mean Unlimited.
func ParseRecipesLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return Unlimited
	}
	return n
}

// SubscriptionService manages follow edges between users.
type SubscriptionService struct {
	users   *repository.UserRepository
	recipes *repository.RecipeRepository
	follows *repository.EdgeRepository
	views   *ViewBuilder
}

var _ ISubscriptionService = (*SubscriptionService)(nil)

func NewSubscriptionService(
	users *repository.UserRepository,
	recipes *repository.RecipeRepository,
	follows *repository.EdgeRepository,
	views *ViewBuilder,
) *SubscriptionService {
	return &SubscriptionService{users: users, recipes: recipes, follows: follows, views: views}
}

// Subscribe makes the viewer follow authorID.
func (s *SubscriptionService) Subscribe(ctx context.Context, viewer Viewer, authorID uint, recipesLimit int) (*types.SubscriptionView, error) {
	if viewer.UserID == authorID {
		return nil, ErrSelfFollow
	}
	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}
	res, err := s.follows.InsertIfAbsent(ctx, viewer.UserID, authorID)
	if err != nil {
		return nil, err
	}
	if res == repository.AlreadyExisted {
		return nil, &ConflictError{Message: "Already subscribed."}
	}
	logging.Ctx(ctx).Info().
		Str("component", "subscriptions").
		Uint("follower_id", viewer.UserID).
		Uint("followee_id", authorID).
		Msg("Subscribed")

	views, err := s.render(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Unsubscribe removes the follow edge from the viewer to authorID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, viewer Viewer, authorID uint) error {
	if viewer.UserID == authorID {
		return ErrSelfFollow
	}
	if _, err := s.author(ctx, authorID); err != nil {
		return err
	}
	found, err := s.follows.Delete(ctx, viewer.UserID, authorID)
	if err != nil {
		return err
	}
	if !found {
		return &ConflictError{Message: "Subscription not found."}
	}
	return nil
}

// List returns the authors the viewer follows, most recent follow first.
func (s *SubscriptionService) List(ctx context.Context, viewer Viewer, page repository.Page, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	total, err := s.follows.Count(ctx, viewer.UserID)
	if err != nil {
		return nil, 0, err
	}
	ids, err := s.follows.Objects(ctx, viewer.UserID, true, page)
	if err != nil {
		return nil, 0, err
	}
	byID, err := s.users.ByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	views, err := s.render(ctx, users, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// render builds subscription views; every listed author is followed by construction.
func (s *SubscriptionService) render(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionView, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]types.SubscriptionView, 0, len(authors))
	for _, a := range authors {
		recipes, err := s.recipes.ByAuthor(ctx, a.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		briefs := make([]types.RecipeBrief, 0, len(recipes))
		for _, r := range recipes {
			briefs = append(briefs, s.views.Brief(r))
		}
		views = append(views, types.SubscriptionView{
			UserView:     userView(a, true),
			Recipes:      briefs,
			RecipesCount: counts[a.ID],
		})
	}
	return views, nil
}

func (s *SubscriptionService) author(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "user"}
	}
	return user, err
}
