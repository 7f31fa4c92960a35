package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertResult tells whether InsertIfAbsent wrote a new edge.
type InsertResult int

const (
	Created InsertResult = iota
	AlreadyExisted
)

// EdgeRepository stores a unique (subject, object) relation with a timestamp.
// Favorites, shopping cart membership and follows share this shape.
type EdgeRepository struct {
	db      *gorm.DB
	table   string
	subject string
	object  string
	stamp   string
}

// NewFavoriteRepository returns the user -> recipe favorites relation.
func NewFavoriteRepository(db *gorm.DB) *EdgeRepository {
	return &EdgeRepository{db: db, table: "favorites", subject: "user_id", object: "recipe_id", stamp: "added_at"}
}

// NewCartRepository returns the user -> recipe shopping cart relation.
func NewCartRepository(db *gorm.DB) *EdgeRepository {
	return &EdgeRepository{db: db, table: "shopping_cart_items", subject: "user_id", object: "recipe_id", stamp: "added_at"}
}

// NewFollowRepository returns the follower -> followee relation.
func NewFollowRepository(db *gorm.DB) *EdgeRepository {
	return &EdgeRepository{db: db, table: "follows", subject: "follower_id", object: "followee_id", stamp: "created_at"}
}

// InsertIfAbsent creates the edge unless it already exists. Concurrent
// duplicate inserts resolve through the unique index, never as an error.
func (r *EdgeRepository) InsertIfAbsent(ctx context.Context, subject, object uint) (InsertResult, error) {
	row := map[string]interface{}{
		r.subject: subject,
		r.object:  object,
		r.stamp:   time.Now().UTC(),
	}
	res := r.db.WithContext(ctx).
		Table(r.table).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return AlreadyExisted, nil
		}
		return Created, fmt.Errorf("insert into %s: %w", r.table, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return AlreadyExisted, nil
	}
	return Created, nil
}

// Delete removes the edge and reports whether it was present.
func (r *EdgeRepository) Delete(ctx context.Context, subject, object uint) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		"DELETE FROM "+r.table+" WHERE "+r.subject+" = ? AND "+r.object+" = ?",
		subject, object,
	)
	if res.Error != nil {
		return false, fmt.Errorf("delete from %s: %w", r.table, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MemberSet returns which of objects are linked to subject.
func (r *EdgeRepository) MemberSet(ctx context.Context, subject uint, objects []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(objects))
	if subject == 0 || len(objects) == 0 {
		return set, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Table(r.table).
		Where(r.subject+" = ? AND "+r.object+" IN ?", subject, uniqueIDs(objects)).
		Pluck(r.object, &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Objects lists the objects linked to subject, oldest edge first unless newestFirst.
func (r *EdgeRepository) Objects(ctx context.Context, subject uint, newestFirst bool, page Page) ([]uint, error) {
	order := r.stamp + " ASC, id ASC"
	if newestFirst {
		order = r.stamp + " DESC, id DESC"
	}
	var ids []uint
	q := r.db.WithContext(ctx).
		Table(r.table).
		Where(r.subject+" = ?", subject).
		Order(order)
	if err := page.apply(q).Pluck(r.object, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Count returns how many edges start at subject.
func (r *EdgeRepository) Count(ctx context.Context, subject uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(r.table).
		Where(r.subject+" = ?", subject).
		Count(&count).Error
	return count, err
}
