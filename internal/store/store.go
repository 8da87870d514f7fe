package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jeonse-ledger-backend/internal/logger"
	"jeonse-ledger-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateActor(ctx context.Context, actor *model.Actor) error
	ActorByID(ctx context.Context, id uint) (*model.Actor, error)
	ActorByLogin(ctx context.Context, login string) (*model.Actor, error)
	DeleteActor(ctx context.Context, id uint) error

	CreateListing(ctx context.Context, listing *model.Listing) error
	ListingByID(ctx context.Context, id uint) (*model.Listing, error)
	ListingsByCreator(ctx context.Context, creatorID uint, filter ListingFilter, page Page) ([]model.Listing, int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// CreateActor inserts a new actor.
func (s *gormStore) CreateActor(ctx context.Context, actor *model.Actor) error {
	if err := s.db.WithContext(ctx).Create(actor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create actor %q: %w", actor.Username, err)
	}
	return nil
}

// ActorByID fetches an actor by primary key.
func (s *gormStore) ActorByID(ctx context.Context, id uint) (*model.Actor, error) {
	var actor model.Actor
	if err := s.db.WithContext(ctx).First(&actor, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &actor, nil
}

// ActorByLogin fetches an actor by email or username.
func (s *gormStore) ActorByLogin(ctx context.Context, login string) (*model.Actor, error) {
	var actor model.Actor
	if err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", login, login).
		First(&actor).Error; err != nil {
		return nil, notFound(err)
	}
	return &actor, nil
}

// DeleteActor removes an actor together with every listing it created.
func (s *gormStore) DeleteActor(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SQLite does not enforce the cascade unless foreign keys are on, so
		// the listings are removed explicitly.
		res := tx.Where("creator_id = ?", id).Delete(&model.Listing{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete listings of actor %d: %w", id, res.Error)
		}
		logger.Debugf("deleted %d listings of actor %d", res.RowsAffected, id)

		res = tx.Delete(&model.Actor{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete actor %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateListing inserts a listing. The model's BeforeSave hook derives the
// total monthly payment as part of the same write.
func (s *gormStore) CreateListing(ctx context.Context, listing *model.Listing) error {
	if err := s.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing for actor %d: %w", listing.CreatorID, err)
	}
	return nil
}

// ListingByID fetches a listing by primary key regardless of owner.
func (s *gormStore) ListingByID(ctx context.Context, id uint) (*model.Listing, error) {
	var listing model.Listing
	if err := s.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

// ListingsByCreator returns one page of a creator's listings and the total
// number of rows matching the filter.
func (s *gormStore) ListingsByCreator(ctx context.Context, creatorID uint, filter ListingFilter, page Page) ([]model.Listing, int64, error) {
	// Session makes q safe to reuse for both the count and the page query.
	q := applyFilter(s.db.WithContext(ctx).Model(&model.Listing{}).Where("creator_id = ?", creatorID), filter).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings of actor %d: %w", creatorID, err)
	}

	orderBy := page.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	pageQuery := q.Order(clause.OrderByColumn{Column: clause.Column{Name: orderBy}, Desc: page.Desc})
	if orderBy != "id" {
		// Stable pages when the sort column has ties.
		pageQuery = pageQuery.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	if page.Size > 0 {
		pageQuery = pageQuery.Limit(page.Size).Offset(page.Offset())
	}

	listings := make([]model.Listing, 0)
	if err := pageQuery.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list listings of actor %d: %w", creatorID, err)
	}
	return listings, total, nil
}

func applyFilter(q *gorm.DB, f ListingFilter) *gorm.DB {
	if f.MaxJeonseDepositAmount != nil {
		q = q.Where("jeonse_deposit_amount <= ?", *f.MaxJeonseDepositAmount)
	}
	if f.MaxWolseDepositAmount != nil {
		q = q.Where("wolse_deposit_amount <= ?", *f.MaxWolseDepositAmount)
	}
	if f.MaxTotalMonthlyPayment != nil {
		q = q.Where("total_monthly_payment <= ?", *f.MaxTotalMonthlyPayment)
	}
	return q
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
