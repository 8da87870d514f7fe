// Package listing implements the create, list and read operations on
// listings for an authenticated actor.
package listing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"jeonse-ledger-backend/internal/access"
	"jeonse-ledger-backend/internal/logger"
	"jeonse-ledger-backend/internal/model"
	"jeonse-ledger-backend/internal/payment"
	"jeonse-ledger-backend/internal/store"
	"jeonse-ledger-backend/internal/validation"
)

// ErrNotFound is returned when the requested listing does not exist.
var ErrNotFound = errors.New("listing not found")

// ListAccessible lists the listings an actor may see.
type ListAccessible interface {
	List(ctx context.Context, actor *model.Actor, q Query) (*Result, error)
}

// ReadAccessible reads a single listing on behalf of an actor.
type ReadAccessible interface {
	Get(ctx context.Context, actor *model.Actor, id uint) (*model.Listing, error)
}

// Creatable creates listings owned by the acting actor.
type Creatable interface {
	Create(ctx context.Context, actor *model.Actor, in CreateInput) (*model.Listing, error)
}

// CreateInput carries the caller-supplied fields of a new listing. It has no
// creator and no total: both are set server-side.
type CreateInput struct {
	JeonseDepositAmount    int64   `json:"jeonse_deposit_amount" validate:"min=0,max=1000000000000000"`
	WolseDepositAmount     int64   `json:"wolse_deposit_amount" validate:"min=0,max=1000000000000000"`
	WolseMonthlyPayment    int64   `json:"wolse_monthly_payment" validate:"min=0,max=2147483647"`
	GwanlibiMonthlyPayment int64   `json:"gwanlibi_monthly_payment" validate:"min=0,max=2147483647"`
	AnnualInterestRate     float64 `json:"annual_interest_rate" validate:"min=0,max=100"`
	TotalArea              float64 `json:"total_area" validate:"min=0"`
	NumberOfRooms          int     `json:"number_of_rooms" validate:"min=0"`
	NumberOfBathrooms      int     `json:"number_of_bathrooms" validate:"min=0"`
	Comment                string  `json:"comment"`
}

// Query selects a filtered page of listings.
type Query struct {
	Filter store.ListingFilter
	Page   store.Page
}

// Result is one page of listings.
type Result struct {
	Listings []model.Listing
	Total    int64
	Page     store.Page
}

// Service implements ListAccessible, ReadAccessible and Creatable on top of
// a store.
type Service struct {
	store    store.Store
	validate *validation.Validator
}

// NewService creates a listing service backed by s.
func NewService(s store.Store) *Service {
	return &Service{
		store:    s,
		validate: validation.New(),
	}
}

// Create validates in and persists a listing owned by actor.
func (s *Service) Create(ctx context.Context, actor *model.Actor, in CreateInput) (*model.Listing, error) {
	if err := access.Authenticated(actor); err != nil {
		return nil, err
	}
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	listing := &model.Listing{
		CreatorID:              actor.ID,
		JeonseDepositAmount:    in.JeonseDepositAmount,
		WolseDepositAmount:     in.WolseDepositAmount,
		WolseMonthlyPayment:    in.WolseMonthlyPayment,
		GwanlibiMonthlyPayment: in.GwanlibiMonthlyPayment,
		AnnualInterestRate:     in.AnnualInterestRate,
		TotalArea:              in.TotalArea,
		NumberOfRooms:          in.NumberOfRooms,
		NumberOfBathrooms:      in.NumberOfBathrooms,
		Comment:                in.Comment,
	}
	if err := access.CanAccess(actor, listing, access.Create); err != nil {
		return nil, err
	}

	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	logger.WithField("actor_id", actor.ID).
		WithField("listing_id", listing.ID).
		Infof("listing created, total monthly payment %d", listing.TotalMonthlyPayment)
	return listing, nil
}

// Validate checks the field constraints of in without touching the store.
func (s *Service) Validate(in CreateInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	// NaN compares false against every bound, so min and max let it through.
	for name, v := range map[string]float64{
		"annual_interest_rate": in.AnnualInterestRate,
		"total_area":           in.TotalArea,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validation.NewError(name, "must be a finite number")
		}
	}
	if _, err := payment.Checked(in.terms()); err != nil {
		return validation.NewError("total_monthly_payment", "must not exceed "+strconv.FormatInt(math.MaxInt64, 10))
	}
	return nil
}

func (in CreateInput) terms() payment.Terms {
	return payment.Terms{
		JeonseDepositAmount:    in.JeonseDepositAmount,
		WolseDepositAmount:     in.WolseDepositAmount,
		AnnualInterestRate:     in.AnnualInterestRate,
		WolseMonthlyPayment:    in.WolseMonthlyPayment,
		GwanlibiMonthlyPayment: in.GwanlibiMonthlyPayment,
	}
}

// List returns the actor's own listings matching q.
func (s *Service) List(ctx context.Context, actor *model.Actor, q Query) (*Result, error) {
	if err := access.CanAccess(actor, nil, access.List); err != nil {
		return nil, err
	}

	listings, total, err := s.store.ListingsByCreator(ctx, actor.ID, q.Filter, q.Page)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return &Result{Listings: listings, Total: total, Page: q.Page}, nil
}

// Get returns the listing with the given id if actor created it. A missing
// listing yields ErrNotFound; someone else's listing yields
// access.ErrForbidden.
func (s *Service) Get(ctx context.Context, actor *model.Actor, id uint) (*model.Listing, error) {
	if err := access.Authenticated(actor); err != nil {
		return nil, err
	}

	listing, err := s.store.ListingByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}

	if err := access.CanAccess(actor, listing, access.Read); err != nil {
		logger.WithField("actor_id", actor.ID).
			WithField("listing_id", id).
			Warnf("refused read of listing owned by actor %d", listing.CreatorID)
		return nil, err
	}
	return listing, nil
}
