package api

import (
	"jeonse-ledger-backend/internal/auth"
	"jeonse-ledger-backend/internal/listing"
)

// ListingService is everything the HTTP layer needs from the listing core.
type ListingService interface {
	listing.ListAccessible
	listing.ReadAccessible
	listing.Creatable
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	accounts *auth.Service
	listings ListingService
}

// NewHandler creates a new API handler.
func NewHandler(accounts *auth.Service, listings ListingService) *Handler {
	return &Handler{
		accounts: accounts,
		listings: listings,
	}
}
