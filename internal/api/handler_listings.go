package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jeonse-ledger-backend/internal/listing"
	"jeonse-ledger-backend/internal/model"
	"jeonse-ledger-backend/internal/mw"
	"jeonse-ledger-backend/internal/parse"
)

// listingResponse is one table row: the listing plus its detail link.
type listingResponse struct {
	*model.Listing
	DetailURL string `json:"detail_url"`
}

type listingPageResponse struct {
	Items    []listingResponse `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	NumPages int               `json:"num_pages"`
	Total    int64             `json:"total"`
}

func detailURL(id uint) string {
	return fmt.Sprintf("/api/listings/%d", id)
}

// ListListings handles the GET /api/listings request.
func (h *Handler) ListListings(c *gin.Context) {
	q, err := parse.ListingQuery(c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.listings.List(c.Request.Context(), mw.Actor(c), q)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]listingResponse, 0, len(res.Listings))
	for i := range res.Listings {
		l := &res.Listings[i]
		items = append(items, listingResponse{Listing: l, DetailURL: detailURL(l.ID)})
	}

	numPages := 0
	if res.Page.Size > 0 {
		numPages = int((res.Total + int64(res.Page.Size) - 1) / int64(res.Page.Size))
	}
	c.JSON(http.StatusOK, listingPageResponse{
		Items:    items,
		Page:     res.Page.Number,
		PageSize: res.Page.Size,
		NumPages: numPages,
		Total:    res.Total,
	})
}

// GetListing handles the GET /api/listings/{id} request.
func (h *Handler) GetListing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	l, err := h.listings.Get(c.Request.Context(), mw.Actor(c), uint(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listingResponse{Listing: l, DetailURL: detailURL(l.ID)})
}

// CreateListing handles the POST /api/listings request. The creator is the
// authenticated actor; any creator or total in the body is ignored.
func (h *Handler) CreateListing(c *gin.Context) {
	var in listing.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}

	l, err := h.listings.Create(c.Request.Context(), mw.Actor(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", detailURL(l.ID))
	c.JSON(http.StatusCreated, listingResponse{Listing: l, DetailURL: detailURL(l.ID)})
}
