package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jeonse-ledger-backend/config"
	"jeonse-ledger-backend/internal/api"
	"jeonse-ledger-backend/internal/auth"
	"jeonse-ledger-backend/internal/db"
	"jeonse-ledger-backend/internal/listing"
	"jeonse-ledger-backend/internal/model"
	"jeonse-ledger-backend/internal/store"
)

type listingRow struct {
	model.Listing
	DetailURL string `json:"detail_url"`
}

type listingPage struct {
	Items    []listingRow `json:"items"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	NumPages int          `json:"num_pages"`
	Total    int64        `json:"total"`
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) signup(email string) {
	w := c.do(http.MethodPost, "/api/accounts/signup", map[string]string{
		"email":     email,
		"password1": "testpassword",
		"password2": "testpassword",
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	c.token = resp.Token
}

func (c *client) list(query string) listingPage {
	w := c.do(http.MethodGet, "/api/listings"+query, nil)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var page listingPage
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &page))
	return page
}

// TestListingLifecycle drives the whole HTTP surface against an in-memory
// SQLite database: accounts, creation with derived totals, owner-scoped
// listing, filtering, paging and refused cross-owner reads.
func TestListingLifecycle(t *testing.T) {
	// --- Test Setup ---
	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	gin.SetMode(gin.TestMode)
	appStore := store.NewGormStore(testDB)
	accounts := auth.NewService(appStore, auth.NewHasher(4), auth.NewTokens("integration-secret", time.Hour))
	router := api.NewRouter(&config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	}, accounts, listing.NewService(appStore))

	anonymous := &client{t: t, router: router}
	alice := &client{t: t, router: router}
	bob := &client{t: t, router: router}

	t.Run("Anonymous access is refused", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/api/listings", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodPost, "/api/listings", map[string]int{}).Code)
		assert.Equal(t, http.StatusUnauthorized, anonymous.do(http.MethodGet, "/api/listings/1", nil).Code)
	})

	alice.signup("alice@example.com")
	bob.signup("bob@example.com")

	var aliceFirst listingRow
	t.Run("Create derives total and ignores injected creator", func(t *testing.T) {
		var bobID uint
		w := bob.do(http.MethodGet, "/api/accounts/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me model.Actor
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
		bobID = me.ID

		w = alice.do(http.MethodPost, "/api/listings", map[string]any{
			"creator_id":               bobID,
			"total_monthly_payment":    123456,
			"jeonse_deposit_amount":    1,
			"wolse_deposit_amount":     1,
			"wolse_monthly_payment":    1,
			"gwanlibi_monthly_payment": 1,
			"annual_interest_rate":     1,
			"total_area":               1,
			"number_of_rooms":          1,
			"number_of_bathrooms":      1,
			"comment":                  "comment",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &aliceFirst))

		assert.Equal(t, int64(2), aliceFirst.TotalMonthlyPayment)
		assert.NotEqual(t, bobID, aliceFirst.CreatorID)
		assert.Equal(t, "comment", aliceFirst.Comment)
		assert.Equal(t, fmt.Sprintf("/api/listings/%d", aliceFirst.ID), aliceFirst.DetailURL)
		assert.Equal(t, aliceFirst.DetailURL, w.Header().Get("Location"))

		var stored model.Listing
		require.NoError(t, testDB.First(&stored, aliceFirst.ID).Error)
		assert.Equal(t, int64(2), stored.TotalMonthlyPayment)
		assert.Equal(t, aliceFirst.CreatorID, stored.CreatorID)
	})

	t.Run("List is scoped, cached and refreshed on create", func(t *testing.T) {
		page := alice.list("")
		require.Len(t, page.Items, 1)

		for _, body := range []map[string]any{
			{"jeonse_deposit_amount": 1_000_000, "annual_interest_rate": 6.0},
			{"wolse_monthly_payment": 500, "gwanlibi_monthly_payment": 50},
			{"wolse_deposit_amount": 10_000_000, "annual_interest_rate": 4.8, "wolse_monthly_payment": 700_000},
		} {
			w := alice.do(http.MethodPost, "/api/listings", body)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}
		w := bob.do(http.MethodPost, "/api/listings", map[string]any{"wolse_monthly_payment": 9})
		require.Equal(t, http.StatusCreated, w.Code)

		page = alice.list("")
		assert.Equal(t, int64(4), page.Total)
		for _, row := range page.Items {
			assert.Equal(t, aliceFirst.CreatorID, row.CreatorID)
		}

		bobPage := bob.list("")
		require.Len(t, bobPage.Items, 1)
		assert.Equal(t, int64(9), bobPage.Items[0].TotalMonthlyPayment)
	})

	t.Run("Filter, sort and page", func(t *testing.T) {
		page := alice.list("?total_monthly_payment_lte=5000&sort=-total_monthly_payment")
		totals := make([]int64, 0, len(page.Items))
		for _, row := range page.Items {
			totals = append(totals, row.TotalMonthlyPayment)
		}
		assert.Equal(t, []int64{5_000, 550, 2}, totals)

		page = alice.list("?jeonse_deposit_amount_lte=0&wolse_deposit_amount_lte=0")
		require.Len(t, page.Items, 1)
		assert.Equal(t, int64(550), page.Items[0].TotalMonthlyPayment)

		page = alice.list("?page=2&page_size=3&sort=total_monthly_payment")
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 2, page.NumPages)
		require.Len(t, page.Items, 1)
		assert.Equal(t, int64(740_000), page.Items[0].TotalMonthlyPayment)
	})

	t.Run("Detail is owner-only and leaks nothing", func(t *testing.T) {
		w := alice.do(http.MethodGet, aliceFirst.DetailURL, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got listingRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, aliceFirst.ID, got.ID)

		foreign := bob.do(http.MethodGet, aliceFirst.DetailURL, nil)
		missing := bob.do(http.MethodGet, "/api/listings/999999", nil)
		assert.Equal(t, http.StatusNotFound, foreign.Code)
		assert.Equal(t, http.StatusNotFound, missing.Code)
		assert.Equal(t, missing.Body.String(), foreign.Body.String())
	})
}
