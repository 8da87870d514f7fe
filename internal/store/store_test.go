package store

import (
	"context"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jeonse-ledger-backend/internal/model"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteDB opens a private in-memory database with the schema migrated.
func newSQLiteDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Actor{}, &model.Listing{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func int64Ptr(v int64) *int64 { return &v }

func seedActor(t *testing.T, s Store, name string) *model.Actor {
	actor := &model.Actor{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateActor(context.Background(), actor))
	return actor
}

func TestGormStore_ListingByID_NotFound(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "listings" WHERE "listings"."id" = $1`)).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "creator_id"}))

	listing, err := s.ListingByID(context.Background(), 7)
	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ActorByLogin(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "actors" WHERE email = $1 OR username = $2`)).
		WithArgs("kim@example.com", "kim@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
			AddRow(3, "kim", "kim@example.com", "hash"))

	actor, err := s.ActorByLogin(context.Background(), "kim@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint(3), actor.ID)
	assert.Equal(t, "kim", actor.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteActor(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      error
	}{
		{
			name: "Deletes listings then actor",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "listings" WHERE creator_id = $1`)).
					WithArgs(3).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "actors" WHERE "actors"."id" = $1`)).
					WithArgs(3).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Missing actor rolls back",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "listings" WHERE creator_id = $1`)).
					WithArgs(3).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "actors" WHERE "actors"."id" = $1`)).
					WithArgs(3).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newMockDB(t)
			s := NewGormStore(gormDB)
			tc.mockExpectations(mock)

			err := s.DeleteActor(context.Background(), 3)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_CreateListingDerivesTotal(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	owner := seedActor(t, s, "owner")

	listing := &model.Listing{
		CreatorID:              owner.ID,
		JeonseDepositAmount:    1,
		WolseDepositAmount:     1,
		AnnualInterestRate:     1,
		WolseMonthlyPayment:    1,
		GwanlibiMonthlyPayment: 1,
		TotalMonthlyPayment:    1_000,
	}
	require.NoError(t, s.CreateListing(context.Background(), listing))
	assert.NotZero(t, listing.ID)

	stored, err := s.ListingByID(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.TotalMonthlyPayment)
	assert.Equal(t, owner.ID, stored.CreatorID)
}

func TestGormStore_ListingsByCreator(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	ctx := context.Background()
	owner := seedActor(t, s, "owner")
	other := seedActor(t, s, "other")

	for _, l := range []model.Listing{
		{CreatorID: owner.ID, JeonseDepositAmount: 100_000_000, AnnualInterestRate: 3.6}, // 300_000
		{CreatorID: owner.ID, WolseDepositAmount: 10_000_000, WolseMonthlyPayment: 500_000},
		{CreatorID: owner.ID, WolseMonthlyPayment: 700_000, GwanlibiMonthlyPayment: 50_000},
		{CreatorID: other.ID, WolseMonthlyPayment: 1},
	} {
		listing := l
		require.NoError(t, s.CreateListing(ctx, &listing))
	}

	testCases := []struct {
		name          string
		creatorID     uint
		filter        ListingFilter
		page          Page
		expectedTotal int64
		expectedPays  []int64
	}{
		{
			name:          "All of owner's listings by id",
			creatorID:     owner.ID,
			expectedTotal: 3,
			expectedPays:  []int64{300_000, 500_000, 750_000},
		},
		{
			name:          "Other actor sees only their own",
			creatorID:     other.ID,
			expectedTotal: 1,
			expectedPays:  []int64{1},
		},
		{
			name:          "Filter on total monthly payment",
			creatorID:     owner.ID,
			filter:        ListingFilter{MaxTotalMonthlyPayment: int64Ptr(500_000)},
			expectedTotal: 2,
			expectedPays:  []int64{300_000, 500_000},
		},
		{
			name:          "Filter on jeonse deposit",
			creatorID:     owner.ID,
			filter:        ListingFilter{MaxJeonseDepositAmount: int64Ptr(0)},
			expectedTotal: 2,
			expectedPays:  []int64{500_000, 750_000},
		},
		{
			name:          "Filter on wolse deposit",
			creatorID:     owner.ID,
			filter:        ListingFilter{MaxWolseDepositAmount: int64Ptr(9_999_999)},
			expectedTotal: 2,
			expectedPays:  []int64{300_000, 750_000},
		},
		{
			name:          "Sorted descending and paged",
			creatorID:     owner.ID,
			page:          Page{Number: 1, Size: 2, OrderBy: "total_monthly_payment", Desc: true},
			expectedTotal: 3,
			expectedPays:  []int64{750_000, 500_000},
		},
		{
			name:          "Second page",
			creatorID:     owner.ID,
			page:          Page{Number: 2, Size: 2, OrderBy: "total_monthly_payment", Desc: true},
			expectedTotal: 3,
			expectedPays:  []int64{300_000},
		},
		{
			name:          "Page past the end",
			creatorID:     owner.ID,
			page:          Page{Number: 5, Size: 2},
			expectedTotal: 3,
			expectedPays:  []int64{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			listings, total, err := s.ListingsByCreator(ctx, tc.creatorID, tc.filter, tc.page)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, total)

			pays := make([]int64, 0, len(listings))
			for _, l := range listings {
				assert.Equal(t, tc.creatorID, l.CreatorID)
				pays = append(pays, l.TotalMonthlyPayment)
			}
			assert.Equal(t, tc.expectedPays, pays)
		})
	}
}

func TestGormStore_Actors(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t))
	ctx := context.Background()
	owner := seedActor(t, s, "owner")

	byEmail, err := s.ActorByLogin(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, byEmail.ID)

	byName, err := s.ActorByLogin(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, byName.ID)

	_, err = s.ActorByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := s.ActorByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", byID.Email)

	_, err = s.ActorByID(ctx, owner.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_DeleteActorCascades(t *testing.T) {
	db := newSQLiteDB(t)
	s := NewGormStore(db)
	ctx := context.Background()
	owner := seedActor(t, s, "owner")
	other := seedActor(t, s, "other")

	require.NoError(t, s.CreateListing(ctx, &model.Listing{CreatorID: owner.ID, WolseMonthlyPayment: 1}))
	require.NoError(t, s.CreateListing(ctx, &model.Listing{CreatorID: other.ID, WolseMonthlyPayment: 2}))

	require.NoError(t, s.DeleteActor(ctx, owner.ID))

	var remaining []model.Listing
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].CreatorID)

	_, err := s.ActorByID(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteActor(ctx, owner.ID), ErrNotFound)
}

func TestPage_Offset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 0, Size: 25}.Offset())
	assert.Equal(t, 0, Page{Number: 1, Size: 25}.Offset())
	assert.Equal(t, 50, Page{Number: 3, Size: 25}.Offset())
	assert.Equal(t, 9_999_900, Page{Number: 100_000, Size: 100}.Offset())
	assert.Equal(t, math.MaxInt, Page{Number: math.MaxInt, Size: 100}.Offset())
}
