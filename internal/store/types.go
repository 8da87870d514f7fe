package store

import (
	"errors"
	"math"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate record")
)

// ListingFilter narrows a creator's listings. Nil bounds are ignored; set
// bounds are inclusive upper limits.
type ListingFilter struct {
	MaxJeonseDepositAmount *int64
	MaxWolseDepositAmount  *int64
	MaxTotalMonthlyPayment *int64
}

// Page selects one page of an ordered result set.
type Page struct {
	Number  int    // 1-based
	Size    int
	OrderBy string // column name, already validated by the caller
	Desc    bool
}

// Offset returns the number of rows to skip for this page. Offsets that
// would overflow saturate at math.MaxInt, which selects no rows.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}
