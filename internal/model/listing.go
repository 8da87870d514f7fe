package model

import (
	"time"

	"gorm.io/gorm"

	"jeonse-ledger-backend/internal/payment"
)

// Listing holds the financial and physical terms of one rental unit.
type Listing struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatorID uint `gorm:"<-:create;index;not null" json:"creator_id"` // set once, on insert

	JeonseDepositAmount    int64   `gorm:"not null;default:0" json:"jeonse_deposit_amount"`
	WolseDepositAmount     int64   `gorm:"not null;default:0" json:"wolse_deposit_amount"`
	WolseMonthlyPayment    int64   `gorm:"not null;default:0" json:"wolse_monthly_payment"`
	GwanlibiMonthlyPayment int64   `gorm:"not null;default:0" json:"gwanlibi_monthly_payment"`
	AnnualInterestRate     float64 `gorm:"not null;default:0" json:"annual_interest_rate"`
	TotalMonthlyPayment    int64   `gorm:"not null;default:0;index" json:"total_monthly_payment"`

	TotalArea         float64 `gorm:"not null;default:0" json:"total_area"`
	NumberOfRooms     int     `gorm:"not null;default:0" json:"number_of_rooms"`
	NumberOfBathrooms int     `gorm:"not null;default:0" json:"number_of_bathrooms"`
	Comment           string  `gorm:"type:text;not null;default:''" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terms returns the inputs of the monthly payment derivation.
func (l *Listing) Terms() payment.Terms {
	return payment.Terms{
		JeonseDepositAmount:    l.JeonseDepositAmount,
		WolseDepositAmount:     l.WolseDepositAmount,
		AnnualInterestRate:     l.AnnualInterestRate,
		WolseMonthlyPayment:    l.WolseMonthlyPayment,
		GwanlibiMonthlyPayment: l.GwanlibiMonthlyPayment,
	}
}

// Recompute overwrites TotalMonthlyPayment from the current terms.
func (l *Listing) Recompute() {
	l.TotalMonthlyPayment = payment.Total(l.Terms())
}

// BeforeSave keeps the derived total in step with every write.
func (l *Listing) BeforeSave(tx *gorm.DB) error {
	l.Recompute()
	return nil
}
