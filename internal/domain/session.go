package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Fixed-point money
	"gorm.io/gorm"                  // Soft delete marker
)

// Game types accepted for a session
const (
	GameNLH = "NLH" // No-limit hold'em
	GamePLO = "PLO" // Pot-limit Omaha
)

// Session Model, a single ledger entry owned by one user
type Session struct {
	ID             uint            `gorm:"primaryKey" json:"id"`                                  // Primary key
	UserID         uint            `gorm:"index;not null" json:"user_id"`                         // Owner, immutable
	BuyInAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"buy_in_amount"`      // Amount per buy-in
	CashOutAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cash_out_amount"`    // Amount taken off the table
	NumberOfBuyIns int             `gorm:"not null" json:"number_of_buy_ins"`                     // Buy-ins used
	Stakes         string          `gorm:"size:32;not null" json:"stakes"`                        // Blinds, e.g. 1/3
	GameType       string          `gorm:"size:8;not null" json:"game_type"`                      // NLH or PLO
	Location       string          `gorm:"size:255;not null" json:"location"`                     // Where it was played
	SessionDate    time.Time       `gorm:"type:date;index;not null" json:"session_date"`          // Calendar date
	Notes          *string         `gorm:"type:text" json:"notes"`                                // Optional notes
	WinLoss        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"win_loss"`           // Derived profit or loss
	CreatedAt      time.Time       `json:"created_at"`                                            // Creation time
	UpdatedAt      time.Time       `json:"updated_at"`                                            // Last change
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`                     // Soft delete marker
}

// ComputeWinLoss returns cash out minus the total bought in
func ComputeWinLoss(buyIn, cashOut decimal.Decimal, buyIns int) decimal.Decimal {
	return cashOut.Sub(buyIn.Mul(decimal.NewFromInt(int64(buyIns))))
}

// Recompute refreshes the stored win/loss from the row's own fields
func (s *Session) Recompute() {
	s.WinLoss = ComputeWinLoss(s.BuyInAmount, s.CashOutAmount, s.NumberOfBuyIns)
}
