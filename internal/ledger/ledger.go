// Package ledger records poker sessions and keeps each user's running
// win/loss. Every read and write is scoped to the owning user; a session id
// belonging to someone else behaves exactly like a missing one.
package ledger

import (
	"context" // Request-scoped DB calls
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"time"    // Dates

	"poker_ledger/internal/domain" // Importing domain models
	"poker_ledger/internal/utils"  // Cache

	"github.com/shopspring/decimal" // Fixed-point money
	"github.com/sirupsen/logrus"    // Structured logging
	"gorm.io/gorm"                  // GORM ORM library
)

// SessionInput carries the fields of a new session
type SessionInput struct {
	BuyInAmount    decimal.Decimal
	CashOutAmount  decimal.Decimal
	NumberOfBuyIns int
	Stakes         string
	GameType       string
	Location       string
	SessionDate    time.Time
	Notes          *string
}

// SessionPatch is a sparse update; nil fields are left untouched
type SessionPatch struct {
	BuyInAmount    *decimal.Decimal
	CashOutAmount  *decimal.Decimal
	NumberOfBuyIns *int
	Stakes         *string
	GameType       *string
	Location       *string
	SessionDate    *time.Time
	Notes          *string
}

// Empty reports whether the patch names no field at all
func (p SessionPatch) Empty() bool {
	return p.BuyInAmount == nil && p.CashOutAmount == nil && p.NumberOfBuyIns == nil &&
		p.Stakes == nil && p.GameType == nil && p.Location == nil &&
		p.SessionDate == nil && p.Notes == nil
}

// touchesMoney reports whether a win/loss input is present
func (p SessionPatch) touchesMoney() bool {
	return p.BuyInAmount != nil || p.CashOutAmount != nil || p.NumberOfBuyIns != nil
}

// apply merges the patch into s, recomputing win/loss from the merged row
func (p SessionPatch) apply(s *domain.Session) {
	if p.BuyInAmount != nil {
		s.BuyInAmount = *p.BuyInAmount
	}
	if p.CashOutAmount != nil {
		s.CashOutAmount = *p.CashOutAmount
	}
	if p.NumberOfBuyIns != nil {
		s.NumberOfBuyIns = *p.NumberOfBuyIns
	}
	if p.Stakes != nil {
		s.Stakes = *p.Stakes
	}
	if p.GameType != nil {
		s.GameType = *p.GameType
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	if p.SessionDate != nil {
		s.SessionDate = dateOnly(*p.SessionDate)
	}
	if p.Notes != nil {
		s.Notes = p.Notes
	}
	if p.touchesMoney() {
		s.Recompute()
	}
}

// Ledger owns session rows and the per-user cumulative total
type Ledger struct {
	db    *gorm.DB
	cache *utils.Cache
}

// New returns a ledger over db; cache may be nil
func New(db *gorm.DB, cache *utils.Cache) *Ledger {
	return &Ledger{db: db, cache: cache}
}

// listing is the cached shape of List
type listing struct {
	Sessions   []domain.Session `json:"sessions"`
	Cumulative decimal.Decimal  `json:"cumulative_win_loss"`
}

// Create inserts a session owned by userID and returns it with the new total
func (l *Ledger) Create(ctx context.Context, userID uint, in SessionInput) (*domain.Session, decimal.Decimal, error) {
	s := domain.Session{
		UserID:         userID,
		BuyInAmount:    in.BuyInAmount,
		CashOutAmount:  in.CashOutAmount,
		NumberOfBuyIns: in.NumberOfBuyIns,
		Stakes:         in.Stakes,
		GameType:       in.GameType,
		Location:       in.Location,
		SessionDate:    dateOnly(in.SessionDate),
		Notes:          in.Notes,
	}
	s.Recompute()

	var total decimal.Decimal
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&s).Error; err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		var err error
		total, err = cumulative(tx, userID)
		return err
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	l.invalidate(ctx, userID)
	l.audit("create_session", &s, total).Info("Session created")
	return &s, total, nil
}

// List returns the user's active sessions, newest session date first, and their total
func (l *Ledger) List(ctx context.Context, userID uint) ([]domain.Session, decimal.Decimal, error) {
	key := utils.LedgerCacheKey(userID)
	var cached listing
	if l.cache.Get(ctx, key, &cached) {
		return cached.Sessions, cached.Cumulative, nil
	}

	out := listing{Sessions: []domain.Session{}}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Order("session_date DESC").
			Order("id DESC").
			Find(&out.Sessions).Error; err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		var err error
		out.Cumulative, err = cumulative(tx, userID)
		return err
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	l.cache.Set(ctx, key, out)
	return out.Sessions, out.Cumulative, nil
}

// Update applies patch to the user's session and returns it with the new total
func (l *Ledger) Update(ctx context.Context, userID, sessionID uint, patch SessionPatch) (*domain.Session, decimal.Decimal, error) {
	if patch.Empty() {
		return nil, decimal.Zero, domain.ErrNoFields
	}

	var s domain.Session
	var total decimal.Decimal
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwned(tx, userID, sessionID, &s); err != nil {
			return err
		}
		patch.apply(&s)
		if err := tx.Save(&s).Error; err != nil {
			return fmt.Errorf("update session %d: %w", sessionID, err)
		}
		var err error
		total, err = cumulative(tx, userID)
		return err
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	l.invalidate(ctx, userID)
	l.audit("update_session", &s, total).Info("Session updated")
	return &s, total, nil
}

// SoftDelete marks the user's session deleted and returns it with the new total.
// A session that is already deleted is not found.
func (l *Ledger) SoftDelete(ctx context.Context, userID, sessionID uint) (*domain.Session, decimal.Decimal, error) {
	var s domain.Session
	var total decimal.Decimal
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwned(tx, userID, sessionID, &s); err != nil {
			return err
		}
		if err := tx.Delete(&s).Error; err != nil {
			return fmt.Errorf("delete session %d: %w", sessionID, err)
		}
		// Reload so the caller sees the stored deleted_at
		if err := tx.Unscoped().First(&s, s.ID).Error; err != nil {
			return fmt.Errorf("reload session %d: %w", sessionID, err)
		}
		var err error
		total, err = cumulative(tx, userID)
		return err
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	l.invalidate(ctx, userID)
	l.audit("delete_session", &s, total).Info("Session deleted")
	return &s, total, nil
}

// Cumulative returns the sum of win/loss over the user's active sessions
func (l *Ledger) Cumulative(ctx context.Context, userID uint) (decimal.Decimal, error) {
	return cumulative(l.db.WithContext(ctx), userID)
}

// cumulative sums in decimal so the total is exact on every dialect
func cumulative(tx *gorm.DB, userID uint) (decimal.Decimal, error) {
	var values []decimal.Decimal
	if err := tx.Model(&domain.Session{}).Where("user_id = ?", userID).Pluck("win_loss", &values).Error; err != nil {
		return decimal.Zero, fmt.Errorf("cumulative win/loss: %w", err)
	}
	return decimal.Sum(decimal.Zero, values...), nil
}

func findOwned(tx *gorm.DB, userID, sessionID uint, s *domain.Session) error {
	err := tx.Where("id = ? AND user_id = ?", sessionID, userID).First(s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("session %d: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("find session %d: %w", sessionID, err)
	}
	return nil
}

func (l *Ledger) invalidate(ctx context.Context, userID uint) {
	l.cache.Delete(ctx, utils.LedgerCacheKey(userID))
}

func (l *Ledger) audit(action string, s *domain.Session, total decimal.Decimal) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"user_id":             s.UserID,
		"session_id":          s.ID,
		"win_loss":            s.WinLoss.String(),
		"cumulative_win_loss": total.String(),
		"type":                action,
	})
}

// dateOnly truncates t to its calendar date in UTC
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
