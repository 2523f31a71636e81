// Package store persists user identities.
package store

import (
	"context" // Request-scoped DB calls
	"errors"  // Error matching
	"fmt"     // Error wrapping

	"poker_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// UserStore is the credential store backed by the users table
type UserStore struct {
	db *gorm.DB
}

// NewUserStore returns a store over db
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail returns the user with the exact email, or domain.ErrNotFound
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findByEmail(s.db.WithContext(ctx), email)
}

func findByEmail(tx *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := tx.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// CountAll returns the number of user rows
func (s *UserStore) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Create inserts a user with an explicit role; a taken email yields domain.ErrConflict
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash, role string) (*domain.User, error) {
	var user *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = create(tx, name, email, passwordHash, role)
		return err
	})
	return user, err
}

// Register inserts a user, classifying the very first one as admin. The
// emptiness check and the insert share one transaction.
func (s *UserStore) Register(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	var user *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&domain.User{}).Count(&total).Error; err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		role := domain.RoleUser
		if total == 0 {
			role = domain.RoleAdmin
		}
		var err error
		user, err = create(tx, name, email, passwordHash, role)
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")
	return user, nil
}

func create(tx *gorm.DB, name, email, passwordHash, role string) (*domain.User, error) {
	// Check first so the common duplicate case never reaches the unique index
	var existing int64
	if err := tx.Model(&domain.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("email %q: %w", email, domain.ErrConflict)
	}
	user := domain.User{Name: name, Email: email, Password: passwordHash, Role: role}
	if err := tx.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email %q: %w", email, domain.ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// DeleteByEmail hard-deletes the user and returns the removed row
func (s *UserStore) DeleteByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = findByEmail(tx, email); err != nil {
			return err
		}
		// Sessions go with their owner
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&domain.Session{}).Error; err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		if err := tx.Delete(user).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User deleted")
	return user, nil
}

// DeleteAll wipes every user and session and restarts the id sequences
func (s *UserStore) DeleteAll(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	var err error
	switch db.Dialector.Name() {
	case "postgres":
		err = db.Exec("TRUNCATE TABLE users RESTART IDENTITY CASCADE").Error
	case "mysql":
		err = db.Transaction(deleteRows)
		if err == nil {
			err = db.Exec("ALTER TABLE sessions AUTO_INCREMENT = 1").Error
		}
		if err == nil {
			err = db.Exec("ALTER TABLE users AUTO_INCREMENT = 1").Error
		}
	default:
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := deleteRows(tx); err != nil {
				return err
			}
			if tx.Migrator().HasTable("sqlite_sequence") {
				return tx.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'sessions')").Error
			}
			return nil
		})
	}
	if err != nil {
		return fmt.Errorf("delete all users: %w", err)
	}
	logrus.Warn("All users deleted")
	return nil
}

func deleteRows(tx *gorm.DB) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&domain.Session{}).Error; err != nil {
		return err
	}
	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.User{}).Error
}

// ListActive returns users whose deleted_at is unset, ordered by id
func (s *UserStore) ListActive(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := s.db.WithContext(ctx).Where("deleted_at IS NULL").Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
