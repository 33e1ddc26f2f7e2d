// internal/infrastructure/database/postgres/store.go
package postgres

import (
	"context"
	"errors"

	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements the user, order and wishlist repositories on PostgreSQL
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new user
func (s *Store) Create(ctx context.Context, u *user.User) error {
	err := s.db.WithContext(ctx).Create(newUserRecord(u)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("user with this email already exists")
	}
	return apperror.Persistence("create user", err)
}

// FindByID loads a user by id
func (s *Store) FindByID(ctx context.Context, id string) (*user.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// FindByEmail loads a user by normalized e-mail
func (s *Store) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

// Update writes the user's profile fields
func (s *Store) Update(ctx context.Context, u *user.User) error {
	updates := map[string]interface{}{
		"name":       u.Name,
		"email":      u.Email,
		"password":   u.Password,
		"updated_at": u.UpdatedAt,
	}
	if u.LastLoginAt != nil {
		updates["last_login_at"] = *u.LastLoginAt
	}

	result := s.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", u.ID).Updates(updates)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("user with this email already exists")
	}
	if result.Error != nil {
		return apperror.Persistence("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user", u.ID)
	}
	return nil
}

// AppendOrder stores o with its items under the user
func (s *Store) AppendOrder(ctx context.Context, userID string, o *order.Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		return tx.Create(newOrderRecord(userID, o)).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("order number already exists")
	}
	return apperror.Persistence("append order", err)
}

// ListOrders returns the user's orders in the order they were placed
func (s *Store) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	db := s.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return nil, apperror.Persistence("list orders", err)
	}

	var records []orderRecord
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	}).Where("user_id = ?", userID).Order("id ASC").Find(&records).Error
	if err != nil {
		return nil, apperror.Persistence("list orders", err)
	}

	orders := make([]order.Order, 0, len(records))
	for i := range records {
		orders = append(orders, *records[i].toOrder())
	}
	return orders, nil
}

// FindOrderByNumber returns one of the user's orders
func (s *Store) FindOrderByNumber(ctx context.Context, userID, number string) (*order.Order, error) {
	var record orderRecord
	err := s.db.WithContext(ctx).Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	}).Where("user_id = ? AND order_number = ?", userID, number).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("order", number)
	}
	if err != nil {
		return nil, apperror.Persistence("find order", err)
	}
	return record.toOrder(), nil
}

// AddSaved adds sku to the user's saved set
func (s *Store) AddSaved(ctx context.Context, userID, sku string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&savedItemRecord{UserID: userID, SKU: sku}).Error
	})
	return apperror.Persistence("save item", err)
}

// ListSaved returns the user's saved skus in the order they were saved
func (s *Store) ListSaved(ctx context.Context, userID string) ([]string, error) {
	db := s.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return nil, apperror.Persistence("list saved items", err)
	}

	skus := []string{}
	err := db.Model(&savedItemRecord{}).Where("user_id = ?", userID).Order("id ASC").Pluck("sku", &skus).Error
	if err != nil {
		return nil, apperror.Persistence("list saved items", err)
	}
	return skus, nil
}

// RemoveSaved removes sku from the user's saved set
func (s *Store) RemoveSaved(ctx context.Context, userID, sku string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		return tx.Where("user_id = ? AND sku = ?", userID, sku).Delete(&savedItemRecord{}).Error
	})
	return apperror.Persistence("remove saved item", err)
}

func (s *Store) findUser(ctx context.Context, query string, key string) (*user.User, error) {
	var record userRecord
	err := s.db.WithContext(ctx).Where(query, key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user", key)
	}
	if err != nil {
		return nil, apperror.Persistence("find user", err)
	}
	return record.toUser(), nil
}

func requireUser(db *gorm.DB, userID string) error {
	var count int64
	if err := db.Model(&userRecord{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

var (
	_ user.Repository     = (*Store)(nil)
	_ order.Repository    = (*Store)(nil)
	_ wishlist.Repository = (*Store)(nil)
)
