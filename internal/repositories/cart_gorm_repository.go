package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetOrCreate returns the owner's cart. A concurrent first access loses the insert on the
// unique owner index and re-reads the winner's row.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, ownerID string) (*models.Cart, error) {
	cart, err := r.FindByOwner(ctx, ownerID, false)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	newCart := models.Cart{ID: uuid.New().String(), OwnerID: ownerID, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "owner_id"}}, DoNothing: true}).
		Create(&newCart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart for owner %s: %w", ownerID, err)
	}
	return r.FindByOwner(ctx, ownerID, false)
}

// FindByOwner retrieves the owner's cart, optionally locking its row.
func (r *GORMCartRepository) FindByOwner(ctx context.Context, ownerID string, forUpdate bool) (*models.Cart, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if err := q.Where("owner_id = ?", ownerID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart of owner %s: %w", ownerID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart of owner %s: %w", ownerID, err)
	}
	return &cart, nil
}

// AddLine inserts or merges a line while holding the cart row lock.
func (r *GORMCartRepository) AddLine(ctx context.Context, cartID string, line models.CartLine) (*models.CartLine, error) {
	if line.Quantity < 1 {
		return nil, fmt.Errorf("add line to cart %s: %w", cartID, apperrors.ErrInvalidQuantity)
	}

	var stored models.CartLine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cart, "id = ?", cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart %s: %w", cartID, apperrors.ErrNotFound)
			}
			return err
		}

		q := tx.Where("cart_id = ? AND service_id = ?", cartID, line.ServiceID)
		q = whereNullable(q, "package_id", line.PackageID)
		q = whereNullable(q, "addon_id", line.AddonID)

		findErr := q.First(&stored).Error
		if findErr == nil {
			res := tx.Model(&models.CartLine{}).
				Where("id = ?", stored.ID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", line.Quantity),
					"unit_price": line.UnitPrice,
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			return tx.First(&stored, "id = ?", stored.ID).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		stored = line
		stored.ID = uuid.New().String()
		stored.CartID = cartID
		return tx.Create(&stored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add line to cart %s: %w", cartID, err)
	}
	return &stored, nil
}

// RemoveLine deletes a line only when it belongs to the owner's cart. It holds the cart row
// lock so it waits for a checkout reading the same cart.
func (r *GORMCartRepository) RemoveLine(ctx context.Context, ownerID, lineID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ?", ownerID).
			First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart line %s: %w", lineID, apperrors.ErrNotFound)
			}
			return err
		}

		res := tx.Where("id = ? AND cart_id = ?", lineID, cart.ID).Delete(&models.CartLine{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("cart line %s: %w", lineID, apperrors.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove cart line %s: %w", lineID, err)
	}
	return nil
}

// ListLines retrieves the lines of a cart in insertion order.
func (r *GORMCartRepository) ListLines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at asc, id asc").
		Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list lines of cart %s: %w", cartID, err)
	}
	return lines, nil
}

// Clear deletes every line of the cart. Clearing an empty cart is a no-op.
func (r *GORMCartRepository) Clear(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}

// whereNullable matches a nullable column against value, treating nil as IS NULL.
func whereNullable(q *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *value)
}
