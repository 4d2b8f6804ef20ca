package repositories

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{db: db}
}

// FindByID retrieves a payment by its ID.
func (r *GORMPaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByGatewayPaymentID retrieves a payment by the gateway's payment identifier.
func (r *GORMPaymentRepository) FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	return r.first(ctx, "gateway_payment_id = ?", gatewayPaymentID)
}

// FindPaidByOrder retrieves the captured payment of an order, if any.
func (r *GORMPaymentRepository) FindPaidByOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	return r.first(ctx, "order_id = ? AND status = ?", orderID, models.PaymentStatusPaid)
}

// ListByOrder retrieves the payments of an order, oldest first.
func (r *GORMPaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc, id asc").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments of order %s: %w", orderID, err)
	}
	return payments, nil
}

// Create inserts a new payment.
func (r *GORMPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// Update saves every field of an existing payment.
func (r *GORMPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	res := r.db.WithContext(ctx).Save(payment)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment %s: %w", payment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment %s: %w", payment.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *GORMPaymentRepository) first(ctx context.Context, query string, args ...interface{}) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where(query, args...).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}
