package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/apperrors"
	"marketplace/internal/gateway"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SignatureVerifier checks gateway callback signatures.
type SignatureVerifier interface {
	Verify(gatewayOrderID, gatewayPaymentID, signature string) (bool, error)
}

// PaymentSettings are the payment defaults taken from configuration.
type PaymentSettings struct {
	Currency string
	KeyID    string // public gateway key handed to the checkout widget
}

// CreateIntentInput opens a gateway payment for an order. A nil Amount charges the
// order total; an empty Currency uses the configured one.
type CreateIntentInput struct {
	OrderID  string
	Amount   *decimal.Decimal
	Currency string
	Notes    map[string]string
}

// PaymentIntent is what the client needs to start the gateway checkout.
type PaymentIntent struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id,omitempty"`
}

// VerifyInput is the payload the gateway checkout hands back to the client.
type VerifyInput struct {
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// VerifyResult reports the reconciled state of a payment.
type VerifyResult struct {
	Success     bool                 `json:"success"`
	PaymentID   string               `json:"payment_id"`
	Status      models.PaymentStatus `json:"status"`
	OrderStatus models.OrderStatus   `json:"order_status"`
}

// PaymentService reconciles orders against the payment gateway.
type PaymentService struct {
	orders     repositories.OrderRepository
	payments   repositories.PaymentRepository
	txManager  repositories.TransactionManager
	gateway    gateway.Client
	verifier   SignatureVerifier
	normalizer *AmountNormalizer
	settings   PaymentSettings
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService. publisher may be nil.
func NewPaymentService(
	orders repositories.OrderRepository,
	payments repositories.PaymentRepository,
	txManager repositories.TransactionManager,
	gw gateway.Client,
	verifier SignatureVerifier,
	normalizer *AmountNormalizer,
	settings PaymentSettings,
	publisher EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	if settings.Currency == "" {
		settings.Currency = "INR"
	}
	return &PaymentService{
		orders:     orders,
		payments:   payments,
		txManager:  txManager,
		gateway:    gw,
		verifier:   verifier,
		normalizer: normalizer,
		settings:   settings,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateIntent opens a gateway order for one of the caller's unpaid orders. Nothing is
// stored locally; the payment row appears when the checkout is verified.
func (s *PaymentService) CreateIntent(ctx context.Context, caller Identity, in CreateIntentInput) (*PaymentIntent, error) {
	order, err := s.ownedOrder(ctx, caller.UserID, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if order.Status != models.OrderStatusCreated {
		return nil, fmt.Errorf("create payment intent: %w",
			apperrors.New(apperrors.KindValidation, fmt.Sprintf("order is %s and cannot be paid", order.Status)))
	}

	var amount int64
	if in.Amount != nil {
		amount, err = s.normalizer.Normalize(*in.Amount)
	} else {
		amount, err = s.normalizer.FromMajor(order.TotalAmount)
	}
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.settings.Currency
	}

	notes := make(map[string]string, len(in.Notes)+2)
	for k, v := range in.Notes {
		notes[k] = v
	}
	notes["order_id"] = order.ID
	notes["user_email"] = caller.Email

	gwOrder, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  order.ID,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	s.logger.Info("payment intent created",
		zap.String("order_id", order.ID),
		zap.String("gateway_order_id", gwOrder.ID),
		zap.Int64("amount_minor", amount),
		zap.String("currency", currency))

	return &PaymentIntent{
		OrderID:        order.ID,
		GatewayOrderID: gwOrder.ID,
		AmountMinor:    amount,
		Currency:       currency,
		KeyID:          s.settings.KeyID,
	}, nil
}

// VerifyPayment checks the checkout signature, fetches the authoritative payment status
// and applies it to the order. Replaying the same callback returns the same payment
// without another transition.
func (s *PaymentService) VerifyPayment(ctx context.Context, caller Identity, in VerifyInput) (*VerifyResult, error) {
	order, err := s.ownedOrder(ctx, caller.UserID, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	valid, err := s.verifier.Verify(in.GatewayOrderID, in.GatewayPaymentID, in.Signature)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !valid {
		if err := s.recordRejected(ctx, order, in); err != nil {
			return nil, fmt.Errorf("verify payment: %w", err)
		}
		s.logger.Warn("payment signature mismatch",
			zap.String("order_id", order.ID),
			zap.String("gateway_order_id", in.GatewayOrderID),
			zap.String("gateway_payment_id", in.GatewayPaymentID))
		return nil, fmt.Errorf("verify payment: %w", apperrors.ErrSignatureMismatch)
	}

	fetched, err := s.gateway.FetchPayment(ctx, in.GatewayPaymentID)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if fetched.OrderID != "" && fetched.OrderID != in.GatewayOrderID {
		return nil, fmt.Errorf("verify payment: %w",
			apperrors.New(apperrors.KindValidation, "payment does not belong to the gateway order"))
	}

	gwOrder, err := s.gateway.FetchOrder(ctx, in.GatewayOrderID)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	out, err := s.reconcile(ctx, order.ID, in, fetched, s.mismatchOf(order, gwOrder, fetched))
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	if out.event != "" {
		publishEvent(s.publisher, s.logger, out.event, map[string]interface{}{
			"order_id":           order.ID,
			"payment_id":         out.result.PaymentID,
			"gateway_payment_id": in.GatewayPaymentID,
			"status":             out.result.Status,
			"amount":             fetched.Amount,
			"currency":           fetched.Currency,
		})
	}
	if out.refund {
		s.refundUnapplied(ctx, order.ID, in.GatewayPaymentID, fetched.Amount)
	}
	return &out.result, nil
}

// reconcileOutcome is what reconcile decided inside its transaction.
type reconcileOutcome struct {
	result VerifyResult
	event  string // routing key to publish, empty when nothing changed
	refund bool   // a capture was stored without being applied to the order
}

// mismatchOf reports why a gateway payment cannot settle order, or "" when it can. The
// gateway order must have been opened for this order and the amount must equal its total.
func (s *PaymentService) mismatchOf(order *models.Order, gwOrder *gateway.Order, fetched *gateway.Payment) string {
	if gwOrder.Receipt != order.ID && gwOrder.Notes["order_id"] != order.ID {
		return "gateway order was opened for another order"
	}
	expected, err := s.normalizer.FromMajor(order.TotalAmount)
	if err != nil || fetched.Amount != expected {
		return "payment amount does not match the order total"
	}
	return ""
}

// reconcile upserts the payment and moves the order while holding the order row lock.
// A payment with a mismatch is stored but never moves the order.
func (s *PaymentService) reconcile(ctx context.Context, orderID string, in VerifyInput, fetched *gateway.Payment, mismatch string) (*reconcileOutcome, error) {
	var out reconcileOutcome

	err := s.txManager.WithinTx(ctx, func(r repositories.TxRepos) error {
		order, err := r.Orders().FindForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		payment, err := r.Payments().FindByGatewayPaymentID(ctx, in.GatewayPaymentID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if payment != nil && payment.OrderID != order.ID {
			return apperrors.New(apperrors.KindValidation, "payment belongs to another order")
		}

		status := paymentStatusOf(fetched.Status)
		if mismatch != "" {
			s.logger.Error("payment does not settle its order",
				zap.String("order_id", order.ID),
				zap.String("gateway_order_id", in.GatewayOrderID),
				zap.String("gateway_payment_id", in.GatewayPaymentID),
				zap.Int64("amount", fetched.Amount),
				zap.String("reason", mismatch))
			if status == models.PaymentStatusPaid {
				status = models.PaymentStatusDuplicate
			} else {
				status = models.PaymentStatusFailed
			}
		}
		if status == models.PaymentStatusPaid {
			paid, err := r.Payments().FindPaidByOrder(ctx, order.ID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if paid != nil && paid.GatewayPaymentID != in.GatewayPaymentID {
				s.logger.Error("second captured payment for a paid order",
					zap.String("order_id", order.ID),
					zap.String("paid_gateway_payment_id", paid.GatewayPaymentID),
					zap.String("duplicate_gateway_payment_id", in.GatewayPaymentID))
				status = models.PaymentStatusDuplicate
			}
		}

		changed := false
		switch {
		case payment == nil:
			payment = &models.Payment{
				OrderID:          order.ID,
				Method:           fetched.Method,
				Status:           status,
				Amount:           fetched.Amount,
				Currency:         s.currencyOf(fetched),
				GatewayOrderID:   in.GatewayOrderID,
				GatewayPaymentID: in.GatewayPaymentID,
				Signature:        in.Signature,
			}
			if err := r.Payments().Create(ctx, payment); err != nil {
				return err
			}
			changed = true
		case isFinal(payment.Status) || payment.Status == status:
			// Replayed callback.
		default:
			payment.Status = status
			payment.Method = fetched.Method
			payment.Amount = fetched.Amount
			payment.Currency = s.currencyOf(fetched)
			payment.GatewayOrderID = in.GatewayOrderID
			payment.Signature = in.Signature
			if err := r.Payments().Update(ctx, payment); err != nil {
				return err
			}
			changed = true
		}

		orderStatus := order.Status
		out.refund = changed && payment.Status == models.PaymentStatusDuplicate
		if changed && mismatch == "" {
			switch payment.Status {
			case models.PaymentStatusPaid:
				moved, err := r.Orders().UpdateStatusIf(ctx, order.ID, models.OrderStatusCreated, models.OrderStatusPaid)
				if err != nil {
					return err
				}
				if moved {
					orderStatus = models.OrderStatusPaid
					out.event = EventPaymentCaptured
				} else {
					s.logger.Error("captured payment for an order that is no longer open",
						zap.String("order_id", order.ID),
						zap.String("order_status", string(order.Status)),
						zap.String("gateway_payment_id", in.GatewayPaymentID))
				}
			case models.PaymentStatusFailed:
				moved, err := r.Orders().UpdateStatusIf(ctx, order.ID, models.OrderStatusCreated, models.OrderStatusFailed)
				if err != nil {
					return err
				}
				if moved {
					orderStatus = models.OrderStatusFailed
				}
				out.event = EventPaymentFailed
			}
		}

		out.result = VerifyResult{
			Success:     payment.Status == models.PaymentStatusPaid,
			PaymentID:   payment.ID,
			Status:      payment.Status,
			OrderStatus: orderStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment reconciled",
		zap.String("order_id", orderID),
		zap.String("payment_id", out.result.PaymentID),
		zap.String("status", string(out.result.Status)),
		zap.String("order_status", string(out.result.OrderStatus)))
	return &out, nil
}

// refundUnapplied returns a capture that was stored as DUPLICATE. A failed refund is only
// logged; the payment row keeps the gateway id for a manual refund.
func (s *PaymentService) refundUnapplied(ctx context.Context, orderID, gatewayPaymentID string, amount int64) {
	if amount <= 0 {
		return
	}
	refund, err := s.gateway.Refund(ctx, gatewayPaymentID, amount)
	if err != nil {
		s.logger.Error("refund of unapplied capture failed, refund manually",
			zap.String("order_id", orderID),
			zap.String("gateway_payment_id", gatewayPaymentID),
			zap.Int64("amount", amount),
			zap.Error(err))
		return
	}
	s.logger.Info("unapplied capture refunded",
		zap.String("order_id", orderID),
		zap.String("gateway_payment_id", gatewayPaymentID),
		zap.String("refund_id", refund.ID),
		zap.Int64("amount", amount))
}

// recordRejected stores a FAILED payment for a callback whose signature did not verify.
// Existing rows are left alone so a forged callback cannot touch a real payment.
func (s *PaymentService) recordRejected(ctx context.Context, order *models.Order, in VerifyInput) error {
	if in.GatewayPaymentID == "" {
		return nil
	}

	amount, err := s.normalizer.FromMajor(order.TotalAmount)
	if err != nil {
		amount = 0
	}

	return s.txManager.WithinTx(ctx, func(r repositories.TxRepos) error {
		if _, err := r.Orders().FindForUpdate(ctx, order.ID); err != nil {
			return err
		}
		_, err := r.Payments().FindByGatewayPaymentID(ctx, in.GatewayPaymentID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return r.Payments().Create(ctx, &models.Payment{
			OrderID:          order.ID,
			Status:           models.PaymentStatusFailed,
			Amount:           amount,
			Currency:         s.settings.Currency,
			GatewayOrderID:   in.GatewayOrderID,
			GatewayPaymentID: in.GatewayPaymentID,
			Signature:        in.Signature,
		})
	})
}

// GetPayment retrieves a payment of one of the caller's orders.
func (s *PaymentService) GetPayment(ctx context.Context, ownerID, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if _, err := s.ownedOrder(ctx, ownerID, payment.OrderID); err != nil {
		return nil, fmt.Errorf("get payment %s: %w", paymentID, apperrors.ErrNotFound)
	}
	return payment, nil
}

func (s *PaymentService) ownedOrder(ctx context.Context, ownerID, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != ownerID {
		return nil, fmt.Errorf("order %s: %w", orderID, apperrors.ErrNotFound)
	}
	return order, nil
}

func (s *PaymentService) currencyOf(p *gateway.Payment) string {
	if p.Currency != "" {
		return strings.ToUpper(p.Currency)
	}
	return s.settings.Currency
}

func paymentStatusOf(gatewayStatus string) models.PaymentStatus {
	switch gatewayStatus {
	case gateway.StatusCaptured:
		return models.PaymentStatusPaid
	case gateway.StatusFailed:
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}

// isFinal reports whether a payment status can no longer change. FAILED is not final: a
// row stored for a rejected signature may later be verified and captured.
func isFinal(status models.PaymentStatus) bool {
	return status == models.PaymentStatusPaid || status == models.PaymentStatusDuplicate
}
