package fulfillment

import (
	"context"
	"fmt"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/pkg/logger"
)

// Repository aggregates line progress for orders. Implementations must
// count fulfilled quantities from persisted child documents only, so a
// recompute inside a transaction sees the lines written by that same
// transaction.
type Repository interface {
	// GetPurchaseOrderProgress returns ordered vs received per line.
	GetPurchaseOrderProgress(ctx context.Context, orderID id.ID) ([]LineProgress, error)

	// SetPurchaseOrderStatus persists the derived status.
	SetPurchaseOrderStatus(ctx context.Context, orderID id.ID, status entity.PurchaseOrderStatus) error

	// GetSalesOrderProgress returns ordered vs shipped per line.
	GetSalesOrderProgress(ctx context.Context, orderID id.ID) ([]LineProgress, error)

	// SetSalesOrderStatus persists the derived status.
	SetSalesOrderStatus(ctx context.Context, orderID id.ID, status entity.SalesOrderStatus) error
}

// Service recomputes derived order statuses. Called by document
// services inside the same transaction that changed the child lines.
type Service struct {
	repo Repository
}

// NewService creates a new fulfillment service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecomputePurchaseOrder re-derives a purchase order's status from its
// linked goods-receipt quantities and persists it.
func (s *Service) RecomputePurchaseOrder(ctx context.Context, orderID id.ID) (entity.PurchaseOrderStatus, error) {
	lines, err := s.repo.GetPurchaseOrderProgress(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("purchase order progress: %w", err)
	}

	status := PurchaseOrderStatus(Resolve(lines))
	if err := s.repo.SetPurchaseOrderStatus(ctx, orderID, status); err != nil {
		return "", fmt.Errorf("set purchase order status: %w", err)
	}

	logger.Debug(ctx, "recomputed purchase order status",
		"order_id", orderID,
		"status", status,
	)

	return status, nil
}

// PurchaseOrderProgress returns per-line ordered vs received quantities.
func (s *Service) PurchaseOrderProgress(ctx context.Context, orderID id.ID) ([]LineProgress, error) {
	return s.repo.GetPurchaseOrderProgress(ctx, orderID)
}

// SalesOrderProgress returns per-line ordered vs shipped quantities.
func (s *Service) SalesOrderProgress(ctx context.Context, orderID id.ID) ([]LineProgress, error) {
	return s.repo.GetSalesOrderProgress(ctx, orderID)
}

// RecomputeSalesOrder re-derives a sales order's status from its linked
// waybill quantities and persists it.
func (s *Service) RecomputeSalesOrder(ctx context.Context, orderID id.ID) (entity.SalesOrderStatus, error) {
	lines, err := s.repo.GetSalesOrderProgress(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("sales order progress: %w", err)
	}

	status := SalesOrderStatus(Resolve(lines))
	if err := s.repo.SetSalesOrderStatus(ctx, orderID, status); err != nil {
		return "", fmt.Errorf("set sales order status: %w", err)
	}

	logger.Debug(ctx, "recomputed sales order status",
		"order_id", orderID,
		"status", status,
	)

	return status, nil
}
