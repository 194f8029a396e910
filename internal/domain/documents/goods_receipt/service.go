// Package goods_receipt provides the GoodsReceipt document service.
package goods_receipt

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// Ledger is the slice of the stock ledger this document needs.
type Ledger interface {
	Receive(ctx context.Context, itemID id.ID, holder entity.Holder, quantity types.Quantity, unitCost types.Money, ref entity.Reference) (id.ID, error)
}

// OrderResolver recomputes purchase order statuses after fulfillment.
type OrderResolver interface {
	RecomputePurchaseOrder(ctx context.Context, orderID id.ID) (entity.PurchaseOrderStatus, error)
}

// Service provides business operations for goods receipts. Creating a
// receipt is atomic: the document, its lines, the new batches with
// their movements, and the purchase order status all commit together
// or not at all.
type Service struct {
	repo      Repository
	ledger    Ledger
	resolver  OrderResolver
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new goods receipt service.
func NewService(
	repo Repository,
	ledger Ledger,
	resolver OrderResolver,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		resolver:  resolver,
		numerator: num,
		txManager: txManager,
	}
}

// Create creates a goods receipt and applies its stock effects.
func (s *Service) Create(ctx context.Context, doc *GoodsReceipt) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Number generation stays outside the transaction; a rollback leaves
	// a gap in the sequence, never a duplicate.
	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		for _, line := range doc.Lines {
			ref := entity.Reference{Type: entity.ReferenceGoodsReceiptLine, ID: line.LineID}
			if _, err := s.ledger.Receive(ctx, line.ItemID, doc.Holder, line.Quantity, line.UnitCost, ref); err != nil {
				return fmt.Errorf("receive line %d: %w", line.LineNo, err)
			}
		}

		for _, orderID := range doc.OrderIDs() {
			if _, err := s.resolver.RecomputePurchaseOrder(ctx, orderID); err != nil {
				return fmt.Errorf("recompute order %s: %w", orderID, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "goods receipt created",
		"id", doc.ID,
		"number", doc.Number,
		"lines", len(doc.Lines),
	)

	return nil
}

// GetByID retrieves a goods receipt with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*GoodsReceipt, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves goods receipts with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (documents.ListResult[*GoodsReceipt], error) {
	return s.repo.List(ctx, filter)
}
