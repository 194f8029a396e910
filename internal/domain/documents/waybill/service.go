// Package waybill provides the Waybill document service.
package waybill

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/entity"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/core/types"
	"kardex/internal/domain/documents"
	"kardex/internal/domain/ledger"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// Ledger is the slice of the stock ledger this document needs.
type Ledger interface {
	Issue(ctx context.Context, itemID id.ID, holder entity.Holder, quantity types.Quantity, ref entity.Reference) ([]ledger.BatchTake, error)
}

// OrderResolver recomputes sales order statuses after shipment.
type OrderResolver interface {
	RecomputeSalesOrder(ctx context.Context, orderID id.ID) (entity.SalesOrderStatus, error)
}

// Service provides business operations for waybills. A shipment that
// cannot be fully allocated fails whole: no line ships partially and
// the document is not persisted.
type Service struct {
	repo      Repository
	ledger    Ledger
	resolver  OrderResolver
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new waybill service.
func NewService(
	repo Repository,
	stockLedger Ledger,
	resolver OrderResolver,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    stockLedger,
		resolver:  resolver,
		numerator: num,
		txManager: txManager,
	}
}

// Create creates a waybill and deducts its stock.
func (s *Service) Create(ctx context.Context, doc *Waybill) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

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
			ref := entity.Reference{Type: entity.ReferenceWaybillLine, ID: line.LineID}
			if _, err := s.ledger.Issue(ctx, line.ItemID, doc.Holder, line.Quantity, ref); err != nil {
				return fmt.Errorf("issue line %d: %w", line.LineNo, err)
			}
		}

		for _, orderID := range doc.OrderIDs() {
			if _, err := s.resolver.RecomputeSalesOrder(ctx, orderID); err != nil {
				return fmt.Errorf("recompute order %s: %w", orderID, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "waybill created",
		"id", doc.ID,
		"number", doc.Number,
		"lines", len(doc.Lines),
	)

	return nil
}

// GetByID retrieves a waybill with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Waybill, error) {
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

// List retrieves waybills with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (documents.ListResult[*Waybill], error) {
	return s.repo.List(ctx, filter)
}
