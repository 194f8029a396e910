// Package stock_adjustment provides the StockAdjustment document service.
package stock_adjustment

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
	Adjust(ctx context.Context, itemID id.ID, holder entity.Holder, signedDelta types.Quantity, unitCost *types.Money, ref entity.Reference) ([]ledger.BatchTake, error)
}

// Service provides business operations for stock adjustments.
type Service struct {
	repo      Repository
	ledger    Ledger
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new stock adjustment service.
func NewService(repo Repository, stockLedger Ledger, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    stockLedger,
		numerator: num,
		txManager: txManager,
	}
}

// Create creates an adjustment and applies its corrections. A negative
// line that exceeds available stock fails the whole document.
func (s *Service) Create(ctx context.Context, doc *StockAdjustment) error {
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
			ref := entity.Reference{Type: entity.ReferenceAdjustmentLine, ID: line.LineID}
			if _, err := s.ledger.Adjust(ctx, line.ItemID, doc.Holder, line.SignedDelta, line.UnitCost, ref); err != nil {
				return fmt.Errorf("adjust line %d: %w", line.LineNo, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock adjustment created",
		"id", doc.ID,
		"number", doc.Number,
		"holder", doc.Holder.String(),
		"lines", len(doc.Lines),
	)

	return nil
}

// GetByID retrieves an adjustment with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*StockAdjustment, error) {
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

// List retrieves adjustments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (documents.ListResult[*StockAdjustment], error) {
	return s.repo.List(ctx, filter)
}
