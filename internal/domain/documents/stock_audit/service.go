// Package stock_audit provides the StockAudit document service.
package stock_audit

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

// Ledger is the slice of the stock ledger this document needs. The
// counted-value correction reads the books and posts the difference
// under one allocation lock; this interface deliberately offers no
// unlocked stock read.
type Ledger interface {
	AdjustTo(ctx context.Context, itemID id.ID, holder entity.Holder, counted types.Quantity, unitCost *types.Money, ref entity.Reference) (ledger.AdjustToResult, error)
}

// Service provides business operations for stock audits.
type Service struct {
	repo      Repository
	ledger    Ledger
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new stock audit service.
func NewService(repo Repository, stockLedger Ledger, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    stockLedger,
		numerator: num,
		txManager: txManager,
	}
}

// Create posts each line's correction and persists the audit with the
// book quantities captured under the correction's own lock. Lines whose
// count matches the books produce no movement.
func (s *Service) Create(ctx context.Context, doc *StockAudit) error {
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
		// Each line reads its book quantity and posts its correction in
		// one AdjustTo call, under the ledger's allocation lock.
		for i := range doc.Lines {
			line := &doc.Lines[i]
			ref := entity.Reference{Type: entity.ReferenceAuditLine, ID: line.LineID}
			result, err := s.ledger.AdjustTo(ctx, line.ItemID, doc.Holder, line.CountedQuantity, line.UnitCost, ref)
			if err != nil {
				return fmt.Errorf("count line %d: %w", line.LineNo, err)
			}
			line.BookQuantity = result.BookQuantity
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock audit created",
		"id", doc.ID,
		"number", doc.Number,
		"holder", doc.Holder.String(),
		"lines", len(doc.Lines),
	)

	return nil
}

// GetByID retrieves an audit with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*StockAudit, error) {
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

// List retrieves audits with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (documents.ListResult[*StockAudit], error) {
	return s.repo.List(ctx, filter)
}
