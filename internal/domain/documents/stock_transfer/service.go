// Package stock_transfer provides the StockTransfer document service.
package stock_transfer

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
	Transfer(ctx context.Context, itemID id.ID, from, to entity.Holder, quantity types.Quantity, ref entity.Reference) (ledger.TransferResult, error)
}

// Service provides business operations for stock transfers. Both sides
// of every line commit together: a shortage on any line rolls back the
// whole document.
type Service struct {
	repo      Repository
	ledger    Ledger
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new stock transfer service.
func NewService(repo Repository, stockLedger Ledger, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    stockLedger,
		numerator: num,
		txManager: txManager,
	}
}

// Create creates a transfer and moves its stock.
func (s *Service) Create(ctx context.Context, doc *StockTransfer) error {
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
			ref := entity.Reference{Type: entity.ReferenceTransferLine, ID: line.LineID}
			if _, err := s.ledger.Transfer(ctx, line.ItemID, doc.From, doc.To, line.Quantity, ref); err != nil {
				return fmt.Errorf("transfer line %d: %w", line.LineNo, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock transfer created",
		"id", doc.ID,
		"number", doc.Number,
		"from", doc.From.String(),
		"to", doc.To.String(),
		"lines", len(doc.Lines),
	)

	return nil
}

// GetByID retrieves a transfer with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*StockTransfer, error) {
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

// List retrieves transfers with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (documents.ListResult[*StockTransfer], error) {
	return s.repo.List(ctx, filter)
}
