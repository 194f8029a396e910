// Package sales_order provides the SalesOrder document service.
package sales_order

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/domain/documents"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// Service provides business operations for sales orders.
type Service struct {
	repo      Repository
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new sales order service.
func NewService(repo Repository, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txManager,
	}
}

// Create creates a new sales order.
func (s *Service) Create(ctx context.Context, doc *SalesOrder) error {
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
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sales order created",
		"id", doc.ID,
		"number", doc.Number,
		"lines", len(doc.Lines),
	)

	return nil
}

// GetByID retrieves a sales order with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*SalesOrder, error) {
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

// List retrieves sales orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (documents.ListResult[*SalesOrder], error) {
	return s.repo.List(ctx, filter)
}
