// Package invoice_payment provides the invoice and payment services.
package invoice_payment

import (
	"context"
	"fmt"
	"time"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/tx"
	"kardex/internal/domain/documents"
	"kardex/internal/domain/fulfillment"
	"kardex/pkg/logger"
	"kardex/pkg/numerator"
)

// Service provides business operations for invoices and their payments.
type Service struct {
	repo      Repository
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new invoice/payment service.
func NewService(repo Repository, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txManager,
	}
}

// CreateInvoice raises a new unpaid invoice.
func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	if inv.Number == "" {
		cfg := numerator.DefaultConfig(InvoiceNumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		inv.Number = number
	}

	state := fulfillment.InitialPaymentState(inv.GrandTotal)
	inv.PaidAmount = state.PaidAmount
	inv.RemainingAmount = state.RemainingAmount
	inv.Status = state.Status

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateInvoice(ctx, inv); err != nil {
			return err
		}
		if inv.SourceDocumentID != nil {
			return s.repo.MarkSourceInvoiced(ctx, inv.Kind, *inv.SourceDocumentID, true)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice created",
		"id", inv.ID,
		"number", inv.Number,
		"kind", inv.Kind,
		"grand_total", inv.GrandTotal.String(),
	)

	return nil
}

// AttachSource links a goods receipt or waybill to the invoice and
// marks it invoiced. Rejects when the invoice already has a source.
func (s *Service) AttachSource(ctx context.Context, invoiceID, sourceDocumentID id.ID) (*Invoice, error) {
	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.SourceDocumentID != nil {
			return apperror.NewConflict("invoice already has a source document").
				WithDetail("source_document_id", *inv.SourceDocumentID)
		}

		if err := s.repo.MarkSourceInvoiced(ctx, inv.Kind, sourceDocumentID, true); err != nil {
			return err
		}
		if err := s.repo.SetSourceDocument(ctx, invoiceID, &sourceDocumentID); err != nil {
			return err
		}
		inv.SourceDocumentID = &sourceDocumentID
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice source attached",
		"invoice_id", invoiceID,
		"source_document_id", sourceDocumentID,
	)

	return inv, nil
}

// DetachSource removes the invoice's source document link and clears
// the invoiced flag on the document.
func (s *Service) DetachSource(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.SourceDocumentID == nil {
			return apperror.NewConflict("invoice has no source document")
		}

		if err := s.repo.MarkSourceInvoiced(ctx, inv.Kind, *inv.SourceDocumentID, false); err != nil {
			return err
		}
		if err := s.repo.SetSourceDocument(ctx, invoiceID, nil); err != nil {
			return err
		}
		inv.SourceDocumentID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice source detached", "invoice_id", invoiceID)

	return inv, nil
}

// ApplyPayment records a payment and advances the invoice's payment
// position. The invoice row is locked for the duration so concurrent
// payments serialize and cannot overpay together.
func (s *Service) ApplyPayment(ctx context.Context, p *Payment) (fulfillment.PaymentState, error) {
	if err := p.Validate(ctx); err != nil {
		return fulfillment.PaymentState{}, err
	}

	if p.Number == "" {
		cfg := numerator.DefaultConfig(PaymentNumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fulfillment.PaymentState{}, fmt.Errorf("generate number: %w", err)
		}
		p.Number = number
	}

	var state fulfillment.PaymentState
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetInvoiceForUpdate(ctx, p.InvoiceID)
		if err != nil {
			return err
		}

		state, err = fulfillment.ApplyPayment(inv.GrandTotal, inv.PaidAmount, p.Amount)
		if err != nil {
			return err
		}

		if err := s.repo.CreatePayment(ctx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		return s.repo.SetPaymentState(ctx, inv.ID, state.PaidAmount, state.RemainingAmount, state.Status)
	})
	if err != nil {
		return fulfillment.PaymentState{}, err
	}

	logger.Info(ctx, "payment applied",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount.String(),
		"status", state.Status,
	)

	return state, nil
}

// GetInvoice retrieves an invoice with its payments.
func (s *Service) GetInvoice(ctx context.Context, invoiceID id.ID) (*Invoice, []Payment, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.repo.GetPayments(ctx, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("get payments: %w", err)
	}

	return inv, payments, nil
}

// ListInvoices retrieves invoices with filtering.
func (s *Service) ListInvoices(ctx context.Context, filter ListFilter) (documents.ListResult[*Invoice], error) {
	return s.repo.ListInvoices(ctx, filter)
}
