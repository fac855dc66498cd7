package reservation

import (
	"context"
	"errors"
	"strconv"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/moloni"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

var (
	ErrInvoiceCancelled = httperr.ErrValidation("invoice_cancelled_reservation", "Não é possível faturar uma reserva cancelada.")
	ErrAlreadyInvoiced  = httperr.ErrConflict("already_invoiced", "Esta reserva já foi faturada.")
	ErrInvoicingOff     = httperr.ErrValidation("invoicing_disabled", "Faturação não configurada.")
)

type Invoicer interface {
	IssueInvoice(ctx context.Context, in moloni.InvoiceInput) (*moloni.Invoice, error)
}

type IssueInvoice struct {
	repo     domain.Repository
	invoicer Invoicer
	now      func() time.Time
}

func NewIssueInvoice(repo domain.Repository, invoicer Invoicer) *IssueInvoice {
	return &IssueInvoice{
		repo:     repo,
		invoicer: invoicer,
		now:      time.Now,
	}
}

type InvoiceResult struct {
	Reservation *models.Reservation `json:"reservation"`
	PDFURL      string              `json:"pdf_url,omitempty"`
}

func (uc *IssueInvoice) Execute(
	ctx context.Context,
	actor domain.Actor,
	id uint,
) (*InvoiceResult, error) {

	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	ap, err := loadReservation(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}

	if domain.Status(ap.Status) == domain.StatusCancelled {
		return nil, ErrInvoiceCancelled
	}
	if ap.InvoiceID != nil {
		return nil, ErrAlreadyInvoiced
	}

	in := moloni.InvoiceInput{
		CustomerName: ap.Client.Name,
		Email:        ap.Client.Email,
		Description:  ap.Service.Name,
		Price:        ap.Service.Price,
		Date:         uc.now(),
	}
	if ap.Client.NIF != nil {
		in.VAT = *ap.Client.NIF
	}

	inv, err := uc.invoicer.IssueInvoice(ctx, in)
	if errors.Is(err, moloni.ErrNotConfigured) {
		return nil, ErrInvoicingOff
	}
	if err != nil {
		return nil, err
	}

	docID := strconv.Itoa(inv.DocumentID)
	number := inv.Number
	ap.InvoiceID = &docID
	ap.InvoiceNumber = &number

	if err := uc.repo.SaveReservation(ctx, ap); err != nil {
		return nil, err
	}

	return &InvoiceResult{Reservation: ap, PDFURL: inv.PDFURL}, nil
}
