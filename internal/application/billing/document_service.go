package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/infrastructure/printing"
	"github.com/tenancy/backend/internal/infrastructure/storage"
	"github.com/tenancy/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Archiver stores rendered documents per bill version. Load methods return
// storage.ErrObjectNotFound when nothing was archived for that version.
type Archiver interface {
	LoadBill(ctx context.Context, billID uuid.UUID, version int) ([]byte, string, error)
	StoreBill(ctx context.Context, billID uuid.UUID, version int, pdf []byte) (string, error)
	LoadReceipt(ctx context.Context, billID uuid.UUID, paymentIndex, version int) ([]byte, string, error)
	StoreReceipt(ctx context.Context, billID uuid.UUID, paymentIndex, version int, pdf []byte) (string, error)
}

// Document is a rendered PDF ready to be sent. PageCount is zero when the
// document was served from the archive.
type Document struct {
	Filename   string
	Data       []byte
	PageCount  int
	ArchiveKey string
}

// DocumentService renders bills and payment receipts to PDF
type DocumentService struct {
	billRepo  billing.BillRepository
	templates *printing.TemplateEngine
	renderer  printing.PDFRenderer
	archive   Archiver
	logger    *zap.Logger
}

// NewDocumentService creates a document service. archive may be nil, in
// which case documents are only rendered.
func NewDocumentService(
	billRepo billing.BillRepository,
	templates *printing.TemplateEngine,
	renderer printing.PDFRenderer,
	archive Archiver,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		billRepo:  billRepo,
		templates: templates,
		renderer:  renderer,
		archive:   archive,
		logger:    logger,
	}
}

// BillPDF renders a bill the actor may access
func (s *DocumentService) BillPDF(ctx context.Context, actor policy.Actor, billID uuid.UUID) (doc *Document, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "bill_pdf", attribute.String("bill.id", billID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	bill, err := s.loadAccessible(ctx, actor, billID)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("bill-%s-%d-%02d.pdf", shortID(bill.ID), bill.Year, bill.Month)
	version := bill.GetVersion()
	if doc := s.fromArchive(ctx, filename, bill.ID, func() ([]byte, string, error) {
		return s.archive.LoadBill(ctx, bill.ID, version)
	}); doc != nil {
		return doc, nil
	}

	doc, err = s.render(ctx, printing.BillTemplate, billDocument(bill), "Bill "+bill.Period().String())
	if err != nil {
		return nil, err
	}
	doc.Filename = filename

	if s.archive != nil {
		key, err := s.archive.StoreBill(ctx, bill.ID, version, doc.Data)
		if err != nil {
			s.logger.Warn("Failed to archive bill PDF", zap.String("bill_id", bill.ID.String()), zap.Error(err))
		} else {
			doc.ArchiveKey = key
		}
	}
	return doc, nil
}

// ReceiptPDF renders the receipt of the payment at paymentIndex, counted
// from the first payment
func (s *DocumentService) ReceiptPDF(ctx context.Context, actor policy.Actor, billID uuid.UUID, paymentIndex int) (doc *Document, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "receipt_pdf",
		attribute.String("bill.id", billID.String()),
		attribute.Int("payment.index", paymentIndex))
	defer func() { telemetry.EndSpan(span, err) }()

	bill, err := s.loadAccessible(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	payment, err := bill.Payment(paymentIndex)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("receipt-%s-%d.pdf", shortID(bill.ID), paymentIndex+1)
	version := bill.GetVersion()
	if doc := s.fromArchive(ctx, filename, bill.ID, func() ([]byte, string, error) {
		return s.archive.LoadReceipt(ctx, bill.ID, paymentIndex, version)
	}); doc != nil {
		return doc, nil
	}

	paidSoFar := decimal.Zero
	for _, p := range bill.PaymentHistory[:paymentIndex+1] {
		paidSoFar = paidSoFar.Add(p.Amount)
	}
	data := printing.ReceiptDocument{
		Bill:         billDocument(bill),
		Payment:      paymentLine(payment),
		PaymentIndex: paymentIndex,
		Balance:      bill.Amount.Sub(paidSoFar),
	}

	doc, err = s.render(ctx, printing.ReceiptTemplate, data, "Receipt "+bill.Period().String())
	if err != nil {
		return nil, err
	}
	doc.Filename = filename

	if s.archive != nil {
		key, err := s.archive.StoreReceipt(ctx, bill.ID, paymentIndex, version, doc.Data)
		if err != nil {
			s.logger.Warn("Failed to archive receipt PDF",
				zap.String("bill_id", bill.ID.String()),
				zap.Int("payment_index", paymentIndex),
				zap.Error(err))
		} else {
			doc.ArchiveKey = key
		}
	}
	return doc, nil
}

// fromArchive returns the stored copy, or nil when the document has to be
// rendered. Archive read errors other than a missing object are logged.
func (s *DocumentService) fromArchive(ctx context.Context, filename string, billID uuid.UUID, load func() ([]byte, string, error)) *Document {
	if s.archive == nil {
		return nil
	}
	data, key, err := load()
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn("Failed to read archived document",
				zap.String("bill_id", billID.String()),
				zap.String("filename", filename),
				zap.Error(err))
		}
		return nil
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("document.archived", true))
	return &Document{Filename: filename, Data: data, ArchiveKey: key}
}

func (s *DocumentService) loadAccessible(ctx context.Context, actor policy.Actor, billID uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAccessBill(actor, bill.TenantID, bill.ApartmentName); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *DocumentService) render(ctx context.Context, template string, data any, title string) (*Document, error) {
	html, err := s.templates.Render(template, data)
	if err != nil {
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:      html,
		Title:     title,
		PaperSize: printing.PaperSizeA4,
		Margins:   printing.DefaultMargins(),
	})
	if err != nil {
		s.logger.Error("PDF rendering failed", zap.String("template", template), zap.Error(err))
		return nil, err
	}
	return &Document{Data: result.PDFData, PageCount: result.PageCount}, nil
}

func billDocument(b *billing.Bill) printing.BillDocument {
	payments := make([]printing.PaymentLine, len(b.PaymentHistory))
	for i, p := range b.PaymentHistory {
		payments[i] = paymentLine(p)
	}
	return printing.BillDocument{
		BillID:          b.ID,
		TenantName:      b.TenantName,
		TenantEmail:     b.TenantEmail,
		LandlordName:    b.LandlordName,
		ApartmentName:   b.ApartmentName,
		Description:     b.Description,
		Month:           b.Month,
		Year:            b.Year,
		DueDate:         b.DueDate,
		Status:          string(b.Status),
		Amount:          b.Amount,
		PaidAmount:      b.PaidAmount,
		RemainingAmount: b.RemainingAmount,
		Payments:        payments,
		GeneratedAt:     time.Now(),
	}
}

func paymentLine(p billing.PaymentRecord) printing.PaymentLine {
	return printing.PaymentLine{
		ID:     p.ID,
		Amount: p.Amount,
		Date:   p.Date,
		Method: string(p.Method),
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
