package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/printing"
	"github.com/tenancy/backend/internal/infrastructure/storage"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

type capturingRenderer struct {
	requests []*printing.RenderRequest
	err      error
}

func (r *capturingRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 fake"), PageCount: 1}, nil
}

func (r *capturingRenderer) Close() error { return nil }

type fakeArchive struct {
	err     error
	readErr error
	keys    []string
	objects map[string][]byte
}

func (a *fakeArchive) load(key string) ([]byte, string, error) {
	if a.readErr != nil {
		return nil, "", a.readErr
	}
	data, ok := a.objects[key]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return data, key, nil
}

func (a *fakeArchive) store(key string, pdf []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.objects == nil {
		a.objects = map[string][]byte{}
	}
	a.objects[key] = pdf
	a.keys = append(a.keys, key)
	return key, nil
}

func (a *fakeArchive) LoadBill(_ context.Context, id uuid.UUID, version int) ([]byte, string, error) {
	return a.load(storage.BillKey(id, version))
}

func (a *fakeArchive) StoreBill(_ context.Context, id uuid.UUID, version int, pdf []byte) (string, error) {
	return a.store(storage.BillKey(id, version), pdf)
}

func (a *fakeArchive) LoadReceipt(_ context.Context, id uuid.UUID, idx, version int) ([]byte, string, error) {
	return a.load(storage.ReceiptKey(id, idx, version))
}

func (a *fakeArchive) StoreReceipt(_ context.Context, id uuid.UUID, idx, version int, pdf []byte) (string, error) {
	return a.store(storage.ReceiptKey(id, idx, version), pdf)
}

func paidTwice(t *testing.T) (*billing.Bill, *testutil.MockBillRepository) {
	t.Helper()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenant := testutil.NewTenant("Tom", "Oak")
	bill := newBill(t, tenant, landlord, 1000)
	require.NoError(t, bill.ApplyPayment(decimal.NewFromInt(300), billing.PaymentMethodCash))
	require.NoError(t, bill.ApplyPayment(decimal.NewFromInt(400), billing.PaymentMethodCash))

	bills := new(testutil.MockBillRepository)
	bills.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
	return bill, bills
}

func TestDocumentService_BillPDF(t *testing.T) {
	bill, bills := paidTwice(t)
	renderer := &capturingRenderer{}
	archive := &fakeArchive{}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), renderer, archive, zap.NewNop())

	tenant := testutil.NewTenant("Tom", "Oak")
	tenant.ID = bill.TenantID

	doc, err := svc.BillPDF(context.Background(), testutil.Actor(tenant), bill.ID)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("bill-%s-2025-03.pdf", bill.ID.String()[:8]), doc.Filename)
	assert.Equal(t, []byte("%PDF-1.4 fake"), doc.Data)
	assert.Equal(t, storage.BillKey(bill.ID, bill.GetVersion()), doc.ArchiveKey)

	require.Len(t, renderer.requests, 1)
	req := renderer.requests[0]
	assert.Equal(t, printing.PaperSizeA4, req.PaperSize)
	assert.Contains(t, req.HTML, "Tom")
	assert.Contains(t, req.HTML, "300.00")
}

func TestDocumentService_ReceiptPDF(t *testing.T) {
	bill, bills := paidTwice(t)
	renderer := &capturingRenderer{}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), renderer, nil, zap.NewNop())
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)

	doc, err := svc.ReceiptPDF(context.Background(), testutil.Actor(landlord), bill.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("receipt-%s-2.pdf", bill.ID.String()[:8]), doc.Filename)
	assert.Empty(t, doc.ArchiveKey)
	require.Len(t, renderer.requests, 1)
	// balance after the second payment: 1000 - 300 - 400
	assert.Contains(t, renderer.requests[0].HTML, "300.00")

	_, err = svc.ReceiptPDF(context.Background(), testutil.Actor(landlord), bill.ID, 2)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.ReceiptPDF(context.Background(), testutil.Actor(landlord), bill.ID, -1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Len(t, renderer.requests, 1)
}

func TestDocumentService_ArchiveFailureStillReturnsDocument(t *testing.T) {
	bill, bills := paidTwice(t)
	archive := &fakeArchive{err: errors.New("bucket unavailable")}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), &capturingRenderer{}, archive, zap.NewNop())

	doc, err := svc.ReceiptPDF(context.Background(), testutil.Actor(testutil.NewLandlord("Lara", "Oak", 1000)), bill.ID, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Data)
	assert.Empty(t, doc.ArchiveKey)
}

func TestDocumentService_ServesArchivedCopyOfSameVersion(t *testing.T) {
	bill, bills := paidTwice(t)
	renderer := &capturingRenderer{}
	archive := &fakeArchive{}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), renderer, archive, zap.NewNop())
	landlord := testutil.Actor(testutil.NewLandlord("Lara", "Oak", 1000))
	ctx := context.Background()

	first, err := svc.ReceiptPDF(ctx, landlord, bill.ID, 0)
	require.NoError(t, err)
	second, err := svc.ReceiptPDF(ctx, landlord, bill.ID, 0)
	require.NoError(t, err)

	assert.Len(t, renderer.requests, 1)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Filename, second.Filename)
	assert.Equal(t, storage.ReceiptKey(bill.ID, 0, bill.GetVersion()), second.ArchiveKey)
	assert.Zero(t, second.PageCount)

	_, err = svc.BillPDF(ctx, landlord, bill.ID)
	require.NoError(t, err)
	_, err = svc.BillPDF(ctx, landlord, bill.ID)
	require.NoError(t, err)
	assert.Len(t, renderer.requests, 2)
}

func TestDocumentService_RevisedBillIsRenderedAgain(t *testing.T) {
	bill, bills := paidTwice(t)
	renderer := &capturingRenderer{}
	archive := &fakeArchive{}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), renderer, archive, zap.NewNop())
	landlord := testutil.Actor(testutil.NewLandlord("Lara", "Oak", 1000))
	ctx := context.Background()

	_, err := svc.ReceiptPDF(ctx, landlord, bill.ID, 1)
	require.NoError(t, err)

	amount := decimal.NewFromInt(1200)
	require.NoError(t, bill.Revise(billing.Revision{Amount: &amount}))

	doc, err := svc.ReceiptPDF(ctx, landlord, bill.ID, 1)
	require.NoError(t, err)
	require.Len(t, renderer.requests, 2)
	// 1200 - 300 - 400
	assert.Contains(t, renderer.requests[1].HTML, "500.00")
	assert.Equal(t, storage.ReceiptKey(bill.ID, 1, bill.GetVersion()), doc.ArchiveKey)
	assert.Len(t, archive.keys, 2)
}

func TestDocumentService_ArchiveReadFailureFallsBackToRendering(t *testing.T) {
	bill, bills := paidTwice(t)
	renderer := &capturingRenderer{}
	archive := &fakeArchive{readErr: errors.New("connection reset")}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), renderer, archive, zap.NewNop())

	doc, err := svc.BillPDF(context.Background(), testutil.Actor(testutil.NewLandlord("Lara", "Oak", 1000)), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), doc.Data)
	assert.Len(t, renderer.requests, 1)
}

func TestDocumentService_ArchivedCopyStillChecksAccess(t *testing.T) {
	bill, bills := paidTwice(t)
	archive := &fakeArchive{}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), &capturingRenderer{}, archive, zap.NewNop())
	ctx := context.Background()

	_, err := svc.BillPDF(ctx, testutil.Actor(testutil.NewLandlord("Lara", "Oak", 1000)), bill.ID)
	require.NoError(t, err)

	_, err = svc.BillPDF(ctx, testutil.Actor(testutil.NewTenant("Sam", "Oak")), bill.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDocumentService_Rejections(t *testing.T) {
	bill, bills := paidTwice(t)
	renderer := &capturingRenderer{}
	svc := NewDocumentService(bills, printing.NewTemplateEngine(), renderer, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.BillPDF(ctx, testutil.Actor(testutil.NewTenant("Sam", "Oak")), bill.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.BillPDF(ctx, testutil.Actor(testutil.NewLandlord("Pete", "Pine", 800)), bill.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, renderer.requests)

	renderer.err = printing.NewRenderError(printing.ErrCodeRenderFailed, "chrome crashed", nil)
	_, err = svc.BillPDF(ctx, testutil.Actor(testutil.NewLandlord("Lara", "Oak", 1000)), bill.ID)
	assert.Error(t, err)
}
