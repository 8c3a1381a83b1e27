package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appbilling "github.com/tenancy/backend/internal/application/billing"
	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/infrastructure/printing"
	"github.com/tenancy/backend/internal/interfaces/http/dto"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, _ *printing.RenderRequest) (*printing.RenderResult, error) {
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 stub"), PageCount: 1}, nil
}

func (stubRenderer) Close() error { return nil }

type billHandlerFixture struct {
	bills     *testutil.MockBillRepository
	users     *testutil.MockUserRepository
	publisher *testutil.RecordingPublisher
	landlord  *identity.User
	tenant    *identity.User
	bill      *billing.Bill
}

func newBillHandlerFixture(t *testing.T) *billHandlerFixture {
	t.Helper()
	f := &billHandlerFixture{
		bills:     new(testutil.MockBillRepository),
		users:     new(testutil.MockUserRepository),
		publisher: &testutil.RecordingPublisher{},
		landlord:  testutil.NewLandlord("Lara", "Oak", 1000),
		tenant:    testutil.NewTenant("Tom", "Oak"),
	}
	period := billing.Period{Month: 3, Year: 2025}
	bill, err := billing.NewMonthlyBill(
		billing.Party{ID: f.tenant.ID, Name: f.tenant.Name, Email: f.tenant.Email},
		billing.Party{ID: f.landlord.ID, Name: f.landlord.Name},
		"Oak",
		decimal.NewFromInt(1000),
		period,
		period.DefaultDueDate(5),
	)
	require.NoError(t, err)
	bill.ClearDomainEvents()
	f.bill = bill
	return f
}

func (f *billHandlerFixture) router(actor *identity.User) *gin.Engine {
	svc := appbilling.NewService(f.bills, f.users, f.publisher, nil, appbilling.Config{MaxAttempts: 2}, zap.NewNop())
	docs := appbilling.NewDocumentService(f.bills, printing.NewTemplateEngine(), stubRenderer{}, nil, zap.NewNop())
	h := NewBillHandler(svc, docs)

	r := gin.New()
	r.Use(withActor(testutil.Actor(actor)))
	r.POST("/bills/generate-monthly", h.GenerateMonthly)
	r.GET("/bills/me", h.MyBills)
	r.POST("/bills/pay-cash", h.PayCash)
	r.PUT("/bills/:billId", h.Update)
	r.GET("/bills/download/:billId", h.DownloadBill)
	r.GET("/bills/download-receipt/:billId/:paymentIndex", h.DownloadReceipt)
	return r
}

func TestBillHandler_PayCash(t *testing.T) {
	f := newBillHandlerFixture(t)
	f.bills.On("FindByID", mock.Anything, f.bill.ID).Return(f.bill, nil)
	f.bills.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

	w := testutil.DoJSON(t, f.router(f.tenant), http.MethodPost, "/bills/pay-cash", map[string]any{
		"billId": f.bill.ID.String(),
		"amount": 400,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.DecodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "600", data["remainingAmount"])
	assert.Equal(t, "Partial", data["status"])
	assert.Equal(t, "Payment recorded", resp.Meta.Message)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestBillHandler_PayCashRejected(t *testing.T) {
	tests := []struct {
		name   string
		actor  func(f *billHandlerFixture) *identity.User
		body   func(f *billHandlerFixture) map[string]any
		status int
		code   string
	}{
		{
			name:   "non-positive amount",
			actor:  func(f *billHandlerFixture) *identity.User { return f.tenant },
			body:   func(f *billHandlerFixture) map[string]any { return map[string]any{"billId": f.bill.ID.String(), "amount": 0} },
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "more than remaining",
			actor:  func(f *billHandlerFixture) *identity.User { return f.tenant },
			body:   func(f *billHandlerFixture) map[string]any { return map[string]any{"billId": f.bill.ID.String(), "amount": 1500} },
			status: http.StatusBadRequest,
			code:   dto.ErrCodeInvalidInput,
		},
		{
			name:   "another tenant's bill",
			actor:  func(f *billHandlerFixture) *identity.User { return testutil.NewTenant("Sam", "Oak") },
			body:   func(f *billHandlerFixture) map[string]any { return map[string]any{"billId": f.bill.ID.String(), "amount": 100} },
			status: http.StatusForbidden,
			code:   dto.ErrCodeForbidden,
		},
		{
			name:   "landlord cannot pay",
			actor:  func(f *billHandlerFixture) *identity.User { return f.landlord },
			body:   func(f *billHandlerFixture) map[string]any { return map[string]any{"billId": f.bill.ID.String(), "amount": 100} },
			status: http.StatusForbidden,
			code:   dto.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillHandlerFixture(t)
			f.bills.On("FindByID", mock.Anything, f.bill.ID).Return(f.bill, nil)

			w := testutil.DoJSON(t, f.router(tt.actor(f)), http.MethodPost, "/bills/pay-cash", tt.body(f))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, testutil.DecodeResponse(t, w).Error.Code)
			f.bills.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		})
	}
}

func TestBillHandler_GenerateMonthlyValidation(t *testing.T) {
	f := newBillHandlerFixture(t)
	router := f.router(f.landlord)

	w := testutil.DoJSON(t, router, http.MethodPost, "/bills/generate-monthly", map[string]any{"month": 13, "year": 2025})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, testutil.DecodeResponse(t, w).Error.Code)

	w = testutil.DoJSON(t, router, http.MethodPost, "/bills/generate-monthly", map[string]any{"month": 3, "year": 2025, "dueDate": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid dueDate", testutil.DecodeResponse(t, w).Error.Message)
}

func TestBillHandler_GenerateMonthly(t *testing.T) {
	f := newBillHandlerFixture(t)
	f.users.On("FindByID", mock.Anything, f.landlord.ID).Return(f.landlord, nil)
	f.users.On("FindByApartment", mock.Anything, "Oak", identity.RoleTenant).Return([]*identity.User{f.tenant}, nil)
	f.bills.On("ExistsForPeriod", mock.Anything, f.tenant.ID, billing.Period{Month: 4, Year: 2025}).Return(false, nil)
	f.bills.On("Create", mock.Anything, mock.Anything).Return(nil)

	w := testutil.DoJSON(t, f.router(f.landlord), http.MethodPost, "/bills/generate-monthly", map[string]any{
		"month":   4,
		"year":    2025,
		"dueDate": "2025-04-10",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := testutil.DecodeResponse(t, w)
	data := resp.Data.(map[string]any)
	created := data["created"].([]any)
	require.Len(t, created, 1)
	assert.Equal(t, "1000", created[0].(map[string]any)["amount"])
	assert.Contains(t, resp.Meta.Message, "Generated 1 bills")
}

func TestBillHandler_DownloadBill(t *testing.T) {
	f := newBillHandlerFixture(t)
	f.bills.On("FindByID", mock.Anything, f.bill.ID).Return(f.bill, nil)

	w := testutil.DoJSON(t, f.router(f.tenant), http.MethodGet, "/bills/download/"+f.bill.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="bill-`)
	assert.Equal(t, "%PDF-1.4 stub", w.Body.String())
}

func TestBillHandler_DownloadReceipt(t *testing.T) {
	f := newBillHandlerFixture(t)
	require.NoError(t, f.bill.ApplyPayment(decimal.NewFromInt(250), billing.PaymentMethodCash))
	f.bill.ClearDomainEvents()
	f.bills.On("FindByID", mock.Anything, f.bill.ID).Return(f.bill, nil)
	router := f.router(f.landlord)

	w := testutil.DoJSON(t, router, http.MethodGet, "/bills/download-receipt/"+f.bill.ID.String()+"/0", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-")

	w = testutil.DoJSON(t, router, http.MethodGet, "/bills/download-receipt/"+f.bill.ID.String()+"/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(t, router, http.MethodGet, "/bills/download-receipt/"+f.bill.ID.String()+"/first", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillHandler_MyBills(t *testing.T) {
	f := newBillHandlerFixture(t)
	f.bills.On("Find", mock.Anything, mock.Anything).Return([]*billing.Bill{f.bill}, nil)

	w := testutil.DoJSON(t, f.router(f.tenant), http.MethodGet, "/bills/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, *resp.Meta.Count)
}
