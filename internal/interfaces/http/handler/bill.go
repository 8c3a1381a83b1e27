package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/tenancy/backend/internal/application/billing"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/interfaces/http/dto"
)

// GenerateBillsRequest is the body of POST /bills/generate-monthly
type GenerateBillsRequest struct {
	Month   int    `json:"month" binding:"required,gte=1,lte=12"`
	Year    int    `json:"year" binding:"required,gte=2000,lte=2100"`
	DueDate string `json:"dueDate"`
}

// PayCashRequest is the body of POST /bills/pay-cash
type PayCashRequest struct {
	BillID string  `json:"billId" binding:"required,uuid"`
	Amount float64 `json:"amount" binding:"gt=0"`
}

// UpdateBillRequest is the body of PUT /bills/:billId
type UpdateBillRequest struct {
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	DueDate     string   `json:"dueDate"`
}

type billLister func(ctx context.Context, actor policy.Actor) ([]appbilling.BillResponse, error)

// BillHandler serves the billing ledger and its PDF documents
type BillHandler struct {
	BaseHandler
	billService     *appbilling.Service
	documentService *appbilling.DocumentService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *appbilling.Service, documentService *appbilling.DocumentService) *BillHandler {
	return &BillHandler{
		billService:     billService,
		documentService: documentService,
	}
}

// GenerateMonthly creates the month's bills for the landlord's tenants
func (h *BillHandler) GenerateMonthly(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req GenerateBillsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		h.BadRequest(c, "Invalid dueDate")
		return
	}

	result, err := h.billService.GenerateMonthlyBills(c.Request.Context(), actor, appbilling.GenerateInput{
		Month:   req.Month,
		Year:    req.Year,
		DueDate: dueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	msg := fmt.Sprintf("Generated %d bills, skipped %d existing", len(result.Created), result.Skipped)
	c.JSON(http.StatusCreated, dto.NewMessageResponse(result, msg))
}

// MyBills returns the calling tenant's bills
func (h *BillHandler) MyBills(c *gin.Context) {
	h.listBills(c, h.billService.MyBills)
}

// ApartmentBills returns every bill of the landlord's apartment
func (h *BillHandler) ApartmentBills(c *gin.Context) {
	h.listBills(c, h.billService.ApartmentBills)
}

// UnpaidBills returns open bills in the caller's scope
func (h *BillHandler) UnpaidBills(c *gin.Context) {
	h.listBills(c, h.billService.UnpaidBills)
}

// PaidBills returns settled bills in the caller's scope
func (h *BillHandler) PaidBills(c *gin.Context) {
	h.listBills(c, h.billService.PaidBills)
}

// PayCash records a cash payment against one of the tenant's bills
func (h *BillHandler) PayCash(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req PayCashRequest
	if !h.bindJSON(c, &req) {
		return
	}
	billID, err := uuid.Parse(req.BillID)
	if err != nil {
		h.BadRequest(c, "Invalid billId")
		return
	}

	bill, err := h.billService.RecordCashPayment(c.Request.Context(), actor, billID, toDecimal(req.Amount))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, bill, "Payment recorded")
}

// Update edits the amount, description or due date of a bill
func (h *BillHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.uuidParam(c, "billId")
	if !ok {
		return
	}
	var req UpdateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		h.BadRequest(c, "Invalid dueDate")
		return
	}

	bill, err := h.billService.UpdateBill(c.Request.Context(), actor, billID, appbilling.UpdateBillInput{
		Amount:      toDecimalPtr(req.Amount),
		Description: req.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// DownloadBill streams the bill as a PDF
func (h *BillHandler) DownloadBill(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.uuidParam(c, "billId")
	if !ok {
		return
	}
	doc, err := h.documentService.BillPDF(c.Request.Context(), actor, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendPDF(c, doc)
}

// DownloadReceipt streams the receipt of one payment as a PDF
func (h *BillHandler) DownloadReceipt(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	billID, ok := h.uuidParam(c, "billId")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("paymentIndex"))
	if err != nil || index < 0 {
		h.BadRequest(c, "Invalid paymentIndex")
		return
	}
	doc, err := h.documentService.ReceiptPDF(c.Request.Context(), actor, billID, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendPDF(c, doc)
}

func (h *BillHandler) listBills(c *gin.Context, fetch billLister) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	bills, err := fetch(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, bills)
}

func sendPDF(c *gin.Context, doc *appbilling.Document) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}
