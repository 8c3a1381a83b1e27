package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Template names
const (
	BillTemplate    = "bill"
	ReceiptTemplate = "receipt"
)

// PaymentLine is one row of a bill's payment history
type PaymentLine struct {
	ID     uuid.UUID
	Amount decimal.Decimal
	Date   time.Time
	Method string
}

// BillDocument is the data bound to the bill template
type BillDocument struct {
	BillID          uuid.UUID
	TenantName      string
	TenantEmail     string
	LandlordName    string
	ApartmentName   string
	Description     string
	Month           int
	Year            int
	DueDate         time.Time
	Status          string
	Amount          decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	Payments        []PaymentLine
	GeneratedAt     time.Time
}

// ReceiptDocument is the data bound to the receipt template
type ReceiptDocument struct {
	Bill         BillDocument
	Payment      PaymentLine
	PaymentIndex int
	// Balance is the remaining amount right after this payment
	Balance decimal.Decimal
}

const documentStyle = `<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
h1 { font-size: 20px; margin-bottom: 4px; }
.muted { color: #777; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
td.num, th.num { text-align: right; }
.status { font-weight: bold; }
.total td { font-weight: bold; }
</style>`

const billTemplateHTML = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>Bill {{shortID .BillID}}</title>` + documentStyle + `</head>
<body>
<h1>Rent Bill</h1>
<div class="muted">Bill #{{shortID .BillID}} &middot; {{monthName .Month}} {{.Year}}</div>
<table>
<tr><th>Tenant</th><td>{{.TenantName}}</td><th>Landlord</th><td>{{.LandlordName}}</td></tr>
<tr><th>Email</th><td>{{.TenantEmail}}</td><th>Apartment</th><td>{{title .ApartmentName}}</td></tr>
<tr><th>Due date</th><td>{{formatDate .DueDate}}</td><th>Status</th><td class="status">{{upper .Status}}</td></tr>
</table>
<table>
<tr><th>Description</th><th class="num">Amount</th></tr>
<tr><td>{{.Description}}</td><td class="num">{{formatMoney .Amount}}</td></tr>
<tr><td>Paid</td><td class="num">{{formatMoney .PaidAmount}}</td></tr>
<tr class="total"><td>Balance due</td><td class="num">{{formatMoney .RemainingAmount}}</td></tr>
</table>
{{if .Payments}}
<table>
<tr><th>#</th><th>Date</th><th>Method</th><th class="num">Amount</th></tr>
{{range $i, $p := .Payments}}<tr><td>{{inc $i}}</td><td>{{formatDateTime $p.Date}}</td><td>{{$p.Method}}</td><td class="num">{{formatMoney $p.Amount}}</td></tr>
{{end}}</table>
{{end}}
<p class="muted">Generated {{formatDateTime .GeneratedAt}}</p>
</body></html>`

const receiptTemplateHTML = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>Receipt {{shortID .Payment.ID}}</title>` + documentStyle + `</head>
<body>
<h1>Payment Receipt</h1>
<div class="muted">Receipt #{{shortID .Payment.ID}} &middot; payment {{inc .PaymentIndex}} of bill #{{shortID .Bill.BillID}}</div>
<table>
<tr><th>Received from</th><td>{{.Bill.TenantName}}</td></tr>
<tr><th>Apartment</th><td>{{title .Bill.ApartmentName}}</td></tr>
<tr><th>For</th><td>{{.Bill.Description}}</td></tr>
<tr><th>Date</th><td>{{formatDateTime .Payment.Date}}</td></tr>
<tr><th>Method</th><td>{{.Payment.Method}}</td></tr>
</table>
<table>
<tr class="total"><td>Amount received</td><td class="num">{{formatMoney .Payment.Amount}}</td></tr>
<tr><td>Bill total</td><td class="num">{{formatMoney .Bill.Amount}}</td></tr>
<tr><td>Balance after payment</td><td class="num">{{formatMoney .Balance}}</td></tr>
</table>
<p class="muted">Issued by {{.Bill.LandlordName}} on {{formatDateTime .Bill.GeneratedAt}}</p>
</body></html>`
