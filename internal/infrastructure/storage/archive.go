package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const pdfContentType = "application/pdf"

// ObjectStore is the part of object storage the archive needs
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// DocumentArchive files rendered bill documents under keys that include the
// bill version, so a stored copy always matches the bill it was rendered
// from.
type DocumentArchive struct {
	store  ObjectStore
	prefix string
}

// NewDocumentArchive creates an archive. prefix is prepended to every key
// and may be empty.
func NewDocumentArchive(store ObjectStore, prefix string) *DocumentArchive {
	return &DocumentArchive{store: store, prefix: prefix}
}

// BillKey is the object key of a bill PDF
func BillKey(billID uuid.UUID, version int) string {
	return fmt.Sprintf("bills/%s-v%d.pdf", billID, version)
}

// ReceiptKey is the object key of a receipt PDF
func ReceiptKey(billID uuid.UUID, paymentIndex, version int) string {
	return fmt.Sprintf("receipts/%s-%d-v%d.pdf", billID, paymentIndex, version)
}

// LoadBill returns the archived bill PDF and its key. ErrObjectNotFound
// means the version was never archived.
func (a *DocumentArchive) LoadBill(ctx context.Context, billID uuid.UUID, version int) ([]byte, string, error) {
	return a.load(ctx, BillKey(billID, version))
}

// StoreBill uploads a bill PDF and returns its key
func (a *DocumentArchive) StoreBill(ctx context.Context, billID uuid.UUID, version int, pdf []byte) (string, error) {
	return a.put(ctx, BillKey(billID, version), pdf)
}

// LoadReceipt returns the archived receipt PDF and its key
func (a *DocumentArchive) LoadReceipt(ctx context.Context, billID uuid.UUID, paymentIndex, version int) ([]byte, string, error) {
	return a.load(ctx, ReceiptKey(billID, paymentIndex, version))
}

// StoreReceipt uploads a receipt PDF and returns its key
func (a *DocumentArchive) StoreReceipt(ctx context.Context, billID uuid.UUID, paymentIndex, version int, pdf []byte) (string, error) {
	return a.put(ctx, ReceiptKey(billID, paymentIndex, version), pdf)
}

func (a *DocumentArchive) load(ctx context.Context, key string) ([]byte, string, error) {
	key = a.prefix + key
	data, err := a.store.Download(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return data, key, nil
}

func (a *DocumentArchive) put(ctx context.Context, key string, pdf []byte) (string, error) {
	key = a.prefix + key
	if err := a.store.Upload(ctx, key, pdf, pdfContentType); err != nil {
		return "", err
	}
	return key, nil
}
