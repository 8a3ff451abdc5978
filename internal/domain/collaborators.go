package domain

import "context"

// DocumentChecker is the document-storage collaborator. The core only
// needs a yes/no answer about required attachments.
type DocumentChecker interface {
	HasRequiredDocuments(ctx context.Context, orderID string) (bool, error)
}

// LedgerService is the accounting collaborator. Confirm calls are
// idempotent on the remote side and may be re-invoked safely.
type LedgerService interface {
	ConfirmSalesOrder(ctx context.Context, orderID string) error
	ConfirmPayableDocument(ctx context.Context, settlementID string) error
	IsFulfillmentComplete(ctx context.Context, externalDocID string) (bool, error)
}
