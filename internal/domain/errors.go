package domain

import "errors"

var (
	ErrInvalidTransition       = errors.New("invalid order status transition")
	ErrIncompleteAllocation    = errors.New("allocation with non-zero basis has no payee")
	ErrNegativeCommission      = errors.New("computed commission amount is negative")
	ErrMissingReason           = errors.New("rejection reason is required")
	ErrSeparationOfDuties      = errors.New("approver must be distinct from allocator")
	ErrMissingDocuments        = errors.New("required documents are missing")
	ErrConflictingBasis        = errors.New("rate and fixed amount are mutually exclusive")
	ErrGenerationPartial       = errors.New("one or more settlement documents failed to generate")
	ErrDuplicateReference      = errors.New("order reference already exists")
	ErrCollaboratorUnavailable = errors.New("external collaborator unavailable")
	ErrOrderNotFound           = errors.New("order not found")
	ErrSettlementNotFound      = errors.New("settlement document not found")
)
