package request

type CreateOrderRequest struct {
	Reference        string              `json:"reference"`
	Currency         string              `json:"currency"`
	BaseAmount       string              `json:"base_amount"`
	FulfillmentDocID string              `json:"fulfillment_doc_id"`
	CallbackURL      string              `json:"callback_url"`
	Allocations      []AllocationRequest `json:"allocations"`
}

type AllocationRequest struct {
	Role            string `json:"role"`
	Rate            string `json:"rate"`
	FixedAmount     string `json:"fixed_amount"`
	PayeeID         string `json:"payee_id"`
	NoPayeeRequired bool   `json:"no_payee_required"`
}

type SetAllocationsRequest struct {
	Allocations []AllocationRequest `json:"allocations"`
}

type UpdateBaseAmountRequest struct {
	BaseAmount string `json:"base_amount"`
}

type TransitionRequest struct {
	ActorID      string   `json:"actor_id"`
	Capabilities []string `json:"capabilities"`
	Reason       string   `json:"reason"`

	// Set by the ledger integration when a posted order's financial
	// document was voided externally.
	External bool `json:"external"`
}
