package models

// DisbursementResult is the outcome of a payout call to the payment
// gateway. Status is the gateway's own status string, e.g. "completed".
type DisbursementResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// GatewayRequest is the payload sent to the live gateway for a payout.
type GatewayRequest struct {
	ResellerID  string  `json:"resellerId"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	ReferenceID string  `json:"referenceId"`
	Description string  `json:"description,omitempty"`
}

// GatewayResponse is the standard response envelope from the live gateway.
type GatewayResponse struct {
	Status bool                   `json:"status"`
	Code   interface{}            `json:"code"` // can be string or null
	Data   map[string]interface{} `json:"data"`
}
