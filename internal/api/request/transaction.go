package request

type ReverseTransactionRequest struct {
	Reason string `json:"reason"`
}
