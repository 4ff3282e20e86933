package brokerage

// accountSummaryResponse is the wire format of the brokerage account summary endpoint.
type accountSummaryResponse struct {
	Account struct {
		ID           string  `json:"id"`
		TotalEquity  float64 `json:"totalEquity"`
		CashBalance  float64 `json:"cashBalance"`
		Currency     string  `json:"currency"`
		AsOfUnixTime int64   `json:"asOf"`
	} `json:"account"`
}

// positionsResponse is the wire format of the brokerage positions endpoint.
type positionsResponse struct {
	Positions []struct {
		Symbol      string  `json:"symbol"`
		Quantity    float64 `json:"quantity"`
		MarketValue float64 `json:"marketValue"`
	} `json:"positions"`
}
