package request

type ComputeNavRequest struct {
	Date                string  `json:"date"`
	TotalPortfolioValue float64 `json:"totalPortfolioValue"`
}
