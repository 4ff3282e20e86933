package request

type CreateInvestorRequest struct {
	Name     string `json:"name"`
	JoinDate string `json:"joinDate"`
}
