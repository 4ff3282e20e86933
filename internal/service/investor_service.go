package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
)

// InvestorService handles investor-related business logic: registration,
// listing, and read-only position queries priced at the stored latest NAV.
type InvestorService struct {
	investorRepo *repository.InvestorRepository
	taxService   *TaxService
	nav          NavReader
}

// NewInvestorService creates a new InvestorService with the provided dependencies.
func NewInvestorService(
	investorRepo *repository.InvestorRepository,
	taxService *TaxService,
	nav NavReader,
) *InvestorService {
	return &InvestorService{
		investorRepo: investorRepo,
		taxService:   taxService,
		nav:          nav,
	}
}

// CreateInvestor registers a new active investor with zero holdings.
func (s *InvestorService) CreateInvestor(name string, joinDate time.Time) (model.Investor, error) {
	investor := model.Investor{
		ID:       uuid.NewString(),
		Name:     name,
		Status:   model.InvestorActive,
		JoinDate: joinDate,
	}
	if err := s.investorRepo.Create(investor); err != nil {
		return model.Investor{}, err
	}
	return investor, nil
}

// GetInvestor retrieves a single investor by ID.
func (s *InvestorService) GetInvestor(id string) (model.Investor, error) {
	return s.investorRepo.GetInvestor(id)
}

// GetInvestors retrieves investors matching the filter.
func (s *InvestorService) GetInvestors(filter repository.InvestorFilter) ([]model.Investor, error) {
	return s.investorRepo.GetInvestors(filter)
}

// SetStatus suspends or reactivates an investor. Closure to inactive happens
// only through a full withdrawal, never through this administrative path.
func (s *InvestorService) SetStatus(id string, status model.InvestorStatus) error {
	if status == model.InvestorInactive {
		return apperrors.ErrInvalidTransition
	}
	return s.investorRepo.SetStatus(id, status)
}

// GetPosition returns the investor's holding priced at the latest committed
// NAV, including the fund ownership percentage and the tax-aware eligible
// withdrawal estimate. Every figure derives from the stored snapshot and the
// shared tax calculator; nothing here computes a NAV.
func (s *InvestorService) GetPosition(id string) (model.InvestorPosition, error) {
	investor, err := s.investorRepo.GetInvestor(id)
	if err != nil {
		return model.InvestorPosition{}, err
	}

	snapshot, err := s.nav.LatestSnapshot()
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return model.InvestorPosition{}, apperrors.ErrNoNavAvailable
	}
	if err != nil {
		return model.InvestorPosition{}, err
	}

	activeTotal, err := s.investorRepo.ActiveShareTotal()
	if err != nil {
		return model.InvestorPosition{}, err
	}

	breakdown := s.taxService.EstimateGain(investor, 0, snapshot.NavPerShare)

	position := model.InvestorPosition{
		InvestorID:         investor.ID,
		Name:               investor.Name,
		Status:             investor.Status,
		CurrentShares:      investor.CurrentShares,
		NetInvestment:      investor.NetInvestment,
		NavPerShare:        snapshot.NavPerShare,
		NavDate:            snapshot.Date.Format("2006-01-02"),
		CurrentValue:       breakdown.CurrentValue,
		UnrealizedGain:     breakdown.UnrealizedGain,
		EligibleWithdrawal: s.taxService.EligibleWithdrawal(investor, snapshot.NavPerShare),
	}
	if activeTotal > 0 && investor.Status == model.InvestorActive {
		position.PercentageOfFund = roundMoney(investor.CurrentShares / activeTotal * 100)
	}
	return position, nil
}
