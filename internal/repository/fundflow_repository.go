package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// FundFlowRepository provides data access methods for the fund_flow_request
// table. Status changes always carry the expected current status in the WHERE
// clause, so a lost race surfaces as zero affected rows instead of a silent
// double transition.
type FundFlowRepository struct {
	db *sql.DB
}

// NewFundFlowRepository creates a new FundFlowRepository with the provided database connection.
func NewFundFlowRepository(db *sql.DB) *FundFlowRepository {
	return &FundFlowRepository{db: db}
}

// FundFlowFilter for querying fund-flow requests
type FundFlowFilter struct {
	InvestorID string
	Status     model.FlowStatus
}

const fundFlowColumns = `id, investor_id, flow_type, requested_amount, actual_amount, status,
	matched_trade_id, shares_transacted, nav_per_share_at_processing, realized_gain,
	rejection_reason, processing_note, notes, request_date, processed_date`

// Create inserts a newly submitted request.
func (r *FundFlowRepository) Create(req model.FundFlowRequest) error {
	_, err := r.db.Exec(`
		INSERT INTO fund_flow_request
			(id, investor_id, flow_type, requested_amount, actual_amount, status, notes, request_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, req.ID, req.InvestorID, string(req.FlowType), req.RequestedAmount, req.ActualAmount,
		string(req.Status), req.Notes, FormatDate(req.RequestDate))
	if err != nil {
		return fmt.Errorf("failed to insert fund-flow request: %w", err)
	}
	return nil
}

// GetRequest retrieves a single request by ID.
// Returns apperrors.ErrFundFlowNotFound if no record exists.
func (r *FundFlowRepository) GetRequest(id string) (model.FundFlowRequest, error) {
	return r.getRequest(r.db, id)
}

// GetRequestTx is GetRequest inside an open transaction.
func (r *FundFlowRepository) GetRequestTx(q DBTX, id string) (model.FundFlowRequest, error) {
	return r.getRequest(q, id)
}

func (r *FundFlowRepository) getRequest(q DBTX, id string) (model.FundFlowRequest, error) {
	row := q.QueryRow(`
		SELECT `+fundFlowColumns+`
		FROM fund_flow_request
		WHERE id = ?
	`, id)
	req, err := scanFundFlow(row.Scan)
	if err == sql.ErrNoRows {
		return model.FundFlowRequest{}, apperrors.ErrFundFlowNotFound
	}
	return req, err
}

// List retrieves requests matching the filter, newest first.
func (r *FundFlowRepository) List(filter FundFlowFilter) ([]model.FundFlowRequest, error) {
	query := `
		SELECT ` + fundFlowColumns + `
		FROM fund_flow_request
	`
	var args []any
	var where []string
	if filter.InvestorID != "" {
		where = append(where, "investor_id = ?")
		args = append(args, filter.InvestorID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += ` ORDER BY request_date DESC, id DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund_flow_request table: %w", err)
	}
	defer rows.Close()

	requests := []model.FundFlowRequest{}
	for rows.Next() {
		req, err := scanFundFlow(rows.Scan)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund_flow_request table: %w", err)
	}

	return requests, nil
}

// TransitionStatus moves a request from one status to another. The expected
// current status is part of the WHERE clause: if another operator won the
// race the update affects zero rows and apperrors.ErrInvalidTransition is
// returned, which is what makes Process at-most-once.
func (r *FundFlowRepository) TransitionStatus(id string, from, to model.FlowStatus) error {
	return r.transitionStatus(r.db, id, from, to)
}

// TransitionStatusTx is TransitionStatus inside an open transaction.
func (r *FundFlowRepository) TransitionStatusTx(q DBTX, id string, from, to model.FlowStatus) error {
	return r.transitionStatus(q, id, from, to)
}

func (r *FundFlowRepository) transitionStatus(q DBTX, id string, from, to model.FlowStatus) error {
	result, err := q.Exec(`
		UPDATE fund_flow_request
		SET status = ?
		WHERE id = ? AND status = ?
	`, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update fund-flow status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

// SetRejection marks a request rejected with a reason, guarded by the current status.
func (r *FundFlowRepository) SetRejection(id string, from model.FlowStatus, reason string) error {
	result, err := r.db.Exec(`
		UPDATE fund_flow_request
		SET status = ?, rejection_reason = ?
		WHERE id = ? AND status = ?
	`, string(model.FlowRejected), reason, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to reject fund-flow request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

// SetMatch links a request to an external brokerage trade and optionally
// pins the actual transfer amount, guarded by the current status.
func (r *FundFlowRepository) SetMatch(id string, from model.FlowStatus, tradeID string, actualAmount float64) error {
	result, err := r.db.Exec(`
		UPDATE fund_flow_request
		SET status = ?, matched_trade_id = ?, actual_amount = ?
		WHERE id = ? AND status = ?
	`, string(model.FlowMatched), tradeID, actualAmount, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to match fund-flow request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

// SetProcessedTx records the completed share accounting of a Process
// transition inside an open transaction, guarded by status=matched.
func (r *FundFlowRepository) SetProcessedTx(q DBTX, id string, shares, navPerShare, realizedGain float64, processedDate time.Time) error {
	result, err := q.Exec(`
		UPDATE fund_flow_request
		SET status = ?, shares_transacted = ?, nav_per_share_at_processing = ?,
		    realized_gain = ?, processed_date = ?, processing_note = NULL
		WHERE id = ? AND status = ?
	`, string(model.FlowProcessed), shares, navPerShare, realizedGain,
		FormatDate(processedDate), id, string(model.FlowMatched))
	if err != nil {
		return fmt.Errorf("failed to mark fund-flow request processed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

// SetProcessingNote attaches a diagnostic to a request whose Process attempt
// was rolled back. The status is left untouched.
func (r *FundFlowRepository) SetProcessingNote(id, note string) error {
	_, err := r.db.Exec(`
		UPDATE fund_flow_request
		SET processing_note = ?
		WHERE id = ?
	`, note, id)
	if err != nil {
		return fmt.Errorf("failed to set processing note: %w", err)
	}
	return nil
}

func scanFundFlow(scan func(dest ...any) error) (model.FundFlowRequest, error) {
	var req model.FundFlowRequest
	var flowType, status, requestDateStr string
	var matchedTradeID, rejectionReason, processingNote, notes, processedDateStr sql.NullString
	err := scan(&req.ID, &req.InvestorID, &flowType, &req.RequestedAmount, &req.ActualAmount, &status,
		&matchedTradeID, &req.SharesTransacted, &req.NavPerShareAtProcessing, &req.RealizedGain,
		&rejectionReason, &processingNote, &notes, &requestDateStr, &processedDateStr)
	if err == sql.ErrNoRows {
		return model.FundFlowRequest{}, err
	}
	if err != nil {
		return model.FundFlowRequest{}, fmt.Errorf("failed to scan fund_flow_request table results: %w", err)
	}
	req.FlowType = model.FlowType(flowType)
	req.Status = model.FlowStatus(status)
	req.MatchedTradeID = matchedTradeID.String
	req.RejectionReason = rejectionReason.String
	req.ProcessingNote = processingNote.String
	req.Notes = notes.String
	req.RequestDate, err = ParseTime(requestDateStr)
	if err != nil {
		return model.FundFlowRequest{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if processedDateStr.Valid {
		processed, err := ParseTime(processedDateStr.String)
		if err != nil {
			return model.FundFlowRequest{}, fmt.Errorf("failed to parse date: %w", err)
		}
		req.ProcessedDate = &processed
	}
	return req, nil
}
