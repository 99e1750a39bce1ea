package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/pawnshop/pawn-engine/internal/domain"
	"github.com/pawnshop/pawn-engine/internal/service"
	customError "github.com/pawnshop/pawn-engine/pkg/errors"
	"github.com/pawnshop/pawn-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.PawnService
	validator *validator.Validate
}

func NewLoanHandler(service *service.PawnService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes mounts the loan API under /api/v1/pawn-loans.
func (h *LoanHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1/pawn-loans").Subrouter()

	api.HandleFunc("", h.OriginateLoan).Methods(http.MethodPost)
	api.HandleFunc("/code/{code}", h.GetLoanByCode).Methods(http.MethodGet)
	api.HandleFunc("/status/{status}", h.ListLoansByStatus).Methods(http.MethodGet)
	api.HandleFunc("/customer/{customerId}", h.ListLoansByCustomer).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/{id}/repayments", h.RecordRepayment).Methods(http.MethodPost)
	api.HandleFunc("/{id}/repayments", h.ListRepayments).Methods(http.MethodGet)
	api.HandleFunc("/{id}/repayments/preview", h.PreviewRepayment).Methods(http.MethodPost)
	api.HandleFunc("/{id}/redeem", h.RedeemLoan).Methods(http.MethodPost)
	api.HandleFunc("/{id}/default", h.DefaultLoan).Methods(http.MethodPost)
	api.HandleFunc("/{id}/cancel", h.CancelLoan).Methods(http.MethodPost)
	api.HandleFunc("/{id}/overdue", h.CheckOverdue).Methods(http.MethodPost)
}

// OriginateLoan handles POST /api/v1/pawn-loans
func (h *LoanHandler) OriginateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.OriginateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation failed", customError.ErrCodeValidation, err)
		return
	}

	loan, err := h.service.OriginateLoan(r.Context(), &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, loan)
}

// GetLoan handles GET /api/v1/pawn-loans/{id}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetLoanByCode handles GET /api/v1/pawn-loans/code/{code}
func (h *LoanHandler) GetLoanByCode(w http.ResponseWriter, r *http.Request) {
	loan, err := h.service.GetLoanByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// ListLoansByStatus handles GET /api/v1/pawn-loans/status/{status}
func (h *LoanHandler) ListLoansByStatus(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)

	loans, err := h.service.ListLoansByStatus(r.Context(), mux.Vars(r)["status"], page, size)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

// ListLoansByCustomer handles GET /api/v1/pawn-loans/customer/{customerId}
func (h *LoanHandler) ListLoansByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(mux.Vars(r)["customerId"])
	if err != nil {
		response.BadRequest(w, "Invalid customer id", err)
		return
	}

	page, size := pagination(r)

	loans, err := h.service.ListLoansByCustomer(r.Context(), customerID, page, size)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

// RecordRepayment handles POST /api/v1/pawn-loans/{id}/repayments
func (h *LoanHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	var req domain.RecordRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation failed", customError.ErrCodeValidation, err)
		return
	}

	repayment, err := h.service.RecordRepayment(r.Context(), loanID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, repayment)
}

// ListRepayments handles GET /api/v1/pawn-loans/{id}/repayments
func (h *LoanHandler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	repayments, err := h.service.ListRepayments(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, repayments)
}

type previewRepaymentRequest struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

// PreviewRepayment handles POST /api/v1/pawn-loans/{id}/repayments/preview.
// Read-only: runs the allocation waterfall without persisting anything.
func (h *LoanHandler) PreviewRepayment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	var req previewRepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	alloc, err := h.service.PreviewRepayment(r.Context(), loanID, req.PaidAmount)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, alloc)
}

// RedeemLoan handles POST /api/v1/pawn-loans/{id}/redeem
func (h *LoanHandler) RedeemLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	var req domain.RedeemLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	loan, err := h.service.RedeemLoan(r.Context(), loanID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// DefaultLoan handles POST /api/v1/pawn-loans/{id}/default
func (h *LoanHandler) DefaultLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.DefaultLoan(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// CancelLoan handles POST /api/v1/pawn-loans/{id}/cancel
func (h *LoanHandler) CancelLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.CancelLoan(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

type overdueResult struct {
	LoanID  uuid.UUID `json:"loan_id"`
	Overdue bool      `json:"overdue"`
}

// CheckOverdue handles POST /api/v1/pawn-loans/{id}/overdue
func (h *LoanHandler) CheckOverdue(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathLoanID(w, r)
	if !ok {
		return
	}

	overdue, err := h.service.CheckOverdue(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, overdueResult{LoanID: loanID, Overdue: overdue})
}

func pathLoanID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid loan id", err)
		return uuid.Nil, false
	}
	return loanID, true
}

func pagination(r *http.Request) (page, size int) {
	page, size = 0, 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			size = parsed
		}
	}
	return page, size
}

// writeBusinessError maps the business error taxonomy onto HTTP statuses.
// Input problems are 400, missing loans 404, lifecycle and concurrency
// conflicts 409, everything else 500.
func writeBusinessError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	status := http.StatusInternalServerError
	switch bizErr.Code {
	case customError.ErrCodeValidation,
		customError.ErrCodeInvalidAmount,
		customError.ErrCodeInvalidPaymentAmount,
		customError.ErrCodeOverpaymentNotAllowed:
		status = http.StatusBadRequest
	case customError.ErrCodeLoanNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeUseRedemptionInstead,
		customError.ErrCodeInvalidStateTransition,
		customError.ErrCodeOutstandingBalanceRemaining,
		customError.ErrCodeItemNotVerified,
		customError.ErrCodeDuplicateActiveLoan,
		customError.ErrCodeConcurrentModification:
		status = http.StatusConflict
	}

	response.Error(w, status, bizErr.Message, bizErr.Code, bizErr.Err)
}
