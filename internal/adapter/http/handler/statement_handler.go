package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/finledger/internal/adapter/http/dto"
	"github.com/finledger/finledger/internal/domain"
	"github.com/finledger/finledger/internal/infrastructure/metrics"
	"github.com/finledger/finledger/internal/usecase"
)

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Movement, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Movement, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Movement, error)
	GetBalance(ctx context.Context, input usecase.GetBalanceInput) (*usecase.Balance, error)
	GetOperation(ctx context.Context, input usecase.GetOperationInput) (*domain.Movement, error)
	ListMovements(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error)
}

// StatementHandler handles movement and balance HTTP requests.
type StatementHandler struct {
	statementUC StatementService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// Deposit records a deposit on the account in the URL.
func (h *StatementHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.statementUC.Deposit(r.Context(), req.ToDepositInput(accountID))
	if err != nil {
		metrics.MovementsRejected.WithLabelValues(rejectionReason(err)).Inc()
		writeError(w, mapDomainError(err), "failed to record deposit", err.Error())
		return
	}

	metrics.MovementsRecorded.WithLabelValues(string(domain.KindDeposit)).Inc()

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Withdraw records a withdrawal on the account in the URL.
func (h *StatementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.statementUC.Withdraw(r.Context(), req.ToWithdrawInput(accountID))
	if err != nil {
		metrics.MovementsRejected.WithLabelValues(rejectionReason(err)).Inc()
		writeError(w, mapDomainError(err), "failed to record withdrawal", err.Error())
		return
	}

	metrics.MovementsRecorded.WithLabelValues(string(domain.KindWithdrawal)).Inc()

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Transfer records a transfer between two accounts.
func (h *StatementHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.statementUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		metrics.MovementsRejected.WithLabelValues(rejectionReason(err)).Inc()
		writeError(w, mapDomainError(err), "failed to record transfer", err.Error())
		return
	}

	metrics.MovementsRecorded.WithLabelValues(string(domain.KindTransfer)).Inc()

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// GetBalance returns the derived balance of an account plus a page of
// its movements.
func (h *StatementHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.statementUC.GetBalance(r.Context(), usecase.GetBalanceInput{
		AccountID: chi.URLParam(r, "id"),
		Limit:     parseIntQuery(r, "limit", 0),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromUseCase(balance))
}

// GetMovement returns one movement, scoped to the requesting account.
func (h *StatementHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	movement, err := h.statementUC.GetOperation(r.Context(), usecase.GetOperationInput{
		AccountID:  chi.URLParam(r, "id"),
		MovementID: chi.URLParam(r, "movementID"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// ListMovements lists the movements visible to an account.
func (h *StatementHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.statementUC.ListMovements(r.Context(), usecase.ListMovementsInput{
		AccountID: chi.URLParam(r, "id"),
		Limit:     parseIntQuery(r, "limit", 0),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list movements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.MovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}
