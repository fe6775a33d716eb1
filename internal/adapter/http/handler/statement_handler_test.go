package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/adapter/http/dto"
	"github.com/finledger/finledger/internal/domain"
	"github.com/finledger/finledger/internal/usecase"
)

type statementServiceStub struct {
	depositFn  func(ctx context.Context, input usecase.DepositInput) (*domain.Movement, error)
	withdrawFn func(ctx context.Context, input usecase.WithdrawInput) (*domain.Movement, error)
	transferFn func(ctx context.Context, input usecase.TransferInput) (*domain.Movement, error)
	balanceFn  func(ctx context.Context, input usecase.GetBalanceInput) (*usecase.Balance, error)
	getFn      func(ctx context.Context, input usecase.GetOperationInput) (*domain.Movement, error)
	listFn     func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error)
}

func (s *statementServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Movement, error) {
	return s.depositFn(ctx, input)
}

func (s *statementServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Movement, error) {
	return s.withdrawFn(ctx, input)
}

func (s *statementServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Movement, error) {
	return s.transferFn(ctx, input)
}

func (s *statementServiceStub) GetBalance(ctx context.Context, input usecase.GetBalanceInput) (*usecase.Balance, error) {
	return s.balanceFn(ctx, input)
}

func (s *statementServiceStub) GetOperation(ctx context.Context, input usecase.GetOperationInput) (*domain.Movement, error) {
	return s.getFn(ctx, input)
}

func (s *statementServiceStub) ListMovements(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error) {
	return s.listFn(ctx, input)
}

func requestWithURLParams(method, target string, body []byte, params map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestStatementHandler_Deposit_Success(t *testing.T) {
	movement := &domain.Movement{
		ID:        "mov-1",
		AccountID: "acc-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.NewFromInt(100),
		CreatedAt: time.Now().UTC(),
	}

	var captured usecase.DepositInput
	h := NewStatementHandler(&statementServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.Movement, error) {
			captured = input
			return movement, nil
		},
	})

	body, _ := json.Marshal(dto.MovementRequest{Amount: decimal.NewFromInt(100), Description: "payday"})
	req := requestWithURLParams(http.MethodPost, "/accounts/acc-1/deposits", body, map[string]string{"id": "acc-1"})
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.AccountID != "acc-1" || !captured.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected input from URL and body, got %+v", captured)
	}

	var resp dto.MovementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "mov-1" || resp.Kind != "deposit" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestStatementHandler_Deposit_InvalidBody(t *testing.T) {
	h := NewStatementHandler(&statementServiceStub{})

	req := requestWithURLParams(http.MethodPost, "/accounts/acc-1/deposits", []byte("{not json"), map[string]string{"id": "acc-1"})
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStatementHandler_Withdraw_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"unknown account", domain.ErrAccountNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewStatementHandler(&statementServiceStub{
				withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.Movement, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.MovementRequest{Amount: decimal.NewFromInt(10)})
			req := requestWithURLParams(http.MethodPost, "/accounts/acc-1/withdrawals", body, map[string]string{"id": "acc-1"})
			rec := httptest.NewRecorder()

			h.Withdraw(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestStatementHandler_Transfer_Success(t *testing.T) {
	sender := "acc-src"
	movement := &domain.Movement{
		ID:        "mov-1",
		AccountID: "acc-dest",
		SenderID:  &sender,
		Kind:      domain.KindTransfer,
		Amount:    decimal.NewFromInt(40),
		CreatedAt: time.Now().UTC(),
	}

	h := NewStatementHandler(&statementServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Movement, error) {
			return movement, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-src",
		ToAccountID:   "acc-dest",
		Amount:        decimal.NewFromInt(40),
	})
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Transfer(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.MovementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SenderID == nil || *resp.SenderID != "acc-src" {
		t.Fatalf("expected sender acc-src in response, got %+v", resp)
	}
}

func TestStatementHandler_Transfer_SameAccount(t *testing.T) {
	h := NewStatementHandler(&statementServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Movement, error) {
			return nil, domain.ErrSameAccount
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		Amount:        decimal.NewFromInt(10),
	})
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Transfer(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStatementHandler_GetBalance(t *testing.T) {
	h := NewStatementHandler(&statementServiceStub{
		balanceFn: func(ctx context.Context, input usecase.GetBalanceInput) (*usecase.Balance, error) {
			return &usecase.Balance{
				AccountID: input.AccountID,
				Total:     decimal.NewFromInt(125),
				Movements: []*domain.Movement{
					{ID: "mov-1", AccountID: input.AccountID, Kind: domain.KindDeposit, Amount: decimal.NewFromInt(125)},
				},
			}, nil
		},
	})

	req := requestWithURLParams(http.MethodGet, "/accounts/acc-1/balance", nil, map[string]string{"id": "acc-1"})
	rec := httptest.NewRecorder()

	h.GetBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Total.Equal(decimal.NewFromInt(125)) || len(resp.Movements) != 1 {
		t.Fatalf("unexpected balance response: %+v", resp)
	}
}

func TestStatementHandler_GetMovement_NotVisible(t *testing.T) {
	h := NewStatementHandler(&statementServiceStub{
		getFn: func(ctx context.Context, input usecase.GetOperationInput) (*domain.Movement, error) {
			return nil, domain.ErrMovementNotFound
		},
	})

	req := requestWithURLParams(http.MethodGet, "/accounts/acc-1/movements/mov-9", nil,
		map[string]string{"id": "acc-1", "movementID": "mov-9"})
	rec := httptest.NewRecorder()

	h.GetMovement(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
