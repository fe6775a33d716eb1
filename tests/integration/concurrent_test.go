package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/adapter/repository/postgres"
	"github.com/finledger/finledger/internal/usecase"
	"github.com/finledger/finledger/tests/testutil"
)

func TestConcurrentMovements(t *testing.T) {
	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	pool := testDB.Pool
	accountRepo := postgres.NewAccountRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(zerolog.Nop())

	statementUC := usecase.NewStatementUseCase(txManager, accountRepo, movementRepo, outboxRepo, idGen, retrier)

	deposit := func(accountID string, amount int64) {
		t.Helper()

		_, err := statementUC.Deposit(ctx, usecase.DepositInput{
			AccountID: accountID,
			Amount:    decimal.NewFromInt(amount),
		})
		if err != nil {
			t.Fatalf("failed to seed deposit: %v", err)
		}
	}

	t.Run("concurrent withdrawals reject overdraft", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, "contended")
		deposit(account.ID, 100)

		numWithdrawals := 20
		amount := decimal.NewFromInt(10) // 20 * 10 = 200 > 100

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
		)

		wg.Add(numWithdrawals)

		for range numWithdrawals {
			go func() {
				defer wg.Done()

				_, err := statementUC.Withdraw(ctx, usecase.WithdrawInput{
					AccountID: account.ID,
					Amount:    amount,
				})
				if err == nil {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		// Only 10 should succeed (100 / 10 = 10)
		if successCount.Load() != 10 {
			t.Errorf("expected 10 successful withdrawals, got %d", successCount.Load())
		}

		balance, err := movementRepo.SumByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to fold balance: %v", err)
		}
		if !balance.Equal(decimal.Zero) {
			t.Errorf("expected balance 0, got %s", balance)
		}
	})

	t.Run("concurrent transfers from same account no overdraft", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		source := testDB.CreateTestAccount(ctx, "source")
		dest := testDB.CreateTestAccount(ctx, "dest")
		deposit(source.ID, 1000)

		numTransfers := 100
		amount := decimal.NewFromInt(10)

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			errorCount   atomic.Int32
		)

		wg.Add(numTransfers)

		for range numTransfers {
			go func() {
				defer wg.Done()

				_, err := statementUC.Transfer(ctx, usecase.TransferInput{
					FromAccountID: source.ID,
					ToAccountID:   dest.ID,
					Amount:        amount,
				})
				if err != nil {
					errorCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		// All 100 should succeed (1000 / 10 = 100)
		if successCount.Load() != int32(numTransfers) {
			t.Errorf("expected %d successful transfers, got %d (errors: %d)", numTransfers, successCount.Load(), errorCount.Load())
		}

		sourceBalance, _ := movementRepo.SumByAccount(ctx, source.ID)
		destBalance, _ := movementRepo.SumByAccount(ctx, dest.ID)

		if !sourceBalance.Equal(decimal.Zero) {
			t.Errorf("expected source balance 0, got %s", sourceBalance)
		}
		if !destBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected dest balance 1000, got %s", destBalance)
		}
	})

	t.Run("deadlock prevention with opposite transfers", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		a := testDB.CreateTestAccount(ctx, "a")
		b := testDB.CreateTestAccount(ctx, "b")
		deposit(a.ID, 1000)
		deposit(b.ID, 1000)

		numTransfers := 50

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
		)

		// Half transfer A -> B, half transfer B -> A concurrently

		wg.Add(numTransfers * 2)

		for range numTransfers {
			go func() {
				defer wg.Done()

				_, err := statementUC.Transfer(ctx, usecase.TransferInput{
					FromAccountID: a.ID,
					ToAccountID:   b.ID,
					Amount:        decimal.NewFromInt(10),
				})
				if err == nil {
					successCount.Add(1)
				}
			}()
			go func() {
				defer wg.Done()

				_, err := statementUC.Transfer(ctx, usecase.TransferInput{
					FromAccountID: b.ID,
					ToAccountID:   a.ID,
					Amount:        decimal.NewFromInt(10),
				})
				if err == nil {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		// All transfers should succeed (no deadlock)
		if successCount.Load() != int32(numTransfers*2) {
			t.Errorf("expected %d successful transfers, got %d", numTransfers*2, successCount.Load())
		}

		// Balances should be unchanged (equal opposite transfers)
		aBalance, _ := movementRepo.SumByAccount(ctx, a.ID)
		bBalance, _ := movementRepo.SumByAccount(ctx, b.ID)

		if !aBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected a balance 1000, got %s", aBalance)
		}
		if !bBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected b balance 1000, got %s", bBalance)
		}
	})
}
