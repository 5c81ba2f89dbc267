package services

import (
	"context"
	"errors"
	"time"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/models"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/repositories"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/utils"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const outcomeCommitted = "committed"

type CreateAccountInput struct {
	AccountID string
	Currency  string
	Balance   decimal.Decimal
}

type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	// Currency defaults to the sender's currency when empty.
	Currency string
}

// LedgerService owns the ledger rules. All operations are synchronous and either fully
// apply or leave the store unchanged.
type LedgerService interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (models.Account, error)
	GetBalance(ctx context.Context, accountID string) (models.Balance, error)
	Transfer(ctx context.Context, in TransferInput) (models.TransferResult, error)
	MiniStatement(ctx context.Context, accountID string) ([]models.Entry, error)
	AccountCount() int
}

type LedgerServiceConfig struct {
	Logger *zap.Logger
	Repo   repositories.AccountRepository
	// Clock stamps ledger entries. Defaults to time.Now.
	Clock func() time.Time
}

type LedgerServiceImpl struct {
	logger *zap.Logger
	repo   repositories.AccountRepository
	clock  func() time.Time
}

func NewLedgerService(cfg LedgerServiceConfig) LedgerService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LedgerServiceImpl{
		logger: cfg.Logger,
		repo:   cfg.Repo,
		clock:  clock,
	}
}

func (s *LedgerServiceImpl) CreateAccount(ctx context.Context, in CreateAccountInput) (models.Account, error) {
	defer observeLatency("create_account", time.Now())
	traceID := utils.TraceIDFromContext(ctx)

	account, err := s.repo.Create(models.Account{
		ID:       in.AccountID,
		Balance:  in.Balance,
		Currency: in.Currency,
	})
	if errors.Is(err, repositories.ErrAccountExists) {
		s.logger.Warn("account already exists", zap.String(pkg.TraceId, traceID), zap.String(pkg.AccountId, in.AccountID))
		return models.Account{}, pkg.NewAppError(pkg.ErrDuplicateAccountCode, pkg.ErrDuplicateAccountCode.Message, pkg.ErrDuplicateAccount)
	}
	if err != nil {
		return models.Account{}, pkg.NewAppError(pkg.ErrServerCode, "failed to create account", err)
	}

	observability.AccountsCreated.Inc()
	s.logger.Info("account created",
		zap.String(pkg.TraceId, traceID),
		zap.String(pkg.AccountId, account.ID),
		zap.String("currency", account.Currency),
		zap.String("balance", account.Balance.String()),
	)
	return account, nil
}

func (s *LedgerServiceImpl) GetBalance(ctx context.Context, accountID string) (models.Balance, error) {
	defer observeLatency("balance", time.Now())

	account, err := s.repo.FindByID(accountID)
	if err != nil {
		return models.Balance{}, s.lookupError(ctx, err, accountID, "no account found for balance lookup")
	}
	return models.Balance{AccountID: account.ID, Balance: account.Balance, Currency: account.Currency}, nil
}

func (s *LedgerServiceImpl) MiniStatement(ctx context.Context, accountID string) ([]models.Entry, error) {
	defer observeLatency("mini_statement", time.Now())

	var entries []models.Entry
	err := s.repo.View(func(tx repositories.AccountTx) error {
		account, err := tx.Get(accountID)
		if err != nil {
			return err
		}
		entries = account.History.Latest(pkg.MiniStatementSize)
		return nil
	})
	if err != nil {
		return nil, s.lookupError(ctx, err, accountID, "unable to get the statement due to invalid account id")
	}
	return entries, nil
}

// Transfer moves funds between two accounts. Validation order: amount, sender, receiver,
// same account, sufficient funds. Both legs are recorded in the same critical section
// and share one reference and timestamp.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, in TransferInput) (models.TransferResult, error) {
	defer observeLatency("transfer", time.Now())
	traceID := utils.TraceIDFromContext(ctx)

	if !in.Amount.IsPositive() {
		return models.TransferResult{}, s.rejectTransfer(traceID, in,
			pkg.NewAppError(pkg.ErrInvalidAmountCode, pkg.ErrInvalidAmountCode.Message, pkg.ErrInvalidAmount))
	}

	var result models.TransferResult
	err := s.repo.WithTransaction(func(tx repositories.AccountTx) error {
		sender, err := tx.Get(in.FromAccountID)
		if err != nil {
			return notFoundOr(err, pkg.ErrSenderNotFoundCode, pkg.ErrSenderNotFound)
		}
		receiver, err := tx.Get(in.ToAccountID)
		if err != nil {
			return notFoundOr(err, pkg.ErrReceiverNotFoundCode, pkg.ErrReceiverNotFound)
		}
		if sender.ID == receiver.ID {
			return pkg.NewAppError(pkg.ErrSameAccountCode, pkg.ErrSameAccountCode.Message, pkg.ErrSameAccount)
		}
		remaining := sender.Balance.Sub(in.Amount)
		if remaining.IsNegative() {
			return pkg.NewAppError(pkg.ErrInsufficientFundsCode, pkg.ErrInsufficientFundsCode.Message, pkg.ErrInsufficientFunds)
		}

		currency := in.Currency
		if utils.IsEmpty(currency) {
			currency = sender.Currency
		}
		now := s.clock().UTC()
		reference := uuid.New()

		sender.Balance = remaining
		receiver.Balance = receiver.Balance.Add(in.Amount)
		sender.History = sender.History.Append(models.Entry{
			AccountID: receiver.ID,
			Amount:    in.Amount,
			Currency:  currency,
			Type:      models.EntryTypeDebit,
			Timestamp: now,
			Sequence:  tx.NextSequence(),
			Reference: reference,
		})
		receiver.History = receiver.History.Append(models.Entry{
			AccountID: sender.ID,
			Amount:    in.Amount,
			Currency:  currency,
			Type:      models.EntryTypeCredit,
			Timestamp: now,
			Sequence:  tx.NextSequence(),
			Reference: reference,
		})

		result = models.TransferResult{
			Reference: reference,
			Amount:    in.Amount,
			Currency:  currency,
			Timestamp: now,
			Sender:    sender.Clone(),
			Receiver:  receiver.Clone(),
		}
		return nil
	})
	if err != nil {
		return models.TransferResult{}, s.rejectTransfer(traceID, in, err)
	}

	observability.TransfersTotal.WithLabelValues(outcomeCommitted).Inc()
	s.logger.Info("transfer committed",
		zap.String(pkg.TraceId, traceID),
		zap.String(pkg.Reference, result.Reference.String()),
		zap.String("from", result.Sender.ID),
		zap.String("to", result.Receiver.ID),
		zap.String("amount", result.Amount.String()),
		zap.String("currency", result.Currency),
	)
	return result, nil
}

func (s *LedgerServiceImpl) AccountCount() int {
	return s.repo.Count()
}

func (s *LedgerServiceImpl) rejectTransfer(traceID string, in TransferInput, err error) error {
	outcome := pkg.ErrServerCode.Code
	var appErr pkg.AppError
	if errors.As(err, &appErr) {
		outcome = appErr.Code.Code
	} else {
		err = pkg.NewAppError(pkg.ErrServerCode, "transfer failed", err)
	}
	observability.TransfersTotal.WithLabelValues(outcome).Inc()
	s.logger.Warn("transfer rejected",
		zap.String(pkg.TraceId, traceID),
		zap.String("from", in.FromAccountID),
		zap.String("to", in.ToAccountID),
		zap.String("amount", in.Amount.String()),
		zap.String("outcome", outcome),
	)
	return err
}

func (s *LedgerServiceImpl) lookupError(ctx context.Context, err error, accountID, msg string) error {
	if errors.Is(err, repositories.ErrAccountNotFound) {
		s.logger.Warn("account lookup failed",
			zap.String(pkg.TraceId, utils.TraceIDFromContext(ctx)),
			zap.String(pkg.AccountId, accountID),
		)
		return pkg.NewAppError(pkg.ErrAccountNotFoundCode, msg, pkg.ErrAccountNotFound)
	}
	return pkg.NewAppError(pkg.ErrServerCode, "account lookup failed", err)
}

func notFoundOr(err error, code pkg.ErrorCode, sentinel error) error {
	if errors.Is(err, repositories.ErrAccountNotFound) {
		return pkg.NewAppError(code, code.Message, sentinel)
	}
	return err
}

func observeLatency(operation string, start time.Time) {
	observability.OperationLatency.With(prometheus.Labels{"operation": operation}).Observe(time.Since(start).Seconds())
}
