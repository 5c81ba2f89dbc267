package views

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	AccountID     string          `json:"accountId" binding:"required"`
	BalanceAmount decimal.Decimal `json:"balanceAmount"`
	CurrencyCode  string          `json:"currencyCode" binding:"required"`
}

type TransferRequest struct {
	FromAccountID string          `json:"fromAccountId" binding:"required"`
	ToAccountID   string          `json:"toAccountId" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
}

type TransactionView struct {
	AccountID       string          `json:"accountId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Type            string          `json:"type"`
	TransactionDate time.Time       `json:"transactionDate"`
	Reference       string          `json:"reference"`
}

type AccountView struct {
	AccountID     string            `json:"accountId"`
	BalanceAmount decimal.Decimal   `json:"balanceAmount"`
	CurrencyCode  string            `json:"currencyCode"`
	CreatedAt     time.Time         `json:"createdAt"`
	Transactions  []TransactionView `json:"transactions"`
}

type AccountResponse struct {
	Status  bool        `json:"status"`
	Account AccountView `json:"account"`
}

type BalanceResponse struct {
	AccountID string          `json:"accountId"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
}

type TransferResponse struct {
	Status                bool          `json:"status"`
	Reference             string        `json:"reference"`
	UpdatedAccountDetails []AccountView `json:"updatedAccountDetails"`
}

type TransactionResponse struct {
	Transactions []TransactionView `json:"transactions"`
}

// TransferEvent is published after a transfer commits.
type TransferEvent struct {
	Reference     string          `json:"reference"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Timestamp     time.Time       `json:"timestamp"`
}
