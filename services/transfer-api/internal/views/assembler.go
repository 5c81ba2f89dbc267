package views

import (
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/models"
)

func NewTransactionView(e models.Entry) TransactionView {
	return TransactionView{
		AccountID:       e.AccountID,
		Amount:          e.Amount,
		Currency:        e.Currency,
		Type:            string(e.Type),
		TransactionDate: e.Timestamp,
		Reference:       e.Reference.String(),
	}
}

func newTransactionViews(entries []models.Entry) []TransactionView {
	out := make([]TransactionView, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewTransactionView(e))
	}
	return out
}

// NewAccountView renders the account with its full history in recording order.
func NewAccountView(a models.Account) AccountView {
	return AccountView{
		AccountID:     a.ID,
		BalanceAmount: a.Balance,
		CurrencyCode:  a.Currency,
		CreatedAt:     a.CreatedAt,
		Transactions:  newTransactionViews(a.History),
	}
}

func NewAccountResponse(a models.Account) AccountResponse {
	return AccountResponse{Status: true, Account: NewAccountView(a)}
}

func NewBalanceResponse(b models.Balance) BalanceResponse {
	return BalanceResponse{AccountID: b.AccountID, Balance: b.Balance, Currency: b.Currency}
}

// NewTransferResponse lists the sender first, then the receiver.
func NewTransferResponse(r models.TransferResult) TransferResponse {
	return TransferResponse{
		Status:                true,
		Reference:             r.Reference.String(),
		UpdatedAccountDetails: []AccountView{NewAccountView(r.Sender), NewAccountView(r.Receiver)},
	}
}

func NewTransactionResponse(entries []models.Entry) TransactionResponse {
	return TransactionResponse{Transactions: newTransactionViews(entries)}
}

func NewTransferEvent(r models.TransferResult) TransferEvent {
	return TransferEvent{
		Reference:     r.Reference.String(),
		FromAccountID: r.Sender.ID,
		ToAccountID:   r.Receiver.ID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Timestamp:     r.Timestamp,
	}
}
