package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	middleware "github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/middlewares"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/repositories"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/services"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/views"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingPublisher struct {
	events []views.TransferEvent
	err    error
}

func (p *recordingPublisher) PublishTransfer(_ context.Context, event views.TransferEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() {}

func newServer(t *testing.T) (*gin.Engine, *recordingPublisher) {
	t.Helper()
	logger := zap.NewNop()
	ledger := services.NewLedgerService(services.LedgerServiceConfig{Logger: logger, Repo: repositories.NewAccountRepository()})
	publisher := &recordingPublisher{}

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	NewAccountHandler(logger, ledger, publisher).RegisterRoutes(api)
	NewBaseHandler(logger, ledger).RegisterRoutes(r)
	return r, publisher
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createAccount(t *testing.T, r http.Handler, id string, balance string) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/accounts/createAccount", map[string]interface{}{
		"accountId": id, "balanceAmount": balance, "currencyCode": "GBP",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkg.ErrorResponse {
	t.Helper()
	var out pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateAccount_Success(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodPost, "/api/v1/accounts/createAccount", map[string]interface{}{
		"accountId": "555", "balanceAmount": 20, "currencyCode": "GBP",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(pkg.HeaderTraceId))
	var out views.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Status)
	assert.Equal(t, "555", out.Account.AccountID)
	assert.True(t, decimal.NewFromInt(20).Equal(out.Account.BalanceAmount))
	assert.Empty(t, out.Account.Transactions)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	r, _ := newServer(t)
	createAccount(t, r, "555", "20")

	w := do(t, r, http.MethodPost, "/api/v1/accounts/createAccount", map[string]interface{}{
		"accountId": "555", "balanceAmount": 1, "currencyCode": "GBP",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decodeError(t, w)
	assert.Equal(t, pkg.ErrDuplicateAccountCode.Code, out.Code)
	assert.Equal(t, "account already exists in the system", out.Message)
}

func TestCreateAccount_InvalidBody(t *testing.T) {
	r, _ := newServer(t)

	cases := map[string]interface{}{
		"missing id":       map[string]interface{}{"balanceAmount": 1, "currencyCode": "GBP"},
		"missing currency": map[string]interface{}{"accountId": "1", "balanceAmount": 1},
		"negative balance": map[string]interface{}{"accountId": "1", "balanceAmount": -1, "currencyCode": "GBP"},
		"malformed json":   "{not json",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/accounts/createAccount", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, pkg.ErrInvalidInputCode.Code, decodeError(t, w).Code)
		})
	}
}

func TestGetBalance(t *testing.T) {
	r, _ := newServer(t)
	createAccount(t, r, "111", "20.25")

	w := do(t, r, http.MethodGet, "/api/v1/accounts/111/balance", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accountId":"111","balance":"20.25","currency":"GBP"}`, w.Body.String())
}

func TestGetBalance_UnknownAccount(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodGet, "/api/v1/accounts/404/balance", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decodeError(t, w)
	assert.Equal(t, pkg.ErrAccountNotFoundCode.Code, out.Code)
	assert.Equal(t, "no account found for balance lookup", out.Message)
}

func TestTransfer_Success(t *testing.T) {
	r, publisher := newServer(t)
	createAccount(t, r, "111", "20")
	createAccount(t, r, "222", "20")

	w := do(t, r, http.MethodPost, "/api/v1/accounts/transfer", map[string]interface{}{
		"fromAccountId": "111", "toAccountId": "222", "amount": "10", "currencyCode": "GBP",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out views.TransferResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Status)
	require.Len(t, out.UpdatedAccountDetails, 2)
	assert.True(t, decimal.NewFromInt(10).Equal(out.UpdatedAccountDetails[0].BalanceAmount))
	assert.True(t, decimal.NewFromInt(30).Equal(out.UpdatedAccountDetails[1].BalanceAmount))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, out.Reference, publisher.events[0].Reference)
	assert.Equal(t, "111", publisher.events[0].FromAccountID)
}

func TestTransfer_PublishFailureStillCommits(t *testing.T) {
	r, publisher := newServer(t)
	publisher.err = errors.New("broker down")
	createAccount(t, r, "111", "20")
	createAccount(t, r, "222", "20")

	w := do(t, r, http.MethodPost, "/api/v1/accounts/transfer", map[string]interface{}{
		"fromAccountId": "111", "toAccountId": "222", "amount": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/accounts/111/balance", nil)
	assert.JSONEq(t, `{"accountId":"111","balance":"15","currency":"GBP"}`, w.Body.String())
}

func TestTransfer_Rejections(t *testing.T) {
	r, publisher := newServer(t)
	createAccount(t, r, "111", "20")
	createAccount(t, r, "222", "20")

	cases := []struct {
		name    string
		body    map[string]interface{}
		code    string
		message string
	}{
		{"unknown sender", map[string]interface{}{"fromAccountId": "999", "toAccountId": "111", "amount": 5}, pkg.ErrSenderNotFoundCode.Code, "invalid sender account details"},
		{"unknown receiver", map[string]interface{}{"fromAccountId": "111", "toAccountId": "999", "amount": 5}, pkg.ErrReceiverNotFoundCode.Code, "invalid receiver account details"},
		{"insufficient funds", map[string]interface{}{"fromAccountId": "111", "toAccountId": "222", "amount": 1000}, pkg.ErrInsufficientFundsCode.Code, "insufficient account balance in sender account"},
		{"zero amount", map[string]interface{}{"fromAccountId": "111", "toAccountId": "222", "amount": 0}, pkg.ErrInvalidAmountCode.Code, "transfer amount must be greater than zero"},
		{"missing amount", map[string]interface{}{"fromAccountId": "111", "toAccountId": "222"}, pkg.ErrInvalidAmountCode.Code, "transfer amount must be greater than zero"},
		{"missing receiver", map[string]interface{}{"fromAccountId": "111", "amount": 5}, pkg.ErrInvalidInputCode.Code, "invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/accounts/transfer", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			out := decodeError(t, w)
			assert.Equal(t, tc.code, out.Code)
			assert.Equal(t, tc.message, out.Message)
		})
	}

	assert.Empty(t, publisher.events)
	w := do(t, r, http.MethodGet, "/api/v1/accounts/111/balance", nil)
	assert.JSONEq(t, `{"accountId":"111","balance":"20","currency":"GBP"}`, w.Body.String())
}

func TestGetMiniStatement(t *testing.T) {
	r, _ := newServer(t)
	createAccount(t, r, "666", "1000")
	createAccount(t, r, "777", "1000")
	for i := 1; i <= 21; i++ {
		w := do(t, r, http.MethodPost, "/api/v1/accounts/transfer", map[string]interface{}{
			"fromAccountId": "666", "toAccountId": "777", "amount": fmt.Sprintf("%d", i),
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/v1/accounts/666/statements/mini", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var out views.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Transactions, 20)
	assert.True(t, decimal.NewFromInt(21).Equal(out.Transactions[0].Amount))
	assert.Equal(t, "DEBIT", out.Transactions[0].Type)
	assert.Equal(t, "777", out.Transactions[0].AccountID)
}

func TestGetMiniStatement_UnknownAccount(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodGet, "/api/v1/accounts/404/statements/mini", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decodeError(t, w)
	assert.Equal(t, pkg.ErrAccountNotFoundCode.Code, out.Code)
	assert.Equal(t, "unable to get the statement due to invalid account id", out.Message)
}

func TestGetMiniStatement_EmptyHistory(t *testing.T) {
	r, _ := newServer(t)
	createAccount(t, r, "111", "1")

	w := do(t, r, http.MethodGet, "/api/v1/accounts/111/statements/mini", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"transactions":[]}`, w.Body.String())
}

func TestTraceIDPropagated(t *testing.T) {
	r, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/404/balance", nil)
	req.Header.Set(pkg.HeaderTraceId, "trace-abc")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc", w.Header().Get(pkg.HeaderTraceId))
}

func TestHealth(t *testing.T) {
	r, _ := newServer(t)
	createAccount(t, r, "111", "1")

	w := do(t, r, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","accounts":1}`, w.Body.String())
}
