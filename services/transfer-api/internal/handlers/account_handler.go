package handlers

import (
	"net/http"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/utils"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/observability"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/services"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/views"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountHandler struct {
	logger    *zap.Logger
	ledger    services.LedgerService
	publisher services.EventPublisher
}

func NewAccountHandler(logger *zap.Logger, ledger services.LedgerService, publisher services.EventPublisher) *AccountHandler {
	return &AccountHandler{logger: logger, ledger: ledger, publisher: publisher}
}

// RegisterRoutes registers account routes on the provided router group.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts")
	accounts.POST("/createAccount", h.CreateAccount)
	accounts.POST("/transfer", h.Transfer)
	accounts.GET("/:accountId/balance", h.GetBalance)
	accounts.GET("/:accountId/statements/mini", h.GetMiniStatement)
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	traceID, ok := h.traceID(c)
	if !ok {
		return
	}

	var req views.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}
	if req.BalanceAmount.IsNegative() {
		h.writeError(c, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "initial balance must not be negative", nil))
		return
	}

	account, err := h.ledger.CreateAccount(c.Request.Context(), services.CreateAccountInput{
		AccountID: req.AccountID,
		Currency:  req.CurrencyCode,
		Balance:   req.BalanceAmount,
	})
	if err != nil {
		h.writeError(c, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.NewAccountResponse(account))
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	traceID, ok := h.traceID(c)
	if !ok {
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.writeError(c, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.NewBalanceResponse(balance))
}

func (h *AccountHandler) Transfer(c *gin.Context) {
	traceID, ok := h.traceID(c)
	if !ok {
		return
	}

	var req views.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	result, err := h.ledger.Transfer(c.Request.Context(), services.TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Currency:      req.CurrencyCode,
	})
	if err != nil {
		h.writeError(c, traceID, err)
		return
	}

	// The transfer is committed; a failed publish is reported but never undoes it.
	if err = h.publisher.PublishTransfer(c.Request.Context(), views.NewTransferEvent(result)); err != nil {
		observability.EventsPublished.WithLabelValues("failed").Inc()
		h.logger.Error("failed to publish transfer event",
			zap.String(pkg.TraceId, traceID),
			zap.String(pkg.Reference, result.Reference.String()),
			zap.Error(err))
	} else {
		observability.EventsPublished.WithLabelValues("enqueued").Inc()
	}

	c.JSON(http.StatusOK, views.NewTransferResponse(result))
}

func (h *AccountHandler) GetMiniStatement(c *gin.Context) {
	traceID, ok := h.traceID(c)
	if !ok {
		return
	}

	entries, err := h.ledger.MiniStatement(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.writeError(c, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.NewTransactionResponse(entries))
}

func (h *AccountHandler) traceID(c *gin.Context) (string, bool) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		h.writeError(c, "", pkg.NewAppError(pkg.ErrServerCode, pkg.ErrServerCode.Message, err))
		return "", false
	}
	return traceID, true
}

func (h *AccountHandler) writeError(c *gin.Context, traceID string, err error) {
	resp := pkg.ToErrorResponse(h.logger, traceID, err)
	c.JSON(resp.Status, resp)
}
