package handlers

import (
	"net/http"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
	ledger services.LedgerService
}

func NewBaseHandler(logger *zap.Logger, ledger services.LedgerService) *BaseHandler {
	return &BaseHandler{logger: logger, ledger: ledger}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (b *BaseHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"accounts": b.ledger.AccountCount(),
	})
}
