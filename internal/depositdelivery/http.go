// Package depositdelivery manages delivery layer of deposits.
package depositdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/go-petr/pet-roulette/pkg/web"
)

// IdempotencyKeyHeader carries the caller's key for the payment intent.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service provides service layer interface needed by deposit delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package depositdelivery
type Service interface {
	ProcessDeposit(ctx context.Context, req domain.DepositRequest) (domain.DepositResult, error)
	GetDepositStatus(ctx context.Context, paymentIntentID string) (domain.DepositStatus, error)
}

// Handler facilitates deposit delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns deposit handler.
func NewHandler(ds Service) Handler {
	return Handler{service: ds}
}

// Register mounts the deposit routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/deposits", h.Create)
	r.GET("/deposits/:paymentIntentId", h.Get)
}

type createRequest struct {
	UserID   string `json:"userId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Create handles http request to fund a balance.
//
// The orchestration is detached from the client connection: once money may
// have moved, a disconnect must not abort the credit.
func (h *Handler) Create(gctx *gin.Context) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ErrorMsg(web.BindingErrorMsg(err)))

		return
	}

	ctx := context.WithoutCancel(gctx.Request.Context())

	result, err := h.service.ProcessDeposit(ctx, domain.DepositRequest{
		UserID:         req.UserID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		IdempotencyKey: gctx.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		status := errorspkg.StatusCode(err)
		if status < http.StatusInternalServerError {
			// Every domain failure of a deposit is a bad request for the caller.
			status = http.StatusBadRequest
		} else {
			l.Error().Err(err).Send()
		}

		gctx.JSON(status, web.Error(err))

		return
	}

	gctx.JSON(http.StatusCreated, web.OK(result))
}

type uriRequest struct {
	PaymentIntentID string `uri:"paymentIntentId" binding:"required"`
}

// Get handles http request to get a deposit status.
func (h *Handler) Get(gctx *gin.Context) {
	l := zerolog.Ctx(gctx.Request.Context())

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ErrorMsg(web.BindingErrorMsg(err)))

		return
	}

	status, err := h.service.GetDepositStatus(gctx.Request.Context(), uri.PaymentIntentID)
	if err != nil {
		code := errorspkg.StatusCode(err)
		if code >= http.StatusInternalServerError {
			l.Error().Err(err).Send()
		}

		gctx.JSON(code, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.OK(status))
}
