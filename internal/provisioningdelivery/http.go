// Package provisioningdelivery manages delivery layer of balance provisioning.
package provisioningdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/web"
)

const defaultAuditLimit = 20

// Bridge provides the provisioning operations needed by the delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package provisioningdelivery
type Bridge interface {
	AfterRegister(ctx context.Context, id string, balance decimal.Decimal)
	Reconcile(ctx context.Context) (domain.ProvisionReconcileReport, error)
	Audit(ctx context.Context, limit int64) (domain.OutboxReport, error)
}

// Handler facilitates provisioning delivery layer logic.
type Handler struct {
	bridge Bridge
}

// NewHandler returns provisioning handler.
func NewHandler(b Bridge) Handler {
	return Handler{bridge: b}
}

// Register mounts the provisioning routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/hooks/registered", h.Registered)
	r.GET("/audit/outbox", h.Audit)
	r.POST("/audit/outbox/reconcile", h.Reconcile)
}

type registeredRequest struct {
	ID      string           `json:"id"`
	Balance *decimal.Decimal `json:"balance"`
}

type registeredResponse struct {
	ID string `json:"id"`
}

// Registered handles the notification that an identity was registered.
func (h *Handler) Registered(gctx *gin.Context) {
	var req registeredRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ErrorMsg(web.BindingErrorMsg(err)))

		return
	}

	if req.ID == "" {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrMissingID))
		return
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}

	h.bridge.AfterRegister(gctx.Request.Context(), req.ID, balance)

	gctx.JSON(http.StatusAccepted, web.OK(registeredResponse{ID: req.ID}))
}

type auditRequest struct {
	Limit int64 `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Audit handles http request to describe the provisioning outbox.
func (h *Handler) Audit(gctx *gin.Context) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req auditRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ErrorMsg(web.BindingErrorMsg(err)))

		return
	}

	if req.Limit == 0 {
		req.Limit = defaultAuditLimit
	}

	report, err := h.bridge.Audit(gctx.Request.Context(), req.Limit)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.OK(report))
}

// Reconcile handles http request to retry the queued provisioning tasks now.
func (h *Handler) Reconcile(gctx *gin.Context) {
	l := zerolog.Ctx(gctx.Request.Context())

	report, err := h.bridge.Reconcile(context.WithoutCancel(gctx.Request.Context()))
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.OK(report))
}
