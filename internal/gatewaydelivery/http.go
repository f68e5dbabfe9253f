// Package gatewaydelivery is the externally reachable entry point.
//
// It creates balance records for newly registered identities and forwards
// every other balance and deposit route to the service that owns it.
package gatewaydelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/discoverypkg"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/go-petr/pet-roulette/pkg/web"
)

const createdMessage = "User created in user-service successfully"

// Mounts are the prefixes the gateway routes are served under.
var Mounts = []string{"/gateway", "/api"}

// BalanceService provides the balance authority call the gateway makes itself.
//
//go:generate mockgen -source http.go -destination http_mock.go -package gatewaydelivery
type BalanceService interface {
	Create(ctx context.Context, arg domain.CreateBalanceParams) (domain.Balance, error)
}

// Handler facilitates gateway delivery layer logic.
type Handler struct {
	balances BalanceService
	proxy    *Proxy
}

// NewHandler returns gateway handler.
func NewHandler(bs BalanceService, proxy *Proxy) Handler {
	return Handler{balances: bs, proxy: proxy}
}

// Register mounts the gateway routes under every prefix in Mounts.
//
// The fixed /users/create route is registered before the routes taking an
// identifier segment.
func (h *Handler) Register(r gin.IRouter) {
	for _, mount := range Mounts {
		g := r.Group(mount)

		g.POST("/users/create", h.Create)

		users := h.proxy.Forward(discoverypkg.BalanceService, g.BasePath())
		g.GET("/users/:id", users)
		g.PUT("/users/:id", users)
		g.DELETE("/users/:id", users)
		g.POST("/users", users)
		g.GET("/users", users)
		g.POST("/users/:id/entries", users)
		g.GET("/users/:id/entries", users)

		deposits := h.proxy.Forward(discoverypkg.DepositService, g.BasePath())
		g.POST("/deposits", deposits)
		g.GET("/deposits/:paymentIntentId", deposits)
	}
}

type createRequest struct {
	ID      string           `json:"id"`
	Balance *decimal.Decimal `json:"balance"`
}

// Create handles the request to create the balance record of a registered identity.
func (h *Handler) Create(gctx *gin.Context) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ErrorMsg(web.BindingErrorMsg(err)))

		return
	}

	if req.ID == "" {
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrMissingID))
		return
	}

	arg := domain.CreateBalanceParams{ID: req.ID, Balance: decimal.Zero}
	if req.Balance != nil {
		arg.Balance = *req.Balance
	}

	record, err := h.balances.Create(context.WithoutCancel(gctx.Request.Context()), arg)
	if err != nil {
		status := errorspkg.StatusCode(err)
		if status >= http.StatusInternalServerError {
			l.Error().Err(err).Str("id", req.ID).Msg("create balance record")
		}

		gctx.JSON(status, web.Error(err))

		return
	}

	res := web.OK(record)
	res.Message = createdMessage

	gctx.JSON(http.StatusCreated, res)
}
