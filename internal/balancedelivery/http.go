// Package balancedelivery manages delivery layer of balance records.
package balancedelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/go-petr/pet-roulette/pkg/web"
)

const defaultPageSize = 50

// Service provides service layer interface needed by balance delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package balancedelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateBalanceParams) (domain.Balance, error)
	Get(ctx context.Context, id string) (domain.Balance, error)
	Update(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, pageSize, pageID int32) ([]domain.Balance, error)
	ApplyEntry(ctx context.Context, arg domain.ApplyEntryParams) (domain.ApplyEntryResult, error)
	ListEntries(ctx context.Context, userID string, pageSize, pageID int32) ([]domain.Entry, error)
}

// Handler facilitates balance delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns balance handler.
func NewHandler(bs Service) Handler {
	return Handler{service: bs}
}

// Register mounts the balance routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/users", h.Create)
	r.GET("/users", h.List)
	r.GET("/users/:id", h.Get)
	r.PUT("/users/:id", h.Update)
	r.DELETE("/users/:id", h.Delete)
	r.POST("/users/:id/entries", h.ApplyEntry)
	r.GET("/users/:id/entries", h.ListEntries)
}

func badRequest(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.ErrorMsg(web.BindingErrorMsg(err)))
}

func fail(gctx *gin.Context, err error) {
	status := errorspkg.StatusCode(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
	}

	gctx.JSON(status, web.Error(err))
}

type createRequest struct {
	ID      string           `json:"id"`
	Balance *decimal.Decimal `json:"balance"`
}

// Create handles http request to create a balance record.
func (h *Handler) Create(gctx *gin.Context) {
	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	arg := domain.CreateBalanceParams{ID: req.ID, Balance: decimal.Zero}
	if req.Balance != nil {
		arg.Balance = *req.Balance
	}

	record, err := h.service.Create(gctx.Request.Context(), arg)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.OK(record))
}

type uriRequest struct {
	ID string `uri:"id" binding:"required"`
}

// Get handles http request to get a balance record.
func (h *Handler) Get(gctx *gin.Context) {
	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	record, err := h.service.Get(gctx.Request.Context(), uri.ID)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.OK(record))
}

type updateRequest struct {
	Balance *decimal.Decimal `json:"balance" binding:"required"`
}

// Update handles http request to replace a balance.
func (h *Handler) Update(gctx *gin.Context) {
	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	record, err := h.service.Update(gctx.Request.Context(), uri.ID, *req.Balance)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.OK(record))
}

// Delete handles http request to delete a balance record.
func (h *Handler) Delete(gctx *gin.Context) {
	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	if err := h.service.Delete(gctx.Request.Context(), uri.ID); err != nil {
		fail(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"omitempty,min=1"`
	PageSize int32 `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (r *listRequest) defaults() {
	if r.PageID == 0 {
		r.PageID = 1
	}

	if r.PageSize == 0 {
		r.PageSize = defaultPageSize
	}
}

// List handles http request to list balance records.
func (h *Handler) List(gctx *gin.Context) {
	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	req.defaults()

	records, err := h.service.List(gctx.Request.Context(), req.PageSize, req.PageID)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.OK(records))
}

type entryRequest struct {
	Reference string           `json:"reference" binding:"required"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
}

// ApplyEntry handles http request to add a signed amount to a balance once per reference.
//
// A first application answers 201, a replay of a known reference answers 200.
func (h *Handler) ApplyEntry(gctx *gin.Context) {
	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req entryRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	result, err := h.service.ApplyEntry(gctx.Request.Context(), domain.ApplyEntryParams{
		UserID:    uri.ID,
		Reference: req.Reference,
		Amount:    *req.Amount,
	})
	if err != nil {
		fail(gctx, err)
		return
	}

	status := http.StatusCreated
	if !result.Applied {
		status = http.StatusOK
	}

	gctx.JSON(status, web.OK(result))
}

// ListEntries handles http request to list the entries applied to a balance.
func (h *Handler) ListEntries(gctx *gin.Context) {
	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	req.defaults()

	entries, err := h.service.ListEntries(gctx.Request.Context(), uri.ID, req.PageSize, req.PageID)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.OK(entries))
}
