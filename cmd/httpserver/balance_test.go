//go:build integration

package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/internal/integrationtest"
	"github.com/go-petr/pet-roulette/pkg/randompkg"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func do[T any](t *testing.T, h http.Handler, method, url string, body any) (int, envelope[T]) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)

	var got envelope[T]
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	}

	return recorder.Code, got
}

func TestBalanceAPI(t *testing.T) {
	server := integrationtest.SetupBalanceServer(t)
	id := randompkg.UserID()

	code, created := do[domain.Balance](t, server, http.MethodPost, "/api/users", map[string]any{"id": id})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, created.Data.Balance.IsZero())

	code, conflict := do[domain.Balance](t, server, http.MethodPost, "/api/users", map[string]any{"id": id})
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, domain.ErrUserAlreadyExists.Error(), conflict.Error)

	code, credited := do[domain.ApplyEntryResult](t, server, http.MethodPost, "/api/users/"+id+"/entries",
		map[string]any{"reference": "pi_a", "amount": "10.00"})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, credited.Data.Applied)
	require.True(t, credited.Data.Balance.Balance.Equal(decimal.RequireFromString("10")))

	code, replayed := do[domain.ApplyEntryResult](t, server, http.MethodPost, "/api/users/"+id+"/entries",
		map[string]any{"reference": "pi_a", "amount": "10.00"})
	require.Equal(t, http.StatusOK, code)
	require.False(t, replayed.Data.Applied)

	code, _ = do[domain.Balance](t, server, http.MethodPut, "/api/users/"+id, map[string]any{"balance": "-1"})
	require.Equal(t, http.StatusBadRequest, code)

	code, got := do[domain.Balance](t, server, http.MethodGet, "/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, got.Data.Balance.Equal(decimal.RequireFromString("10")))

	code, _ = do[any](t, server, http.MethodDelete, "/api/users/"+id, nil)
	require.Equal(t, http.StatusNoContent, code)

	code, missing := do[domain.Balance](t, server, http.MethodGet, "/api/users/"+id, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, domain.ErrUserNotFound.Error(), missing.Error)
}
