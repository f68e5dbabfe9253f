package depositdelivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/internal/test"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/go-petr/pet-roulette/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testCase struct {
	name           string
	method         string
	url            string
	body           string
	header         http.Header
	cancelRequest  bool
	buildStubs     func(service *MockService)
	wantStatusCode int
	wantError      string
	checkData      func(t *testing.T, raw json.RawMessage)
}

func run(t *testing.T, testCases []testCase) {
	t.Helper()

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			handler := NewHandler(service)
			server := gin.New()
			handler.Register(server.Group("/api"))

			req, err := http.NewRequest(tc.method, tc.url, bytes.NewReader([]byte(tc.body)))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			for k, v := range tc.header {
				req.Header[k] = v
			}

			if tc.cancelRequest {
				ctx, cancel := context.WithCancel(req.Context())
				cancel()

				req = req.WithContext(ctx)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Fatalf("Status code: got %v, want %v, body %s", got, tc.wantStatusCode, recorder.Body)
			}

			var raw json.RawMessage
			res := web.Response{Data: &raw}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if res.Error != tc.wantError {
				t.Errorf("res.Error = %q, want %q", res.Error, tc.wantError)
			}

			if res.Success != (tc.wantError == "") {
				t.Errorf("res.Success = %v with error %q", res.Success, res.Error)
			}

			if tc.checkData != nil {
				tc.checkData(t, raw)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	user := test.RandomBalance()
	intent := test.RandomIntent(user.ID)
	balance := decimal.RequireFromString("35.50")

	result := domain.DepositResult{
		DepositID:       intent.ID,
		UserID:          user.ID,
		Amount:          2550,
		Currency:        "usd",
		Status:          domain.DepositSucceeded,
		PaymentIntentID: intent.ID,
		UpdatedBalance:  &balance,
	}

	run(t, []testCase{
		{
			name:   "OK",
			method: http.MethodPost,
			url:    "/api/deposits",
			body:   `{"userId":"` + user.ID + `","amount":2550,"currency":"usd"}`,
			header: http.Header{IdempotencyKeyHeader: []string{"key-7"}},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ProcessDeposit(gomock.Any(), gomock.Eq(domain.DepositRequest{
						UserID:         user.ID,
						Amount:         2550,
						Currency:       "usd",
						IdempotencyKey: "key-7",
					})).
					Times(1).
					Return(result, nil)
			},
			wantStatusCode: http.StatusCreated,
			checkData: func(t *testing.T, raw json.RawMessage) {
				var got map[string]any
				if err := json.Unmarshal(raw, &got); err != nil {
					t.Fatalf("json.Unmarshal(%s) returned error: %v", raw, err)
				}

				want := map[string]any{
					"depositId":       intent.ID,
					"userId":          user.ID,
					"amount":          float64(2550),
					"currency":        "usd",
					"status":          "succeeded",
					"paymentIntentId": intent.ID,
					"updatedBalance":  "35.5",
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:          "ClientDisconnectDoesNotCancel",
			method:        http.MethodPost,
			url:           "/api/deposits",
			body:          `{"userId":"` + user.ID + `","amount":2550}`,
			cancelRequest: true,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ProcessDeposit(gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(ctx context.Context, _ domain.DepositRequest) (domain.DepositResult, error) {
						if ctx.Err() != nil {
							return domain.DepositResult{}, ctx.Err()
						}

						return result, nil
					})
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:   "BelowMinimum",
			method: http.MethodPost,
			url:    "/api/deposits",
			body:   `{"userId":"` + user.ID + `","amount":49}`,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ProcessDeposit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.DepositResult{}, errorspkg.New(errorspkg.KindValidation, "Minimum deposit amount is $0.50 (50 cents)"))
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Minimum deposit amount is $0.50 (50 cents)",
		},
		{
			name:   "UserNotFound",
			method: http.MethodPost,
			url:    "/api/deposits",
			body:   `{"userId":"ghost","amount":500}`,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ProcessDeposit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.DepositResult{}, domain.ErrUserNotFound)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrUserNotFound.Error(),
		},
		{
			name:   "BalanceServiceDown",
			method: http.MethodPost,
			url:    "/api/deposits",
			body:   `{"userId":"u1","amount":500}`,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ProcessDeposit(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.DepositResult{}, errorspkg.Wrap(errorspkg.KindTransport, "read balance", errors.New("dial tcp: refused")))
			},
			wantStatusCode: http.StatusBadGateway,
			wantError:      "read balance",
		},
		{
			name:   "InvalidJSON",
			method: http.MethodPost,
			url:    "/api/deposits",
			body:   `{"userId":"u1","amount":"lots"}`,
			buildStubs: func(service *MockService) {
				service.EXPECT().ProcessDeposit(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
	})
}

func TestGet(t *testing.T) {
	intent := test.RandomIntent("user-1")

	status := domain.DepositStatus{
		DepositID:       intent.ID,
		UserID:          "user-1",
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Status:          domain.DepositSucceeded,
		PaymentIntentID: intent.ID,
	}

	run(t, []testCase{
		{
			name:   "OK",
			method: http.MethodGet,
			url:    "/api/deposits/" + intent.ID,
			buildStubs: func(service *MockService) {
				service.EXPECT().GetDepositStatus(gomock.Any(), gomock.Eq(intent.ID)).Times(1).Return(status, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(t *testing.T, raw json.RawMessage) {
				var got domain.DepositStatus
				if err := json.Unmarshal(raw, &got); err != nil {
					t.Fatalf("json.Unmarshal(%s) returned error: %v", raw, err)
				}

				if diff := cmp.Diff(status, got); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:   "NotFound",
			method: http.MethodGet,
			url:    "/api/deposits/pi_missing",
			buildStubs: func(service *MockService) {
				service.EXPECT().GetDepositStatus(gomock.Any(), gomock.Eq("pi_missing")).Times(1).Return(domain.DepositStatus{}, domain.ErrDepositNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrDepositNotFound.Error(),
		},
		{
			name:   "ProcessorTimeout",
			method: http.MethodGet,
			url:    "/api/deposits/" + intent.ID,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					GetDepositStatus(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.DepositStatus{}, errorspkg.Wrap(errorspkg.KindTimeout, "retrieve payment intent", context.DeadlineExceeded))
			},
			wantStatusCode: http.StatusGatewayTimeout,
			wantError:      "retrieve payment intent",
		},
	})
}
