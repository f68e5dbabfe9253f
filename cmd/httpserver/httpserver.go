// Package httpserver manages server creation and api routing.
//
// Each deployable component has its own builder. They share the engine setup:
// request logging, panic recovery, metrics, /metrics and /health.
package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-roulette/internal/balanceclient"
	"github.com/go-petr/pet-roulette/internal/balancedelivery"
	"github.com/go-petr/pet-roulette/internal/balancerepo"
	"github.com/go-petr/pet-roulette/internal/balanceservice"
	"github.com/go-petr/pet-roulette/internal/depositdelivery"
	"github.com/go-petr/pet-roulette/internal/depositrepo"
	"github.com/go-petr/pet-roulette/internal/depositservice"
	"github.com/go-petr/pet-roulette/internal/entryrepo"
	"github.com/go-petr/pet-roulette/internal/gatewayclient"
	"github.com/go-petr/pet-roulette/internal/gatewaydelivery"
	"github.com/go-petr/pet-roulette/internal/middleware"
	"github.com/go-petr/pet-roulette/internal/paymentadapter"
	"github.com/go-petr/pet-roulette/internal/provisioning"
	"github.com/go-petr/pet-roulette/internal/provisioningdelivery"
	"github.com/go-petr/pet-roulette/pkg/configpkg"
	"github.com/go-petr/pet-roulette/pkg/currencypkg"
	"github.com/go-petr/pet-roulette/pkg/discoverypkg"
	"github.com/go-petr/pet-roulette/pkg/restpkg"
)

const shutdownTimeout = 15 * time.Second

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB      *sql.DB
	Engine  *gin.Engine
	Config  configpkg.Config
	Metrics *middleware.Metrics

	logger     zerolog.Logger
	background []func(ctx context.Context)
	drain      []func()
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Run serves on the configured address and runs the background jobs until
// ctx is done, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx = s.logger.WithContext(ctx)

	srv := &http.Server{
		Addr:              s.Config.ServerAddress,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	for _, job := range s.background {
		wg.Add(1)

		go func(job func(ctx context.Context)) {
			defer wg.Done()

			job(ctx)
		}(job)
	}

	errc := make(chan error, 1)

	go func() {
		errc <- srv.ListenAndServe()
	}()

	var err error

	select {
	case err = <-errc:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err = srv.Shutdown(shutdownCtx)
	}

	wg.Wait()

	for _, fn := range s.drain {
		fn()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// NewEngine returns a gin engine with the middleware every server uses.
func NewEngine(logger zerolog.Logger, service string) (*gin.Engine, *middleware.Metrics, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, nil, errors.New("cannot register currency validator")
		}
	}

	metrics := middleware.NewMetrics(service)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())
	engine.Use(metrics.Handler())

	engine.GET("/metrics", gin.WrapH(metrics.Expose()))
	engine.GET("/health", func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"status": "ok", "service": service})
	})

	return engine, metrics, nil
}

// NewResolver returns the service table built from config.
func NewResolver(config configpkg.Config) (*discoverypkg.Static, error) {
	return discoverypkg.NewStatic(map[string]string{
		discoverypkg.BalanceService: config.BalanceServiceURL,
		discoverypkg.DepositService: config.DepositServiceURL,
		discoverypkg.Gateway:        config.GatewayURL,
	})
}

func restClient(resolver discoverypkg.Resolver, service string, config configpkg.Config) *restpkg.Client {
	return restpkg.NewClient(resolver, service, restpkg.Options{
		Timeout:   config.ServiceTimeout,
		RequestID: middleware.RequestIDFromContext,
	})
}

// NewBalance creates the balance authority server.
func NewBalance(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	engine, metrics, err := NewEngine(logger, discoverypkg.BalanceService)
	if err != nil {
		return nil, err
	}

	balanceRepo := balancerepo.NewRepoPGS(conn)
	entryRepo := entryrepo.NewRepoPGS(conn)

	balanceService := balanceservice.New(balanceRepo, entryRepo)
	balanceHandler := balancedelivery.NewHandler(balanceService)
	balanceHandler.Register(engine.Group("/api"))

	return &Server{
		DB:      conn,
		Engine:  engine,
		Config:  config,
		Metrics: metrics,
		logger:  logger,
	}, nil
}

// NewDeposit creates the deposit orchestrator server.
//
// The reconciler runs in the background while the server runs.
func NewDeposit(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	engine, metrics, err := NewEngine(logger, discoverypkg.DepositService)
	if err != nil {
		return nil, err
	}

	resolver, err := NewResolver(config)
	if err != nil {
		return nil, fmt.Errorf("cannot build service table: %w", err)
	}

	payments, err := paymentadapter.NewStripe(paymentadapter.Config{
		SecretKey:         config.StripeSecretKey,
		APIURL:            config.StripeAPIURL,
		Timeout:           config.PaymentTimeout,
		TestPaymentMethod: config.StripeTestPaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create payment adapter: %w", err)
	}

	balances := balanceclient.New(restClient(resolver, discoverypkg.BalanceService, config))
	depositRepo := depositrepo.NewRepoPGS(conn)

	depositService := depositservice.New(depositRepo, balances, payments, config,
		depositservice.NewMetrics(metrics.Registry))
	depositHandler := depositdelivery.NewHandler(depositService)
	depositHandler.Register(engine.Group("/api"))

	server := &Server{
		DB:      conn,
		Engine:  engine,
		Config:  config,
		Metrics: metrics,
		logger:  logger,
	}

	if config.ReconcileInterval > 0 {
		server.background = append(server.background, func(ctx context.Context) {
			depositService.RunReconciler(ctx, config.ReconcileInterval)
		})
	}

	return server, nil
}

// NewGateway creates the gateway router server.
//
// It is the browser facing component, so its routes carry the CORS policy.
func NewGateway(logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	engine, metrics, err := NewEngine(logger, discoverypkg.Gateway)
	if err != nil {
		return nil, err
	}

	resolver, err := NewResolver(config)
	if err != nil {
		return nil, fmt.Errorf("cannot build service table: %w", err)
	}

	engine.Use(middleware.CORS(config))

	balances := balanceclient.New(restClient(resolver, discoverypkg.BalanceService, config))
	proxy := gatewaydelivery.NewProxy(resolver, config.ProxyTimeout, nil)

	gatewayHandler := gatewaydelivery.NewHandler(balances, proxy)
	gatewayHandler.Register(engine)

	return &Server{
		Engine:  engine,
		Config:  config,
		Metrics: metrics,
		logger:  logger,
	}, nil
}

// NewProvisioner creates the identity provisioning bridge server.
//
// Pending provisioning is reconciled in the background and drained on shutdown.
func NewProvisioner(rdb redis.Cmdable, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	engine, metrics, err := NewEngine(logger, "provisioner")
	if err != nil {
		return nil, err
	}

	resolver, err := NewResolver(config)
	if err != nil {
		return nil, fmt.Errorf("cannot build service table: %w", err)
	}

	gateway := gatewayclient.New(restClient(resolver, discoverypkg.Gateway, config))
	outbox := provisioning.NewRedisOutbox(rdb, config.OutboxKey)
	bridge := provisioning.New(gateway, outbox, config.MaxProvisionAttempts, metrics.Registry)

	provisioningHandler := provisioningdelivery.NewHandler(bridge)
	provisioningHandler.Register(engine)

	server := &Server{
		Engine:  engine,
		Config:  config,
		Metrics: metrics,
		logger:  logger,
		drain:   []func(){bridge.Wait},
	}

	if config.ReconcileInterval > 0 {
		server.background = append(server.background, func(ctx context.Context) {
			bridge.RunReconciler(ctx, config.ReconcileInterval)
		})
	}

	return server, nil
}
