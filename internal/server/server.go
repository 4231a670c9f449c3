package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/handlers"
	"github.com/akolanti/DocRagAPI/internal/metrics"
	"github.com/akolanti/DocRagAPI/internal/middleware"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
}

// Deps are the wired handlers the routes need.
type Deps struct {
	Chain        *middleware.Chain
	RagHandler   *handlers.RagHandler
	AgentHandler *handlers.AgentHandler
}

func CreateServer(listenAddr string, deps Deps) {
	_logger = logger_i.NewLogger("Server")

	r := chi.NewRouter()

	r.Post("/upload", deps.Chain.Wrap(deps.RagHandler.Upload))
	r.Get("/hybrid_search", deps.Chain.Wrap(deps.RagHandler.HybridSearch))
	r.Post("/question", deps.Chain.Wrap(deps.RagHandler.Question))
	r.Post("/agents/run", deps.Chain.Wrap(deps.AgentHandler.Run))

	r.Get("/healthz", handlers.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/metrics/summary", metrics.SummaryHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
