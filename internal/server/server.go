// Package server exposes the gateway operations over HTTP.
//
// Every operation is a POST under /v1 taking a JSON body whose keys match
// the operation's parameters. Success bodies carry "success": true with the
// operation's payload; failures carry the error text, its kind, its category
// and a hint.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/sqlgate/internal/gateway"
	"github.com/koustreak/sqlgate/internal/logger"
)

// Gateway is the set of operations the server dispatches to.
// *gateway.Executor implements it.
type Gateway interface {
	ExecuteQuery(ctx context.Context, in gateway.QueryInput) (*gateway.QueryResult, error)
	ListTables(ctx context.Context, in gateway.ListTablesInput) (*gateway.ListTablesResult, error)
	DescribeTable(ctx context.Context, in gateway.DescribeTableInput) (*gateway.DescribeTableResult, error)
	CreateTable(ctx context.Context, in gateway.CreateTableInput) (*gateway.MessageResult, error)
	InsertData(ctx context.Context, in gateway.InsertInput) (*gateway.InsertResult, error)
	UpdateData(ctx context.Context, in gateway.UpdateInput) (*gateway.AffectedResult, error)
	DeleteData(ctx context.Context, in gateway.DeleteInput) (*gateway.AffectedResult, error)
	UseDatabase(ctx context.Context, in gateway.UseDatabaseInput) (*gateway.UseDatabaseResult, error)
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP front of a Gateway.
type Server struct {
	gw      Gateway
	log     *logger.Logger
	handler http.Handler
}

// New builds the router for gw.
func New(gw Gateway, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{gw: gw, log: log}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/"+gateway.OpExecuteQuery, s.handleExecuteQuery)
		r.Post("/"+gateway.OpListTables, s.handleListTables)
		r.Post("/"+gateway.OpDescribeTable, s.handleDescribeTable)
		r.Post("/"+gateway.OpCreateTable, s.handleCreateTable)
		r.Post("/"+gateway.OpInsertData, s.handleInsertData)
		r.Post("/"+gateway.OpUpdateData, s.handleUpdateData)
		r.Post("/"+gateway.OpDeleteData, s.handleDeleteData)
		r.Post("/"+gateway.OpUseDatabase, s.handleUseDatabase)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is done, then shuts down,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.With().Str("address", ln.Addr().String()).Logger().Info("http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// requestLog writes one log line per request and stores a logger tagged
// with the request ID in the request context.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		reqLog := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(reqLog.WithContext(r.Context()))

		next.ServeHTTP(ww, r)

		s.log.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
