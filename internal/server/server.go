// Package server exposes the article pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/articlegen/internal/article"
)

// MaxRequestBytes caps the request body of POST /v1/articles.
const MaxRequestBytes = 1 << 20

// Generator produces an article. *pipeline.Pipeline satisfies it.
type Generator interface {
	Generate(ctx context.Context, cfg article.Config) (article.Result, error)
}

// Server holds the HTTP handlers.
type Server struct {
	Generator Generator
	// Timeout bounds one generation request. Zero means no extra bound.
	Timeout time.Duration
}

// Routes returns the router with middleware attached.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/v1/articles", s.handleGenerate)
	return r
}

type generateRequest struct {
	SeedText                      string `json:"seed_text"`
	OutputFormat                  string `json:"output_format"`
	NumSerpResults                *int   `json:"num_serp_results"`
	NumOutboundLinksPerSerpResult *int   `json:"num_outbound_links_per_serp_result"`
	Rewrite                       *bool  `json:"rewrite"`
	Mode                          string `json:"mode"`
	ParaphraseProvider            string `json:"paraphrase_provider"`
	SummarizeProvider             string `json:"summarize_provider"`
	Language                      string `json:"language"`
}

func (req generateRequest) config() article.Config {
	return article.Config{
		SeedText:                      req.SeedText,
		OutputFormat:                  req.OutputFormat,
		NumSerpResults:                count(req.NumSerpResults),
		NumOutboundLinksPerSerpResult: count(req.NumOutboundLinksPerSerpResult),
		Rewrite:                       req.Rewrite,
		Mode:                          req.Mode,
		ParaphraseProvider:            req.ParaphraseProvider,
		SummarizeProvider:             req.SummarizeProvider,
		Language:                      req.Language,
	}
}

// count keeps omitted counts at 0 and marks an explicit 0 so validation
// reports it.
func count(n *int) int {
	switch {
	case n == nil:
		return 0
	case *n == 0:
		return article.ExplicitZeroCount
	default:
		return *n
	}
}

type errorResponse struct {
	Errors []string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Errors: []string{fmt.Sprintf("invalid request body: %v", err)}})
		return
	}
	ctx := r.Context()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	res, err := s.Generator.Generate(ctx, req.config())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("generate failed")
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, errorResponse{Errors: append(res.Errors, err.Error())})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
