package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/tails/internal/log"
	"github.com/hpungsan/tails/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// NewServer creates and configures the HTTP server for the clip history UI.
func NewServer(session *ops.Session, version, bind string, port int) (*http.Server, error) {
	handler, err := NewHandler(session, version)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// NewHandler builds the routed handler, wrapped with security headers.
func NewHandler(session *ops.Session, version string) (http.Handler, error) {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	renderer, err := NewRenderer(templateSub, version)
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		session:  session,
		renderer: renderer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/clips", http.StatusFound)
	})
	mux.HandleFunc("GET /clips", h.HandleList)
	mux.HandleFunc("POST /clips/clear", h.HandleClear)
	mux.HandleFunc("GET /clips/{id}", h.HandleDetail)
	mux.HandleFunc("DELETE /clips/{id}", h.HandleDelete)
	mux.HandleFunc("POST /clips/{id}/paste", h.HandlePaste)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(mux), nil
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves srv until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("tails UI running at http://%s", srv.Addr)
	if strings.HasPrefix(srv.Addr, "0.0.0.0:") || strings.HasPrefix(srv.Addr, "[::]:") || strings.HasPrefix(srv.Addr, ":") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down UI")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
