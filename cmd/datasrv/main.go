// Command datasrv serves a directory of cluster datasets over HTTP for
// offline development of the chart.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"constellation/internal/catalog"
	"constellation/internal/logger"
	"constellation/internal/version"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		dir     string
		addr    string
		jsonLog bool
	)
	cmd := &cobra.Command{
		Use:          "datasrv",
		Short:        "Serve cluster datasets from a directory",
		Example:      "  datasrv --dir ./data --addr :8088",
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(jsonLog, "info"); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			defer logger.Sync()
			return serve(cmd.Context(), dir, addr, logger.Named("datasrv"))
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory holding <cluster>.json files")
	cmd.Flags().StringVar(&addr, "addr", ":8088", "listen address")
	cmd.Flags().BoolVar(&jsonLog, "json", false, "JSON log output")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, dir, addr string, log *zap.SugaredLogger) error {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return errors.Newf("dataset directory %q not found", dir)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(&catalog.DirSource{Dir: dir}, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("serving datasets", "dir", dir, "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Infow("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the dataset routes. Every document is served from src
// as <name>.json with permissive CORS so a browser build can read it too.
func newRouter(src catalog.Source, log *zap.SugaredLogger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/{name}.json", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		data, err := src.Fetch(r.Context(), name)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			log.Warnw("fetch dataset", logger.FieldCluster, name, logger.FieldError, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
	return r
}

func requestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debugw("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				logger.FieldRequest, middleware.GetReqID(r.Context()),
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
		})
	}
}
