package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for validation requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(cfg)
		if err != nil {
			return err
		}

		mux := newServeMux(env, ctx)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		go shutdownOnCancel(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

const drainTimeout = 10 * time.Second

// shutdownOnCancel drains in-flight requests once ctx is cancelled. The drain
// window needs its own context: the trigger context is already dead.
func shutdownOnCancel(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// newServeMux builds the webhook routes. baseCtx outlives individual
// requests so async validations survive the caller disconnecting.
func newServeMux(env *env, baseCtx context.Context) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /webhook/validate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AssetID string `json:"asset_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.AssetID == "" {
			http.Error(w, `{"error":"asset_id is required"}`, http.StatusBadRequest)
			return
		}

		// Validate asynchronously
		go func() {
			asset, err := env.Catalog.Get(baseCtx, req.AssetID)
			if err != nil {
				zap.L().Error("webhook asset fetch failed",
					zap.String("asset_id", req.AssetID),
					zap.Error(err),
				)
				return
			}
			outcome, err := env.Validator.Validate(baseCtx, *asset)
			if err != nil {
				zap.L().Error("webhook validation failed",
					zap.String("asset_id", req.AssetID),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("webhook validation complete",
				zap.String("asset_id", req.AssetID),
				zap.String("verdict", outcome.Verdict),
				zap.String("status", outcome.Status),
			)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status":   "accepted",
			"asset_id": req.AssetID,
		})
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
