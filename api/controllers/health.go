package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/quotes3d-backend/api/responses"
	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
	"github.com/angelmondragon/quotes3d-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Quotes3D-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the wired dependencies; any failure flips the probe.
// Nil dependencies are skipped so optional services don't block readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Quotes3D-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"status": "ready"}
		for name, dep := range map[string]pinger{"database": dbP, "redis": redisP} {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			checks[name] = "ok"
		}
		responses.WriteSuccess(w, checks)
	}
}
