package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"curatord/pkg/api"
	"curatord/pkg/banner"
	"curatord/pkg/check"
	"curatord/pkg/telemetry"
)

// printBanner prints the startup banner with effective config info.
func (a *App) printBanner() {
	banner.Print(a.cfg, a.source, a.version)
}

// startHTTP builds the handler, starts the HTTP server in a goroutine
// and returns a channel that will contain any server error.
func (a *App) startHTTP(_ context.Context) <-chan error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/readyz", a.readyzHandler)
	mux.Handle("/metrics", promhttp.Handler())
	limited := api.RateLimit(a.cfg.Server.RateLimit.RPS, a.cfg.Server.RateLimit.Burst)
	mux.Handle("/", limited(api.New(a.eng, a.queue, a.docs, a.sealer).Router()))

	a.srv = &http.Server{Addr: a.cfg.Addr(), Handler: telemetry.Middleware(mux)}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.ListenAndServe()
	}()
	return errCh
}

// stopHTTP shuts the server down with a short grace period.
func (a *App) stopHTTP() {
	if a.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.srv.Shutdown(ctx)
}

// readyzHandler runs the internal self-test before reporting ready.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	res := check.Run(a.sealer)
	if !res.Passed {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready","failures":"` + strings.Join(res.Failures, "; ") + `"}`))
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","version":"` + ver + `"}`))
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
