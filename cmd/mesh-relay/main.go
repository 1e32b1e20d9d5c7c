package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	meshrelay "github.com/radieske/meshbet-p2p-poc/internal/mesh-relay"
	"github.com/radieske/meshbet-p2p-poc/internal/shared/config"
	"github.com/radieske/meshbet-p2p-poc/internal/shared/logger"
	"github.com/radieske/meshbet-p2p-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Em ambiente local qualquer origem pode conectar
	hub := meshrelay.NewHub(log, func(r *http.Request) bool { return true })

	frames := prometheus.NewCounter(prometheus.CounterOpts{Name: "meshrelay_frames_total", Help: "quadros retransmitidos"})
	joins := prometheus.NewCounter(prometheus.CounterOpts{Name: "meshrelay_joins_total", Help: "peers conectados"})
	peers := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "meshrelay_peers", Help: "conexões registradas"},
		func() float64 { return float64(hub.PeerCount()) })
	prometheus.MustRegister(frames, joins, peers)
	hub.OnFrame = func() { frames.Inc() }
	hub.OnJoin = func() { joins.Inc() }

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("mesh-relay listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("relay", zap.Error(err))
	}
}
