package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/meshbet-p2p-poc/internal/bet-node/export"
	bhttp "github.com/radieske/meshbet-p2p-poc/internal/bet-node/http"
	"github.com/radieske/meshbet-p2p-poc/internal/betting"
	"github.com/radieske/meshbet-p2p-poc/internal/betting/persist"
	"github.com/radieske/meshbet-p2p-poc/internal/ledger"
	sharedcache "github.com/radieske/meshbet-p2p-poc/internal/shared/cache"
	"github.com/radieske/meshbet-p2p-poc/internal/shared/config"
	"github.com/radieske/meshbet-p2p-poc/internal/shared/db"
	sharedkafka "github.com/radieske/meshbet-p2p-poc/internal/shared/kafka"
	"github.com/radieske/meshbet-p2p-poc/internal/shared/logger"
	"github.com/radieske/meshbet-p2p-poc/internal/shared/metrics"
	"github.com/radieske/meshbet-p2p-poc/internal/transport"
	"github.com/radieske/meshbet-p2p-poc/internal/wallet"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Redis: persistência local e, por padrão, o canal do mesh
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Identidade de assinatura
	w, err := wallet.New(cfg.WalletSeed)
	if err != nil {
		log.Fatal("wallet", zap.Error(err))
	}
	log.Info("wallet ready", zap.String("address", w.Address()))

	// Identidade de peer, estável pela sessão
	peerID := "peer_" + uuid.NewString()[:8]

	// Transporte mesh
	var mesh transport.Mesh
	switch cfg.MeshTransport {
	case "ws":
		mesh = transport.NewWSMesh(log, cfg.RelayWSURL, peerID)
	default:
		mesh, err = transport.NewRedisMesh(ctx, log, rdb, cfg.MeshChannel, peerID)
		if err != nil {
			log.Fatal("mesh connect", zap.Error(err))
		}
	}
	defer mesh.Close()
	log.Info("mesh up", zap.String("transport", cfg.MeshTransport), zap.String("peerId", peerID))

	// Ledger de transições (opcional)
	var sink betting.TransitionSink
	var pgLedger *ledger.Postgres
	if cfg.PostgresDSN != "" {
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("pg connect", zap.Error(err))
		}
		defer pg.Close()
		pgLedger = ledger.NewPostgres(pg)
		sink = pgLedger
	}

	store := betting.NewStore(betting.StoreOptions{
		Log:      log,
		Signer:   w,
		Mesh:     mesh,
		Persist:  persist.NewRedis(rdb, cfg.BetsStorageKey),
		Ledger:   sink,
		Nickname: cfg.Nickname,
	})
	if err := store.Init(ctx); err != nil {
		log.Fatal("store init", zap.Error(err))
	}

	router := betting.NewRouter(log, store)

	// Métricas Prometheus do nó
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "betnode_messages_consumed_total", Help: "payloads recebidos do mesh"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betnode_messages_applied_total", Help: "mensagens adotadas"}, []string{"type"})
	ignored := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betnode_messages_ignored_total", Help: "mensagens ignoradas (duplicadas/stale)"}, []string{"type"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betnode_messages_dropped_total", Help: "payloads descartados"}, []string{"reason"})
	broadcasts := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betnode_broadcasts_total", Help: "mensagens transmitidas"}, []string{"type"})
	prometheus.MustRegister(consumed, applied, ignored, dropped, broadcasts)

	router.OnConsumed = func() { consumed.Inc() }
	router.OnApplied = func(t string) { applied.WithLabelValues(t).Inc() }
	router.OnIgnored = func(t string) { ignored.WithLabelValues(t).Inc() }
	router.OnDropped = func(reason string) { dropped.WithLabelValues(reason).Inc() }
	store.OnBroadcast = func(t string) { broadcasts.WithLabelValues(t).Inc() }

	// Bomba de entrada: todo payload do mesh passa pelo router
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case raw := <-mesh.Incoming():
				router.HandleIncoming(ctx, raw)
			case ev := <-mesh.Events():
				log.Info("peer event", zap.String("peer", ev.PeerID), zap.String("kind", string(ev.Kind)))
			}
		}
	}()

	// Exportação de eventos de ciclo de vida (opcional)
	if cfg.KafkaBrokers != "" {
		writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetLifecycle)
		defer writer.Close()
		exporter := export.NewKafkaExporter(log, writer, peerID)
		defer store.OnBetUpdate(exporter.Publish)()
		log.Info("kafka export enabled", zap.String("topic", cfg.TopicBetLifecycle))
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	// API pública do nó
	api := bhttp.NewServer(log, store, pgLedger)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}
	go func() {
		log.Info("bet-node listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	_ = apiSrv.Shutdown(context.Background())
}
