package config

import (
	"os"

	ctopics "github.com/radieske/meshbet-p2p-poc/pkg/contracts/topics"
)

// Config centraliza variáveis de ambiente e parâmetros de execução dos nós.
// Inclui conexões, canal do mesh, tópicos e portas.
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string // "bet-node" | "mesh-relay"

	RedisAddr    string
	PostgresDSN  string // vazio desabilita o ledger de transições
	KafkaBrokers string // vazio desabilita a exportação de eventos

	// Mesh
	MeshTransport string // "redis" | "ws"
	MeshChannel   string
	RelayWSURL    string

	// Tópicos
	TopicBetLifecycle string

	// Persistência local das apostas (blob único)
	BetsStorageKey string

	// Identidade
	WalletSeed string // hex; vazio gera uma chave efêmera
	Nickname   string

	// Portas do serviço atual
	HTTPPort    string // API pública do nó (ou /ws do relay)
	MetricsPort string // porta exclusiva para /metrics e /healthz
}

// Load carrega variáveis de ambiente e define defaults por serviço.
func Load() Config {
	svc := getEnv("SERVICE_NAME", "bet-node")
	env := getEnv("ENV", "local")

	cfg := Config{
		Env:         env,
		ServiceName: svc,

		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		MeshTransport: getEnv("MESH_TRANSPORT", "redis"),
		MeshChannel:   getEnv("MESH_CHANNEL", ctopics.MeshBroadcast),
		RelayWSURL:    getEnv("RELAY_WS_URL", "ws://localhost:8086/ws"),

		TopicBetLifecycle: getEnv("KAFKA_TOPIC_BET_LIFECYCLE", ctopics.BetLifecycle),

		BetsStorageKey: getEnv("BETS_STORAGE_KEY", "meshbet:bets"),

		WalletSeed: getEnv("WALLET_SEED", ""),
		Nickname:   getEnv("NICKNAME", "anon"),
	}

	// Portas padrão por serviço
	switch svc {
	case "mesh-relay":
		cfg.HTTPPort = getEnv("HTTP_PORT_RELAY", "8086")
		cfg.MetricsPort = getEnv("METRICS_PORT_RELAY", "9101")
	default: // bet-node
		cfg.HTTPPort = getEnv("HTTP_PORT", "8084")
		cfg.MetricsPort = getEnv("METRICS_PORT", "9100")
	}

	return cfg
}

// getEnv retorna o valor da variável de ambiente ou o default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
