package topics

const (
	// Eventos de ciclo de vida das apostas (exportação para análise)
	BetLifecycle = "bet_lifecycle"

	// Canal Redis Pub/Sub usado como canal compartilhado do mesh
	MeshBroadcast = "meshbet_broadcast"
)
