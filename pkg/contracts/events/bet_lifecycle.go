package events

// Evento publicado no tópico "bet_lifecycle" a cada transição local ou
// adoção vinda da rede. Consumido por pipelines de análise fora do nó.
type BetLifecycle struct {
	BetID    string  `json:"bet_id"`
	EventID  string  `json:"event_id"`
	Sport    string  `json:"sport"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Odds     float64 `json:"odds"`
	PeerID   string  `json:"peer_id"` // nó que observou a transição
	TsUnixMs int64   `json:"ts_unix_ms"`
}
