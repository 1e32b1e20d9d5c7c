package betting

// Status do ciclo de vida de uma aposta.
// "pending" e "disputed" existem no formato de fio mas nenhuma operação
// os alcança hoje.
type Status string

const (
	StatusOpen      Status = "open"
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
	StatusDisputed  Status = "disputed"
)

// Outcome é o resultado do ponto de vista do peer LOCAL: duas cópias da
// mesma aposta liquidada carregam outcomes complementares (win/loss).
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomePush      Outcome = "push"
	OutcomeCancelled Outcome = "cancelled"
)

type Currency string

const (
	CurrencySAT  Currency = "SAT"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDC Currency = "USDC"
)

// Participant é um objeto de valor embutido na aposta (slot creator ou
// opponent), sem ciclo de vida próprio.
type Participant struct {
	PeerID        string `json:"peerId"`
	Nickname      string `json:"nickname"`
	WalletAddress string `json:"walletAddress"`
	Selection     string `json:"selection"`
	Signature     string `json:"signature,omitempty"`
}

// Bet é a entidade central, identificada pelo id gerado pelo criador
// (timestamp + sufixo aleatório, único por construção).
type Bet struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"` // ms desde epoch
	ExpiresAt int64  `json:"expiresAt"` // consultivo; expiração é checada de forma preguiçosa

	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	Sport     string `json:"sport"`

	Creator  Participant  `json:"creator"`
	Opponent *Participant `json:"opponent,omitempty"` // nil até a aposta ser aceita

	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`

	CreatorSelection  string  `json:"creatorSelection"`
	OpponentSelection string  `json:"opponentSelection"`
	Odds              float64 `json:"odds"`

	Status    Status  `json:"status"`
	Outcome   Outcome `json:"outcome,omitempty"` // relativo ao peer local, ver Settle
	SettledAt int64   `json:"settledAt,omitempty"`
}

// Clone devolve uma cópia independente, usada para não vazar ponteiros
// internos do store para assinantes e chamadores.
func (b *Bet) Clone() *Bet {
	cp := *b
	if b.Opponent != nil {
		opp := *b.Opponent
		cp.Opponent = &opp
	}
	return &cp
}

// Payloads tipados das mensagens de protocolo. BET_PROPOSAL carrega a
// própria Bet; BET_CANCEL não carrega nada.
type AcceptPayload struct {
	Opponent Participant `json:"opponent"`
}

type SettlePayload struct {
	WinnerSelection string `json:"winnerSelection"`
	SettledAt       int64  `json:"settledAt"`
}
