package dto

type CreateBetRequest struct {
	EventID           string  `json:"eventId"`
	EventName         string  `json:"eventName"`
	Sport             string  `json:"sport"`
	Selection         string  `json:"selection"`
	OpponentSelection string  `json:"opponentSelection"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"` // "SAT" | "ETH" | "USDC"
	Odds              float64 `json:"odds"`
	ExpiresInMinutes  int     `json:"expiresInMinutes,omitempty"` // default 30
}

type SettleBetRequest struct {
	WinnerSelection string `json:"winnerSelection"`
}
