package fees

import "fmt"

// Config define o percentual da taxa de plataforma e como ela é repartida.
// Treasury + Relay não precisam somar 100%: a sobra é reserva implícita.
type Config struct {
	PlatformFeePercent float64
	TreasuryPercent    float64
	RelayPercent       float64
}

// Default replica a tabela de taxas do produto: 0.75% de fee, repartido em
// 60% tesouraria, 15% gorjeta de relays e 25% de reserva.
var Default = Config{
	PlatformFeePercent: 0.75,
	TreasuryPercent:    60,
	RelayPercent:       15,
}

// Breakdown é um valor derivado deterministicamente de (amount, odds).
// Nunca é persistido; recalculado sob demanda.
type Breakdown struct {
	TotalPot           float64 `json:"totalPot"`
	PlatformFee        float64 `json:"platformFee"`
	PlatformFeePercent float64 `json:"platformFeePercent"`
	TreasuryShare      float64 `json:"treasuryShare"`
	RelayTips          float64 `json:"relayTips"`
	WinnerPayout       float64 `json:"winnerPayout"`
}

// normalizeOdds aceita tanto multiplicador decimal quanto odds americanas,
// porque as interfaces acima expõem os dois formatos sem distinguir.
// Valores em [1,10] são tratados como multiplicador direto.
func normalizeOdds(odds float64) float64 {
	if odds >= 1 && odds <= 10 {
		return odds
	}
	if odds > 0 {
		return 1 + odds/100
	}
	return 1 + 100/(-odds)
}

// Calculate computa o rateio de taxas para uma aposta. Puro e determinístico.
func (c Config) Calculate(betAmount, odds float64) Breakdown {
	multiplier := normalizeOdds(odds)
	totalPot := betAmount * multiplier
	platformFee := totalPot * (c.PlatformFeePercent / 100)

	return Breakdown{
		TotalPot:           totalPot,
		PlatformFee:        platformFee,
		PlatformFeePercent: c.PlatformFeePercent,
		TreasuryShare:      platformFee * (c.TreasuryPercent / 100),
		RelayTips:          platformFee * (c.RelayPercent / 100),
		WinnerPayout:       totalPot - platformFee,
	}
}

// FormatLines devolve o resumo exibível do rateio, na ordem pot/fee/payout.
func (b Breakdown) FormatLines(currency string) []string {
	return []string{
		fmt.Sprintf("Total Pot: %.2f %s", b.TotalPot, currency),
		fmt.Sprintf("Platform Fee (%.2f%%): %.2f %s", b.PlatformFeePercent, b.PlatformFee, currency),
		fmt.Sprintf("Winner Payout: %.2f %s", b.WinnerPayout, currency),
	}
}
