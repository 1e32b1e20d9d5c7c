package persist

import (
	"context"
	"sync"

	"github.com/radieske/meshbet-p2p-poc/internal/betting"
)

// Memory guarda o blob em memória. Usado em testes e quando o nó roda sem
// Redis; nesse caso o estado não sobrevive a reinício.
type Memory struct {
	mu   sync.Mutex
	bets []*betting.Bet
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) LoadBets(_ context.Context) ([]*betting.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*betting.Bet, len(m.bets))
	for i, b := range m.bets {
		out[i] = b.Clone()
	}
	return out, nil
}

func (m *Memory) SaveBets(_ context.Context, bets []*betting.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bets = make([]*betting.Bet, len(bets))
	for i, b := range bets {
		m.bets[i] = b.Clone()
	}
	return nil
}

// Snapshot expõe o conteúdo salvo, para asserções em teste.
func (m *Memory) Snapshot() []*betting.Bet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*betting.Bet, len(m.bets))
	copy(out, m.bets)
	return out
}
