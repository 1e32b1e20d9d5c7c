package betting

import (
	"sort"

	"github.com/radieske/meshbet-p2p-poc/pkg/contracts/messages"
)

// Superfície de consulta exposta à aplicação (UI, exporters). Tudo devolve
// cópias; o mapa interno nunca vaza.

func (s *Store) GetBet(betID string) (*Bet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bet, ok := s.bets[betID]
	if !ok {
		return nil, false
	}
	return bet.Clone(), true
}

func (s *Store) AllBets() []*Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Bet, 0, len(s.bets))
	for _, b := range s.bets {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

func (s *Store) OpenBets() []*Bet {
	return s.filter(func(b *Bet) bool { return b.Status == StatusOpen })
}

// ActiveBets devolve apostas ainda em andamento (open, pending ou accepted).
func (s *Store) ActiveBets() []*Bet {
	return s.filter(func(b *Bet) bool {
		return b.Status == StatusOpen || b.Status == StatusPending || b.Status == StatusAccepted
	})
}

// MyBets devolve apostas em que a carteira local participa de algum lado.
func (s *Store) MyBets() []*Bet {
	addr := s.localAddress()
	if addr == "" {
		return nil
	}
	return s.filter(func(b *Bet) bool {
		return b.Creator.WalletAddress == addr ||
			(b.Opponent != nil && b.Opponent.WalletAddress == addr)
	})
}

func (s *Store) filter(keep func(*Bet) bool) []*Bet {
	all := s.AllBets()
	out := all[:0]
	for _, b := range all {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

type Stats struct {
	TotalBets int     `json:"totalBets"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	WinRate   float64 `json:"winRate"` // percentual
	TotalWon  float64 `json:"totalWon"`
}

// Stats agrega vitórias/derrotas sobre as apostas liquidadas em que a
// carteira local participou, usando o outcome local de cada cópia.
func (s *Store) Stats() Stats {
	var st Stats
	for _, bet := range s.MyBets() {
		if bet.Status != StatusSettled {
			continue
		}
		st.TotalBets++
		switch bet.Outcome {
		case OutcomeWin:
			st.Wins++
			st.TotalWon += bet.Amount * (bet.Odds - 1)
		case OutcomeLoss:
			st.Losses++
		}
	}
	if decided := st.Wins + st.Losses; decided > 0 {
		st.WinRate = float64(st.Wins) / float64(decided) * 100
	}
	return st
}

// OnBetUpdate registra um assinante de mutações de aposta e devolve a função
// de cancelamento da assinatura.
func (s *Store) OnBetUpdate(cb func(*Bet)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.betSubs[id] = cb
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.betSubs, id)
		s.mu.Unlock()
	}
}

// OnMessage registra um assinante de mensagens de protocolo decodificadas.
func (s *Store) OnMessage(cb func(*messages.Envelope)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.msgSubs[id] = cb
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.msgSubs, id)
		s.mu.Unlock()
	}
}

// notifyBetUpdate chama os assinantes fora do lock; cada um recebe a sua
// própria cópia já clonada.
func (s *Store) notifyBetUpdate(bet *Bet) {
	s.mu.Lock()
	cbs := make([]func(*Bet), 0, len(s.betSubs))
	for _, cb := range s.betSubs {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(bet.Clone())
	}
}

func (s *Store) notifyMessage(env *messages.Envelope) {
	s.mu.Lock()
	cbs := make([]func(*messages.Envelope), 0, len(s.msgSubs))
	for _, cb := range s.msgSubs {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(env)
	}
}
