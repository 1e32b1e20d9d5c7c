package betting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/meshbet-p2p-poc/internal/betting/fees"
	"github.com/radieske/meshbet-p2p-poc/pkg/contracts/messages"
)

// Falhas de precondição são resultados esperados e rotineiros, reportados
// por valor; nenhuma operação do store lança panic.
var (
	ErrNoWallet    = errors.New("no signing identity available")
	ErrNotFound    = errors.New("bet not found")
	ErrNotOpen     = errors.New("bet is not open")
	ErrNotAccepted = errors.New("bet is not accepted")
	ErrExpired     = errors.New("bet expired")
	ErrNotCreator  = errors.New("only the creator can cancel")
)

// Signer é o contrato consumido do provedor de assinatura. Address vazio
// significa que não há identidade local.
type Signer interface {
	Address() string
	SignMessage(payload string) (string, error)
}

// Broadcaster é o subconjunto do transporte mesh que o store usa.
type Broadcaster interface {
	LocalPeerID() string
	Broadcast(ctx context.Context, payload string) error
}

// Persister grava o conjunto completo de apostas conhecidas a cada mutação
// (write-through, melhor-esforço).
type Persister interface {
	LoadBets(ctx context.Context) ([]*Bet, error)
	SaveBets(ctx context.Context, bets []*Bet) error
}

// TransitionSink recebe o histórico de transições e as coletas de taxa.
// Opcional: nil desabilita.
type TransitionSink interface {
	RecordTransition(ctx context.Context, betID, from, to, actor string) error
	RecordFeeCollection(ctx context.Context, betID string, treasuryShare, relayTips float64) error
}

const actorNetwork = "network"

type StoreOptions struct {
	Log      *zap.Logger
	Signer   Signer
	Mesh     Broadcaster
	Persist  Persister
	Ledger   TransitionSink // opcional
	Fees     fees.Config
	Nickname string
}

// Store é o dono exclusivo do mapa local id -> Bet. Toda mutação passa pelas
// operações tipadas abaixo, na ordem: muta em memória, persiste, faz
// broadcast e notifica assinantes. Um mutex serializa as mutações, o
// equivalente aqui do modelo de um evento por vez do runtime original.
type Store struct {
	log      *zap.Logger
	signer   Signer
	mesh     Broadcaster
	persist  Persister
	ledger   TransitionSink
	fees     fees.Config
	nickname string

	// OnBroadcast alimenta métricas por tipo de mensagem enviada.
	OnBroadcast func(msgType string)

	mu      sync.Mutex
	bets    map[string]*Bet
	betSubs map[int]func(*Bet)
	msgSubs map[int]func(*messages.Envelope)
	nextSub int
}

func NewStore(o StoreOptions) *Store {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	f := o.Fees
	if f == (fees.Config{}) {
		f = fees.Default
	}
	return &Store{
		log:      log,
		signer:   o.Signer,
		mesh:     o.Mesh,
		persist:  o.Persist,
		ledger:   o.Ledger,
		fees:     f,
		nickname: o.Nickname,
		bets:     make(map[string]*Bet),
		betSubs:  make(map[int]func(*Bet)),
		msgSubs:  make(map[int]func(*messages.Envelope)),
	}
}

// Init carrega as apostas persistidas para o mapa em memória.
func (s *Store) Init(ctx context.Context) error {
	bets, err := s.persist.LoadBets(ctx)
	if err != nil {
		return fmt.Errorf("load bets: %w", err)
	}
	s.mu.Lock()
	for _, b := range bets {
		s.bets[b.ID] = b
	}
	n := len(s.bets)
	s.mu.Unlock()
	s.log.Info("bet store initialized", zap.Int("bets", n))
	return nil
}

func generateBetID() string {
	return fmt.Sprintf("bet_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func (s *Store) localAddress() string {
	if s.signer == nil {
		return ""
	}
	return s.signer.Address()
}

type CreateParams struct {
	EventID           string
	EventName         string
	Sport             string
	Selection         string
	OpponentSelection string
	Amount            float64
	Currency          Currency
	Odds              float64
	ExpiresIn         time.Duration // default 30 minutos
}

// proposalClaim é o payload canônico assinado pelo criador.
type proposalClaim struct {
	BetID     string  `json:"betId"`
	EventID   string  `json:"eventId"`
	Selection string  `json:"selection"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

type acceptClaim struct {
	BetID     string `json:"betId"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

// CreateBet origina uma proposta local: gera id, assina o payload canônico,
// grava como open, persiste e transmite BET_PROPOSAL.
func (s *Store) CreateBet(ctx context.Context, p CreateParams) (*Bet, error) {
	addr := s.localAddress()
	if addr == "" {
		return nil, ErrNoWallet
	}

	now := time.Now().UnixMilli()
	expiresIn := p.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 30 * time.Minute
	}

	bet := &Bet{
		ID:        generateBetID(),
		CreatedAt: now,
		ExpiresAt: now + expiresIn.Milliseconds(),
		EventID:   p.EventID,
		EventName: p.EventName,
		Sport:     p.Sport,
		Creator: Participant{
			PeerID:        s.mesh.LocalPeerID(),
			Nickname:      s.nickname,
			WalletAddress: addr,
			Selection:     p.Selection,
		},
		Amount:            p.Amount,
		Currency:          p.Currency,
		CreatorSelection:  p.Selection,
		OpponentSelection: p.OpponentSelection,
		Odds:              p.Odds,
		Status:            StatusOpen,
	}

	claim, _ := json.Marshal(proposalClaim{
		BetID:     bet.ID,
		EventID:   p.EventID,
		Selection: p.Selection,
		Amount:    p.Amount,
		Timestamp: now,
	})
	sig, err := s.signer.SignMessage(string(claim))
	if err != nil {
		return nil, fmt.Errorf("sign proposal: %w", err)
	}
	bet.Creator.Signature = sig

	s.mu.Lock()
	s.bets[bet.ID] = bet
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, bet.ID, "", StatusOpen, addr)
	s.broadcastMessage(ctx, messages.TypeProposal, bet.ID, out, sig)
	s.notifyBetUpdate(out)
	return out, nil
}

// AcceptBet aceita uma proposta aberta. Expiração é checada aqui, de forma
// preguiçosa: uma aposta vencida vira cancelled como efeito colateral e a
// operação reporta falha.
func (s *Store) AcceptBet(ctx context.Context, betID string) error {
	addr := s.localAddress()

	s.mu.Lock()
	bet, ok := s.bets[betID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if bet.Status != StatusOpen {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if addr == "" {
		s.mu.Unlock()
		return ErrNoWallet
	}

	now := time.Now().UnixMilli()
	if now > bet.ExpiresAt {
		bet.Status = StatusCancelled
		snap := s.snapshotLocked()
		out := bet.Clone()
		s.mu.Unlock()

		s.persistBestEffort(ctx, snap)
		s.recordTransition(ctx, betID, StatusOpen, StatusCancelled, addr)
		s.notifyBetUpdate(out)
		return ErrExpired
	}

	claim, _ := json.Marshal(acceptClaim{BetID: betID, Action: "accept", Timestamp: now})
	sig, err := s.signer.SignMessage(string(claim))
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("sign accept: %w", err)
	}

	bet.Opponent = &Participant{
		PeerID:        s.mesh.LocalPeerID(),
		Nickname:      s.nickname,
		WalletAddress: addr,
		Selection:     bet.OpponentSelection,
		Signature:     sig,
	}
	bet.Status = StatusAccepted
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, betID, StatusOpen, StatusAccepted, addr)
	s.broadcastMessage(ctx, messages.TypeAccept, betID, AcceptPayload{Opponent: *out.Opponent}, sig)
	s.notifyBetUpdate(out)
	return nil
}

// SettleBet declara o resultado de uma aposta aceita. Nenhum pagamento é
// executado: liquidação é declaração cooperativa, não custódia. O outcome
// gravado é relativo ao peer local; uma cópia de observador fica sem outcome.
func (s *Store) SettleBet(ctx context.Context, betID, winnerSelection string) error {
	addr := s.localAddress()

	s.mu.Lock()
	bet, ok := s.bets[betID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if bet.Status != StatusAccepted {
		s.mu.Unlock()
		return ErrNotAccepted
	}

	creatorWon := bet.CreatorSelection == winnerSelection
	switch {
	case addr != "" && bet.Creator.WalletAddress == addr:
		bet.Outcome = outcomeFor(creatorWon)
	case addr != "" && bet.Opponent != nil && bet.Opponent.WalletAddress == addr:
		bet.Outcome = outcomeFor(!creatorWon)
	}

	bet.Status = StatusSettled
	bet.SettledAt = time.Now().UnixMilli()
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, betID, StatusAccepted, StatusSettled, addr)
	s.recordFeeCollection(ctx, out)
	s.broadcastMessage(ctx, messages.TypeSettle, betID, SettlePayload{
		WinnerSelection: winnerSelection,
		SettledAt:       out.SettledAt,
	}, "")
	s.notifyBetUpdate(out)
	return nil
}

func outcomeFor(won bool) Outcome {
	if won {
		return OutcomeWin
	}
	return OutcomeLoss
}

// CancelBet cancela uma proposta aberta. Só o criador pode cancelar.
func (s *Store) CancelBet(ctx context.Context, betID string) error {
	addr := s.localAddress()

	s.mu.Lock()
	bet, ok := s.bets[betID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if bet.Status != StatusOpen {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if addr == "" || bet.Creator.WalletAddress != addr {
		s.mu.Unlock()
		return ErrNotCreator
	}

	bet.Status = StatusCancelled
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, betID, StatusOpen, StatusCancelled, addr)
	s.broadcastMessage(ctx, messages.TypeCancel, betID, struct{}{}, "")
	s.notifyBetUpdate(out)
	return nil
}

// Regras de adoção de mensagens da rede. Cada regra é definida só em função
// do estado local corrente, então entrega fora de ordem ou duplicada é
// absorvida naturalmente. Retornam false quando a mensagem é ignorada.

// ApplyProposal adota uma proposta desconhecida. Primeiro escritor vence:
// uma proposta duplicada para o mesmo id nunca sobrescreve.
func (s *Store) ApplyProposal(ctx context.Context, bet *Bet) bool {
	if bet == nil || bet.ID == "" {
		return false
	}

	s.mu.Lock()
	if _, exists := s.bets[bet.ID]; exists {
		s.mu.Unlock()
		return false
	}
	s.bets[bet.ID] = bet
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, bet.ID, "", bet.Status, actorNetwork)
	s.notifyBetUpdate(out)
	return true
}

// ApplyAccept adota o opponent recebido. Ignorado se a cópia local já passou
// de open: protege contra o eco do próprio broadcast e retransmissões.
func (s *Store) ApplyAccept(ctx context.Context, betID string, opp Participant) bool {
	s.mu.Lock()
	bet, ok := s.bets[betID]
	if !ok || bet.Status != StatusOpen {
		s.mu.Unlock()
		return false
	}
	bet.Opponent = &opp
	bet.Status = StatusAccepted
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, betID, StatusOpen, StatusAccepted, actorNetwork)
	s.notifyBetUpdate(out)
	return true
}

// ApplyCancel só age sobre apostas ainda abertas: um cancel atrasado nunca
// regride uma aposta já aceita.
func (s *Store) ApplyCancel(ctx context.Context, betID string) bool {
	s.mu.Lock()
	bet, ok := s.bets[betID]
	if !ok || bet.Status != StatusOpen {
		s.mu.Unlock()
		return false
	}
	bet.Status = StatusCancelled
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, betID, StatusOpen, StatusCancelled, actorNetwork)
	s.notifyBetUpdate(out)
	return true
}

// ApplySettle exige cópia local accepted: evita liquidação dupla e
// liquidação de aposta ainda open. O outcome local não é tocado aqui;
// cada peer o deriva por conta própria.
func (s *Store) ApplySettle(ctx context.Context, betID string, settledAt int64) bool {
	s.mu.Lock()
	bet, ok := s.bets[betID]
	if !ok || bet.Status != StatusAccepted {
		s.mu.Unlock()
		return false
	}
	bet.Status = StatusSettled
	bet.SettledAt = settledAt
	snap := s.snapshotLocked()
	out := bet.Clone()
	s.mu.Unlock()

	s.persistBestEffort(ctx, snap)
	s.recordTransition(ctx, betID, StatusAccepted, StatusSettled, actorNetwork)
	s.notifyBetUpdate(out)
	return true
}

// snapshotLocked clona o conjunto corrente para persistência. Chamar com
// s.mu adquirido.
func (s *Store) snapshotLocked() []*Bet {
	snap := make([]*Bet, 0, len(s.bets))
	for _, b := range s.bets {
		snap = append(snap, b.Clone())
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].CreatedAt < snap[j].CreatedAt })
	return snap
}

// persistBestEffort grava o blob completo. Falha não desfaz a mutação em
// memória: estado local e durável podem divergir até a próxima gravação.
func (s *Store) persistBestEffort(ctx context.Context, snap []*Bet) {
	if err := s.persist.SaveBets(ctx, snap); err != nil {
		s.log.Warn("persist bets failed", zap.Error(err))
	}
}

func (s *Store) recordTransition(ctx context.Context, betID string, from, to Status, actor string) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.RecordTransition(ctx, betID, string(from), string(to), actor); err != nil {
		s.log.Warn("ledger transition failed", zap.Error(err))
	}
}

func (s *Store) recordFeeCollection(ctx context.Context, bet *Bet) {
	if s.ledger == nil {
		return
	}
	bd := s.fees.Calculate(bet.Amount, bet.Odds)
	if err := s.ledger.RecordFeeCollection(ctx, bet.ID, bd.TreasuryShare, bd.RelayTips); err != nil {
		s.log.Warn("ledger fee collection failed", zap.Error(err))
	}
}

// broadcastMessage monta o envelope e envia fire-and-forget: uma falha de
// broadcast não desfaz a mutação local já aplicada.
func (s *Store) broadcastMessage(ctx context.Context, t messages.Type, betID string, payload any, signature string) {
	env := &messages.Envelope{
		Type:         t,
		BetID:        betID,
		Timestamp:    time.Now().UnixMilli(),
		SenderPeerID: s.mesh.LocalPeerID(),
		SenderWallet: s.localAddress(),
		Signature:    signature,
	}
	if err := env.WithPayload(payload); err != nil {
		s.log.Warn("encode payload failed", zap.Error(err))
		return
	}
	raw, err := env.Encode()
	if err != nil {
		s.log.Warn("encode envelope failed", zap.Error(err))
		return
	}
	if err := s.mesh.Broadcast(ctx, raw); err != nil {
		s.log.Warn("broadcast failed", zap.String("type", string(t)), zap.Error(err))
		return
	}
	if s.OnBroadcast != nil {
		s.OnBroadcast(string(t))
	}
}

// FeeConfig expõe a tabela de taxas em uso (para pré-visualização).
func (s *Store) FeeConfig() fees.Config { return s.fees }
