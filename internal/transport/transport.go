// Package transport define o contrato mínimo que o núcleo de apostas exige
// do mesh: broadcast melhor-esforço de payloads opacos, entrega de payloads
// recebidos e identidade do peer local. Sem ordenação, sem garantia de
// entrega, sem ack.
package transport

import "context"

type PeerEventKind string

const (
	PeerJoined PeerEventKind = "joined"
	PeerLeft   PeerEventKind = "left"
)

// PeerEvent sinaliza descoberta/saída de peers no canal. Melhor-esforço:
// nem todo transporte consegue observar isso.
type PeerEvent struct {
	PeerID string
	Kind   PeerEventKind
}

// Mesh abstrai o canal broadcast compartilhado entre os nós. Implementações:
// Redis Pub/Sub, cliente WebSocket (via mesh-relay) e barramento em memória
// para testes.
type Mesh interface {
	// LocalPeerID é estável durante a sessão.
	LocalPeerID() string

	// Broadcast envia o payload a todos os peers do canal. Falha não é
	// fatal: quem chamou não deve desfazer mutações locais por causa dela.
	Broadcast(ctx context.Context, payload string) error

	// Incoming entrega payloads opacos recebidos de qualquer peer. O canal
	// é compartilhado com outros protocolos; cabe ao router filtrar.
	Incoming() <-chan string

	// Events entrega eventos de peer (joined/left), quando observáveis.
	Events() <-chan PeerEvent

	Close() error
}

// Frame é o quadro dos transportes reais: identifica o remetente para
// permitir filtrar o próprio eco e sinalizar join/leave. O mesh-relay
// retransmite Frames sem interpretar o Data.
type Frame struct {
	Peer string `json:"peer"`
	Kind string `json:"kind"` // "data" | "join" | "leave"
	Data string `json:"data,omitempty"`
}

const (
	FrameData  = "data"
	FrameJoin  = "join"
	FrameLeave = "leave"
)
