package transport

import (
	"context"
	"sync"
)

// MemoryBus é um barramento em memória para testes: entrega broadcasts de
// forma determinística nos canais Incoming dos demais peers, sem goroutines
// nem sockets.
type MemoryBus struct {
	mu    sync.Mutex
	nodes map[string]*MemoryMesh
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{nodes: make(map[string]*MemoryMesh)}
}

// Join registra um peer no barramento e notifica os demais.
func (b *MemoryBus) Join(peerID string) *MemoryMesh {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := &MemoryMesh{
		bus:      b,
		peerID:   peerID,
		incoming: make(chan string, 64),
		events:   make(chan PeerEvent, 16),
	}
	for _, other := range b.nodes {
		other.emit(PeerEvent{PeerID: peerID, Kind: PeerJoined})
	}
	b.nodes[peerID] = m
	return m
}

func (b *MemoryBus) broadcast(from, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, node := range b.nodes {
		if id == from {
			continue
		}
		select {
		case node.incoming <- payload:
		default:
		}
	}
}

func (b *MemoryBus) leave(peerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.nodes, peerID)
	for _, other := range b.nodes {
		other.emit(PeerEvent{PeerID: peerID, Kind: PeerLeft})
	}
}

type MemoryMesh struct {
	bus      *MemoryBus
	peerID   string
	incoming chan string
	events   chan PeerEvent
}

func (m *MemoryMesh) emit(ev PeerEvent) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *MemoryMesh) LocalPeerID() string { return m.peerID }

func (m *MemoryMesh) Broadcast(_ context.Context, payload string) error {
	m.bus.broadcast(m.peerID, payload)
	return nil
}

func (m *MemoryMesh) Incoming() <-chan string  { return m.incoming }
func (m *MemoryMesh) Events() <-chan PeerEvent { return m.events }

func (m *MemoryMesh) Close() error {
	m.bus.leave(m.peerID)
	return nil
}
