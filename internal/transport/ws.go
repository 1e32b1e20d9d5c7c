package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSMesh implementa o mesh como cliente WebSocket de um mesh-relay. O relay
// retransmite cada quadro para todos os outros clientes conectados.
// Em caso de desconexão, reconecta automaticamente com backoff.
type WSMesh struct {
	log    *zap.Logger
	url    string
	peerID string

	mu   sync.Mutex
	conn *websocket.Conn

	incoming chan string
	events   chan PeerEvent
	cancel   context.CancelFunc
}

var errNotConnected = errors.New("relay not connected")

func NewWSMesh(log *zap.Logger, url, peerID string) *WSMesh {
	m := &WSMesh{
		log:      log,
		url:      url,
		peerID:   peerID,
		incoming: make(chan string, 256),
		events:   make(chan PeerEvent, 32),
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.run(ctx)

	return m
}

// run mantém a conexão com o relay, reconectando em caso de queda.
func (m *WSMesh) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := m.connectAndListen(ctx); err != nil {
				m.log.Warn("relay connection closed", zap.Error(err))
				time.Sleep(3 * time.Second)
			}
		}
	}
}

func (m *WSMesh) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	m.log.Info("connected to mesh relay", zap.String("url", m.url))

	// Apresenta o peer local ao relay
	hello, _ := json.Marshal(Frame{Peer: m.peerID, Kind: FrameJoin})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return err
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.conn = nil
		m.mu.Unlock()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var f Frame
		if err := json.Unmarshal(message, &f); err != nil {
			continue
		}
		if f.Peer == m.peerID {
			continue
		}
		switch f.Kind {
		case FrameJoin:
			m.emit(PeerEvent{PeerID: f.Peer, Kind: PeerJoined})
		case FrameLeave:
			m.emit(PeerEvent{PeerID: f.Peer, Kind: PeerLeft})
		case FrameData:
			select {
			case m.incoming <- f.Data:
			default:
				m.log.Warn("incoming buffer full, dropping payload")
			}
		}
	}
}

func (m *WSMesh) emit(ev PeerEvent) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *WSMesh) LocalPeerID() string { return m.peerID }

func (m *WSMesh) Broadcast(_ context.Context, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return errNotConnected
	}
	b, err := json.Marshal(Frame{Peer: m.peerID, Kind: FrameData, Data: payload})
	if err != nil {
		return err
	}
	return m.conn.WriteMessage(websocket.TextMessage, b)
}

func (m *WSMesh) Incoming() <-chan string  { return m.incoming }
func (m *WSMesh) Events() <-chan PeerEvent { return m.events }

func (m *WSMesh) Close() error {
	m.cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		leave, _ := json.Marshal(Frame{Peer: m.peerID, Kind: FrameLeave})
		_ = m.conn.WriteMessage(websocket.TextMessage, leave)
		return m.conn.Close()
	}
	return nil
}
