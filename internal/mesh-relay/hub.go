// Package meshrelay implementa o hub WebSocket que simula o canal broadcast
// do mesh: todo quadro recebido é retransmitido para os demais clientes,
// sem interpretação do conteúdo e sem garantia de entrega.
package meshrelay

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/meshbet-p2p-poc/internal/transport"
)

// relayConn serializa as escritas na conexão: o fanout roda na goroutine
// leitora de cada cliente, então uma mesma conexão destino recebe escritas
// de várias goroutines.
type relayConn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	peerID string
}

func (c *relayConn) write(raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, raw)
}

type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[*websocket.Conn]*relayConn

	// Callbacks de métricas
	OnFrame func()
	OnJoin  func()
}

func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		conns:    make(map[*websocket.Conn]*relayConn),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão: registra no hub,
// retransmite cada quadro aos demais e anuncia leave na desconexão.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	rc := &relayConn{ws: conn}
	h.mu.Lock()
	h.conns[conn] = rc
	h.mu.Unlock()

	defer h.dropConn(conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if h.OnFrame != nil {
			h.OnFrame()
		}

		// O join identifica o peer da conexão; os demais quadros passam
		// adiante sem interpretação.
		var f transport.Frame
		if err := json.Unmarshal(raw, &f); err == nil && f.Kind == transport.FrameJoin {
			h.mu.Lock()
			rc.peerID = f.Peer
			h.mu.Unlock()
			if h.OnJoin != nil {
				h.OnJoin()
			}
			h.log.Info("peer joined", zap.String("peer", f.Peer))
		}

		h.fanout(conn, raw)
	}
}

// fanout retransmite o quadro para todas as conexões menos a de origem.
func (h *Hub) fanout(from *websocket.Conn, raw []byte) {
	h.mu.RLock()
	targets := make([]*relayConn, 0, len(h.conns))
	for c, rc := range h.conns {
		if c != from {
			targets = append(targets, rc)
		}
	}
	h.mu.RUnlock()

	for _, rc := range targets {
		_ = rc.write(raw)
	}
}

// dropConn remove a conexão e anuncia o leave do peer aos demais.
func (h *Hub) dropConn(conn *websocket.Conn) {
	h.mu.Lock()
	rc := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()

	if rc == nil || rc.peerID == "" {
		return
	}
	h.log.Info("peer left", zap.String("peer", rc.peerID))

	leave, _ := json.Marshal(transport.Frame{Peer: rc.peerID, Kind: transport.FrameLeave})
	h.fanout(conn, leave)
}

// PeerCount devolve o número de conexões registradas (para o /healthz).
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
