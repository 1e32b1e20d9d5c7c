package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisMesh implementa o mesh sobre um canal Redis Pub/Sub compartilhado.
// Cada publicação chega a todos os assinantes, inclusive o próprio nó;
// quadros com o peer local são descartados na entrada.
type RedisMesh struct {
	log     *zap.Logger
	rdb     *redis.Client
	channel string
	peerID  string

	sub      *redis.PubSub
	incoming chan string
	events   chan PeerEvent
	cancel   context.CancelFunc
}

func NewRedisMesh(ctx context.Context, log *zap.Logger, rdb *redis.Client, channel, peerID string) (*RedisMesh, error) {
	m := &RedisMesh{
		log:      log,
		rdb:      rdb,
		channel:  channel,
		peerID:   peerID,
		incoming: make(chan string, 256),
		events:   make(chan PeerEvent, 32),
	}

	m.sub = rdb.Subscribe(ctx, channel)
	if _, err := m.sub.Receive(ctx); err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.listen(loopCtx)

	// Anuncia presença no canal
	if err := m.publish(ctx, Frame{Peer: peerID, Kind: FrameJoin}); err != nil {
		log.Warn("mesh join announce failed", zap.Error(err))
	}

	return m, nil
}

func (m *RedisMesh) listen(ctx context.Context) {
	ch := m.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			if msg == nil {
				continue
			}
			var f Frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				continue // tráfego de outro protocolo no canal
			}
			if f.Peer == m.peerID {
				continue // próprio eco
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
}

func (m *RedisMesh) emit(ev PeerEvent) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *RedisMesh) publish(ctx context.Context, f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return m.rdb.Publish(ctx, m.channel, b).Err()
}

func (m *RedisMesh) LocalPeerID() string { return m.peerID }

func (m *RedisMesh) Broadcast(ctx context.Context, payload string) error {
	return m.publish(ctx, Frame{Peer: m.peerID, Kind: FrameData, Data: payload})
}

func (m *RedisMesh) Incoming() <-chan string  { return m.incoming }
func (m *RedisMesh) Events() <-chan PeerEvent { return m.events }

func (m *RedisMesh) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.publish(ctx, Frame{Peer: m.peerID, Kind: FrameLeave}); err != nil {
		m.log.Warn("mesh leave announce failed", zap.Error(err))
	}
	m.cancel()
	return m.sub.Close()
}
