package betting

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/radieske/meshbet-p2p-poc/pkg/contracts/messages"
)

// Router decodifica payloads opacos vindos do transporte e despacha para as
// regras de adoção do store. É um sorvedouro terminal para entrada ruim: o
// canal é compartilhado com outros protocolos, então lixo e mensagens
// estranhas são descartados em silêncio, nunca propagados.
type Router struct {
	log   *zap.Logger
	store *Store

	// Callbacks de métricas, ligadas no main (counter++)
	OnConsumed func()
	OnApplied  func(msgType string)
	OnIgnored  func(msgType string)
	OnDropped  func(reason string)
}

func NewRouter(log *zap.Logger, store *Store) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{log: log, store: store}
}

// HandleIncoming processa um payload bruto entregue pelo transporte. Deve
// ser chamado para todo payload recebido do mesh.
func (r *Router) HandleIncoming(ctx context.Context, raw string) {
	if r.OnConsumed != nil {
		r.OnConsumed()
	}

	env, err := messages.Decode(raw)
	if err != nil {
		// Tráfego de outro protocolo ou envelope malformado
		r.drop("decode")
		return
	}

	r.log.Debug("bet message received",
		zap.String("type", string(env.Type)),
		zap.String("betId", env.BetID),
		zap.String("from", env.SenderPeerID),
	)

	switch env.Type {
	case messages.TypeProposal:
		var bet Bet
		if err := json.Unmarshal(env.Payload, &bet); err != nil {
			r.drop("payload")
			return
		}
		r.count(r.store.ApplyProposal(ctx, &bet), env.Type)

	case messages.TypeAccept:
		var p AcceptPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			r.drop("payload")
			return
		}
		r.count(r.store.ApplyAccept(ctx, env.BetID, p.Opponent), env.Type)

	case messages.TypeCancel:
		r.count(r.store.ApplyCancel(ctx, env.BetID), env.Type)

	case messages.TypeSettle:
		var p SettlePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			r.drop("payload")
			return
		}
		r.count(r.store.ApplySettle(ctx, env.BetID, p.SettledAt), env.Type)

	default:
		// REJECT, DISPUTE e SYNC fazem parte do formato de fio mas não têm
		// handler; ainda chegam aos assinantes de mensagem abaixo.
		r.count(false, env.Type)
	}

	r.store.notifyMessage(env)
}

func (r *Router) count(applied bool, t messages.Type) {
	if applied {
		if r.OnApplied != nil {
			r.OnApplied(string(t))
		}
		return
	}
	if r.OnIgnored != nil {
		r.OnIgnored(string(t))
	}
}

func (r *Router) drop(reason string) {
	if r.OnDropped != nil {
		r.OnDropped(reason)
	}
}
