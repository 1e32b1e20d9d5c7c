package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/meshbet-p2p-poc/internal/betting"
	sharedkafka "github.com/radieske/meshbet-p2p-poc/internal/shared/kafka"
	"github.com/radieske/meshbet-p2p-poc/pkg/contracts/events"
)

// KafkaExporter publica um evento bet_lifecycle a cada atualização de
// aposta observada pelo nó. Assinado em OnBetUpdate no main; melhor-esforço.
type KafkaExporter struct {
	Log    *zap.Logger
	Writer *kafka.Writer
	PeerID string
}

func NewKafkaExporter(log *zap.Logger, w *kafka.Writer, peerID string) *KafkaExporter {
	return &KafkaExporter{Log: log, Writer: w, PeerID: peerID}
}

func (e *KafkaExporter) Publish(bet *betting.Bet) {
	ev := events.BetLifecycle{
		BetID:    bet.ID,
		EventID:  bet.EventID,
		Sport:    bet.Sport,
		Status:   string(bet.Status),
		Amount:   bet.Amount,
		Currency: string(bet.Currency),
		Odds:     bet.Odds,
		PeerID:   e.PeerID,
		TsUnixMs: time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(ev)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sharedkafka.WriteJSON(ctx, e.Writer, bet.ID, b); err != nil {
		e.Log.Warn("bet_lifecycle publish failed", zap.String("betId", bet.ID), zap.Error(err))
	}
}
