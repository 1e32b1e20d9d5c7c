// Package persist implementa a persistência write-through do store de
// apostas: todo o conjunto conhecido é serializado como um array JSON único
// sob uma chave só, reescrito por inteiro a cada mutação.
package persist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/meshbet-p2p-poc/internal/betting"
)

type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, key string) *Redis {
	return &Redis{rdb: rdb, key: key}
}

func (r *Redis) LoadBets(ctx context.Context) ([]*betting.Bet, error) {
	raw, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var bets []*betting.Bet
	if err := json.Unmarshal([]byte(raw), &bets); err != nil {
		return nil, err
	}
	return bets, nil
}

func (r *Redis) SaveBets(ctx context.Context, bets []*betting.Bet) error {
	b, err := json.Marshal(bets)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key, b, 0).Err()
}
