// Package ledger persiste o histórico de transições das apostas e o
// acumulado de taxas em Postgres. É um registro de auditoria local do nó,
// não um livro-razão compartilhado entre peers.
package ledger

import (
	"context"
	"database/sql"
	"time"
)

type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// RecordTransition grava uma transição de status. from vazio indica criação
// ou adoção de proposta; actor é a carteira local ou "network".
func (p *Postgres) RecordTransition(ctx context.Context, betID, from, to, actor string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet_transitions (bet_id, old_status, new_status, actor, created_at)
		VALUES ($1,$2,$3,$4,NOW())`, betID, from, to, actor)
	return err
}

// RecordFeeCollection grava o rateio de taxa apurado na liquidação local.
func (p *Postgres) RecordFeeCollection(ctx context.Context, betID string, treasuryShare, relayTips float64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO fee_collections (bet_id, treasury_share, relay_tips, created_at)
		VALUES ($1,$2,$3,NOW())`, betID, treasuryShare, relayTips)
	return err
}

type TreasuryStats struct {
	TotalCollected       float64   `json:"totalCollected"`
	RelayTipsDistributed float64   `json:"relayTipsDistributed"`
	LastUpdated          time.Time `json:"lastUpdated"`
}

// TreasuryStats agrega o total coletado para a tesouraria e distribuído em
// gorjetas de relay.
func (p *Postgres) TreasuryStats(ctx context.Context) (TreasuryStats, error) {
	var st TreasuryStats
	var last sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(treasury_share),0), COALESCE(SUM(relay_tips),0), MAX(created_at)
		FROM fee_collections`).Scan(&st.TotalCollected, &st.RelayTipsDistributed, &last)
	if err != nil {
		return TreasuryStats{}, err
	}
	if last.Valid {
		st.LastUpdated = last.Time
	}
	return st, nil
}
