package dto

import (
	"github.com/radieske/meshbet-p2p-poc/internal/betting"
	"github.com/radieske/meshbet-p2p-poc/internal/betting/fees"
)

type BetResponse struct {
	Bet *betting.Bet `json:"bet"`
}

type BetListResponse struct {
	Bets []*betting.Bet `json:"bets"`
}

type ActionResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type FeePreviewResponse struct {
	Breakdown fees.Breakdown `json:"breakdown"`
	Lines     []string       `json:"lines"`
}
