package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/meshbet-p2p-poc/internal/bet-node/dto"
	"github.com/radieske/meshbet-p2p-poc/internal/betting"
	"github.com/radieske/meshbet-p2p-poc/internal/ledger"
)

// Server expõe o store de apostas para a aplicação local (UI, automação).
// As falhas de precondição do store viram códigos HTTP; nada aqui fala com
// a rede mesh diretamente.
type Server struct {
	log    *zap.Logger
	store  *betting.Store
	ledger *ledger.Postgres // opcional; nil desabilita /treasury
}

func NewServer(log *zap.Logger, store *betting.Store, lg *ledger.Postgres) *Server {
	return &Server{log: log, store: store, ledger: lg}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.bets)         // POST cria, GET lista
	mux.HandleFunc("/bets/", s.betByID)     // GET /bets/{id}, POST /bets/{id}/{action}
	mux.HandleFunc("/stats", s.stats)       // GET
	mux.HandleFunc("/fees/preview", s.fees) // GET ?amount=&odds=
	mux.HandleFunc("/treasury", s.treasury) // GET; exige o ledger habilitado
	return mux
}

func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBets(w, r)
	case http.MethodPost:
		s.createBet(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	var bets []*betting.Bet
	switch r.URL.Query().Get("filter") {
	case "open":
		bets = s.store.OpenBets()
	case "active":
		bets = s.store.ActiveBets()
	case "mine":
		bets = s.store.MyBets()
	default:
		bets = s.store.AllBets()
	}
	writeJSON(w, dto.BetListResponse{Bets: bets})
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.EventID == "" || req.Selection == "" || req.OpponentSelection == "" || req.Amount <= 0 || req.Odds <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	bet, err := s.store.CreateBet(r.Context(), betting.CreateParams{
		EventID:           req.EventID,
		EventName:         req.EventName,
		Sport:             req.Sport,
		Selection:         req.Selection,
		OpponentSelection: req.OpponentSelection,
		Amount:            req.Amount,
		Currency:          betting.Currency(req.Currency),
		Odds:              req.Odds,
		ExpiresIn:         time.Duration(req.ExpiresInMinutes) * time.Minute,
	})
	if err != nil {
		s.writeError(w, "", err)
		return
	}
	writeJSON(w, dto.BetResponse{Bet: bet})
}

func (s *Server) betByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bets/")
	if rest == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	id, action, _ := strings.Cut(rest, "/")

	if action == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		bet, ok := s.store.GetBet(id)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, dto.BetResponse{Bet: bet})
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var err error
	switch action {
	case "accept":
		err = s.store.AcceptBet(r.Context(), id)
	case "settle":
		var req dto.SettleBetRequest
		if jerr := json.NewDecoder(r.Body).Decode(&req); jerr != nil || req.WinnerSelection == "" {
			http.Error(w, "winnerSelection required", http.StatusBadRequest)
			return
		}
		err = s.store.SettleBet(r.Context(), id, req.WinnerSelection)
	case "cancel":
		err = s.store.CancelBet(r.Context(), id)
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}

	if err != nil {
		s.writeError(w, id, err)
		return
	}

	bet, _ := s.store.GetBet(id)
	writeJSON(w, dto.ActionResponse{BetID: id, Status: string(bet.Status)})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.store.Stats())
}

func (s *Server) fees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount < 0 {
		http.Error(w, "amount required", http.StatusBadRequest)
		return
	}
	odds := 2.0
	if v := r.URL.Query().Get("odds"); v != "" {
		if odds, err = strconv.ParseFloat(v, 64); err != nil || odds == 0 {
			http.Error(w, "invalid odds", http.StatusBadRequest)
			return
		}
	}

	bd := s.store.FeeConfig().Calculate(amount, odds)
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "SAT"
	}
	writeJSON(w, dto.FeePreviewResponse{Breakdown: bd, Lines: bd.FormatLines(currency)})
}

func (s *Server) treasury(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.ledger == nil {
		http.Error(w, "ledger disabled", http.StatusServiceUnavailable)
		return
	}
	st, err := s.ledger.TreasuryStats(r.Context())
	if err != nil {
		s.log.Error("treasury stats", zap.Error(err))
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, st)
}

// writeError mapeia falhas de precondição do store para códigos HTTP.
func (s *Server) writeError(w http.ResponseWriter, betID string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, betting.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, betting.ErrNotCreator):
		status = http.StatusForbidden
	case errors.Is(err, betting.ErrNoWallet),
		errors.Is(err, betting.ErrNotOpen),
		errors.Is(err, betting.ErrNotAccepted),
		errors.Is(err, betting.ErrExpired):
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ActionResponse{BetID: betID, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
