package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	bhttp "github.com/radieske/meshbet-p2p-poc/internal/bet-node/http"
	"github.com/radieske/meshbet-p2p-poc/internal/betting"
	"github.com/radieske/meshbet-p2p-poc/internal/betting/persist"
)

type testSigner struct{ addr string }

func (s testSigner) Address() string { return s.addr }

func (s testSigner) SignMessage(payload string) (string, error) { return "sig", nil }

type nullMesh struct{ peerID string }

func (n nullMesh) LocalPeerID() string { return n.peerID }

func (n nullMesh) Broadcast(_ context.Context, _ string) error { return nil }

func newTestAPI(t *testing.T) (*betting.Store, *httptest.Server) {
	t.Helper()
	store := betting.NewStore(betting.StoreOptions{
		Signer:   testSigner{addr: "0xlocal"},
		Mesh:     nullMesh{peerID: "peer_local"},
		Persist:  persist.NewMemory(),
		Nickname: "tester",
	})
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	api := bhttp.NewServer(zap.NewNop(), store, nil)
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return store, srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateAndGetBet(t *testing.T) {
	_, srv := newTestAPI(t)

	resp := post(t, srv, "/bets", `{
		"eventId": "evt_1",
		"eventName": "Lakers vs Celtics",
		"selection": "TeamX",
		"opponentSelection": "TeamY",
		"amount": 100,
		"currency": "SAT",
		"odds": 2.0
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created struct {
		Bet *betting.Bet `json:"bet"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Bet.Status != betting.StatusOpen {
		t.Fatalf("status = %s", created.Bet.Status)
	}

	get, err := http.Get(srv.URL + "/bets/" + created.Bet.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer get.Body.Close()
	if get.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", get.StatusCode)
	}
}

func TestCreateBetRejectsInvalidPayload(t *testing.T) {
	_, srv := newTestAPI(t)

	for _, body := range []string{
		`not json`,
		`{"eventId": "evt_1", "selection": "TeamX", "opponentSelection": "TeamY", "amount": 0, "odds": 2.0}`,
		`{"eventId": "", "selection": "TeamX", "opponentSelection": "TeamY", "amount": 10, "odds": 2.0}`,
	} {
		if resp := post(t, srv, "/bets", body); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

// As falhas de precondição do store têm um código HTTP fixo cada: 404 para
// aposta desconhecida, 403 para cancelamento por quem não criou e 409 para
// estado incompatível ou expiração.
func TestActionErrorMapping(t *testing.T) {
	store, srv := newTestAPI(t)

	// aposta de terceiro, adotada da rede: o nó local não é o criador
	foreign := &betting.Bet{
		ID:        "bet_foreign",
		Status:    betting.StatusOpen,
		CreatedAt: time.Now().UnixMilli(),
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
		Creator:   betting.Participant{WalletAddress: "0xother", Selection: "TeamX"},
		Amount:    50,
		Odds:      2.0,
	}
	if !store.ApplyProposal(context.Background(), foreign) {
		t.Fatal("proposal not adopted")
	}

	// aposta já aceita: accept e cancel deixam de valer
	accepted := foreign.Clone()
	accepted.ID = "bet_accepted"
	store.ApplyProposal(context.Background(), accepted)
	store.ApplyAccept(context.Background(), "bet_accepted", betting.Participant{WalletAddress: "0xopp"})

	// aposta expirada: accept cai na checagem de expiração
	expired := foreign.Clone()
	expired.ID = "bet_expired"
	expired.ExpiresAt = time.Now().Add(-time.Minute).UnixMilli()
	store.ApplyProposal(context.Background(), expired)

	cases := []struct {
		name string
		path string
		want int
	}{
		{"accept unknown", "/bets/bet_missing/accept", http.StatusNotFound},
		{"cancel by non-creator", "/bets/bet_foreign/cancel", http.StatusForbidden},
		{"accept already accepted", "/bets/bet_accepted/accept", http.StatusConflict},
		{"cancel already accepted", "/bets/bet_accepted/cancel", http.StatusConflict},
		{"accept expired", "/bets/bet_expired/accept", http.StatusConflict},
		{"settle open bet", "/bets/bet_foreign/settle", http.StatusConflict},
		{"unknown action", "/bets/bet_foreign/explode", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := "{}"
			if strings.HasSuffix(tc.path, "/settle") {
				body = `{"winnerSelection": "TeamX"}`
			}
			resp := post(t, srv, tc.path, body)
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}

	// nenhuma das falhas pode ter mudado o estado adotado
	if got, _ := store.GetBet("bet_foreign"); got.Status != betting.StatusOpen {
		t.Fatalf("bet_foreign status = %s, want open", got.Status)
	}
}

func TestGetUnknownBet(t *testing.T) {
	_, srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/bets/bet_missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFeePreview(t *testing.T) {
	_, srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/fees/preview?amount=100&odds=2.0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var preview struct {
		Breakdown struct {
			TotalPot    float64 `json:"totalPot"`
			PlatformFee float64 `json:"platformFee"`
		} `json:"breakdown"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if preview.Breakdown.TotalPot != 200 || preview.Breakdown.PlatformFee != 1.5 {
		t.Fatalf("breakdown = %+v", preview.Breakdown)
	}
}

func TestTreasuryDisabledWithoutLedger(t *testing.T) {
	_, srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/treasury")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}
