package messages

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid proposal", `{"type":"BET_PROPOSAL","betId":"bet_1","timestamp":1}`, false},
		{"valid with payload", `{"type":"BET_SETTLE","betId":"bet_1","payload":{"winnerSelection":"x","settledAt":2}}`, false},
		{"empty", ``, true},
		{"garbage", `::`, true},
		{"other protocol", `{"kind":"chat","text":"hi"}`, true},
		{"missing betId", `{"type":"BET_ACCEPT"}`, true},
		{"missing type", `{"betId":"bet_1"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrNotBetMessage) {
					t.Fatalf("err = %v, want ErrNotBetMessage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Type == "" || env.BetID == "" {
				t.Fatalf("decoded envelope incomplete: %+v", env)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	env := &Envelope{
		Type:         TypeCancel,
		BetID:        "bet_9",
		Timestamp:    1700000000000,
		SenderPeerID: "peer_a",
		SenderWallet: "0xabc",
		Signature:    "",
	}
	if err := env.WithPayload(struct{}{}); err != nil {
		t.Fatal(err)
	}

	raw, err := env.Encode()
	if err != nil {
		t.Fatal(err)
	}

	back, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if back.Type != TypeCancel || back.BetID != "bet_9" || back.Timestamp != env.Timestamp {
		t.Fatalf("roundtrip mismatch: %+v", back)
	}
}
