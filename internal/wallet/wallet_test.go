package wallet

import (
	"strings"
	"testing"
)

const seed = "0000000000000000000000000000000000000000000000000000000000000001"

func TestDeterministicAddress(t *testing.T) {
	a, err := New(seed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(seed)
	if err != nil {
		t.Fatal(err)
	}

	if a.Address() != b.Address() {
		t.Fatalf("same seed, different addresses: %s vs %s", a.Address(), b.Address())
	}
	if !strings.HasPrefix(a.Address(), "0x") || len(a.Address()) != 42 {
		t.Fatalf("address format: %s", a.Address())
	}
}

func TestEphemeralWallet(t *testing.T) {
	a, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if a.Address() == b.Address() {
		t.Fatal("ephemeral wallets must not collide")
	}
}

func TestBadSeed(t *testing.T) {
	if _, err := New("zz"); err == nil {
		t.Fatal("invalid hex accepted")
	}
	if _, err := New("abcd"); err == nil {
		t.Fatal("short seed accepted")
	}
}

func TestSignAndVerify(t *testing.T) {
	w, err := New(seed)
	if err != nil {
		t.Fatal(err)
	}

	payload := `{"betId":"bet_1","action":"accept","timestamp":1700000000000}`
	sig, err := w.SignMessage(payload)
	if err != nil {
		t.Fatal(err)
	}

	if !Verify(w.PublicKeyHex(), payload, sig) {
		t.Fatal("valid signature rejected")
	}
	if Verify(w.PublicKeyHex(), payload+"x", sig) {
		t.Fatal("tampered payload accepted")
	}
	if Verify(w.PublicKeyHex(), payload, "deadbeef") {
		t.Fatal("bogus signature accepted")
	}
	if Verify("nothex", payload, sig) {
		t.Fatal("bogus public key accepted")
	}
}
