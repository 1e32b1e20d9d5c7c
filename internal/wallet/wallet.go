// Package wallet é o provedor de assinatura do nó: deriva um endereço a
// partir de uma seed e assina payloads canônicos. Custódia de chaves fora
// do contrato de assinatura não é responsabilidade deste pacote.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type Wallet struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address string
}

// New cria a carteira a partir de uma seed hex de 32 bytes. Seed vazia gera
// uma identidade efêmera (válida só para a sessão).
func New(seedHex string) (*Wallet, error) {
	var seed []byte
	if seedHex == "" {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("generate seed: %w", err)
		}
	} else {
		var err error
		seed, err = hex.DecodeString(seedHex)
		if err != nil {
			return nil, fmt.Errorf("decode seed: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
		}
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	sum := sha256.Sum256(pub)
	return &Wallet{
		priv:    priv,
		pub:     pub,
		address: "0x" + hex.EncodeToString(sum[:20]),
	}, nil
}

func (w *Wallet) Address() string { return w.address }

func (w *Wallet) PublicKeyHex() string { return hex.EncodeToString(w.pub) }

// SignMessage assina o payload canônico e devolve a assinatura em hex.
func (w *Wallet) SignMessage(payload string) (string, error) {
	sig := ed25519.Sign(w.priv, []byte(payload))
	return hex.EncodeToString(sig), nil
}

// Verify confere uma assinatura contra a chave pública informada. O router
// não chama isto hoje; a verificação na borda do protocolo continua em
// aberto.
func Verify(pubKeyHex, payload, sigHex string) bool {
	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(payload), sig)
}
