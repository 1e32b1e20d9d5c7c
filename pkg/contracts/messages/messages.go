package messages

import (
	"encoding/json"
	"errors"
)

// Tipos de mensagem do protocolo de apostas trocado entre peers.
// REJECT, DISPUTE e SYNC fazem parte do formato de fio mas nenhum
// handler os processa hoje.
type Type string

const (
	TypeProposal Type = "BET_PROPOSAL"
	TypeAccept   Type = "BET_ACCEPT"
	TypeReject   Type = "BET_REJECT"
	TypeCancel   Type = "BET_CANCEL"
	TypeSettle   Type = "BET_SETTLE"
	TypeDispute  Type = "BET_DISPUTE"
	TypeSync     Type = "BET_SYNC"
)

// Envelope é o registro serializado em JSON sobre o payload opaco do
// transporte. O campo Payload varia por tipo e é decodificado pelo router.
type Envelope struct {
	Type         Type            `json:"type"`
	BetID        string          `json:"betId"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Timestamp    int64           `json:"timestamp"`
	SenderPeerID string          `json:"senderPeerId"`
	SenderWallet string          `json:"senderWallet"`
	Signature    string          `json:"signature"`
}

// ErrNotBetMessage indica tráfego de outro protocolo no canal compartilhado.
var ErrNotBetMessage = errors.New("not a bet protocol message")

// Decode desserializa um payload bruto do transporte. Qualquer coisa que não
// seja um envelope com type e betId preenchidos retorna ErrNotBetMessage.
func Decode(raw string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, ErrNotBetMessage
	}
	if env.Type == "" || env.BetID == "" {
		return nil, ErrNotBetMessage
	}
	return &env, nil
}

// Encode serializa o envelope para broadcast.
func (e *Envelope) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WithPayload preenche o campo Payload a partir de um valor tipado.
func (e *Envelope) WithPayload(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.Payload = b
	return nil
}
