package ws

import (
	"encoding/json"
	"fmt"
)

// Kind classifies inbound feed frames.
type Kind int

const (
	KindUnknown Kind = iota
	KindSlot
	KindAccount
	KindTransaction
	KindBlock
	KindPing
	KindPong
)

func (k Kind) String() string {
	switch k {
	case KindSlot:
		return "slot"
	case KindAccount:
		return "account"
	case KindTransaction:
		return "transaction"
	case KindBlock:
		return "block"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	}
	return "unknown"
}

// SlotNotification is the inner payload of a slot update.
type SlotNotification struct {
	Slot   uint64 `json:"slot"`
	Parent uint64 `json:"parent"`
	Status string `json:"status"`
}

// AccountNotification is the inner payload of an account update.
type AccountNotification struct {
	Pubkey   string `json:"pubkey"`
	Lamports uint64 `json:"lamports"`
	Slot     uint64 `json:"slot"`
}

// TransactionNotification is the inner payload of a transaction update.
type TransactionNotification struct {
	Signature string          `json:"signature"`
	Slot      uint64          `json:"slot"`
	Err       json.RawMessage `json:"err"`
}

// BlockNotification is the inner payload of a block update.
type BlockNotification struct {
	Slot      uint64 `json:"slot"`
	Blockhash string `json:"blockhash"`
}

// Envelope is one decoded inbound frame. Exactly one payload field matching
// Kind is set.
type Envelope struct {
	Kind        Kind
	Slot        *SlotNotification
	Account     *AccountNotification
	Transaction *TransactionNotification
	Block       *BlockNotification
	PingID      int64
	PongID      int64
}

type notification struct {
	Method string `json:"method"`
	Params struct {
		Subscription int64           `json:"subscription"`
		Result       json.RawMessage `json:"result"`
		ID           int64           `json:"id"`
	} `json:"params"`
}

// Decode parses a raw inbound frame into an Envelope. A frame without a
// method or with a missing or malformed inner payload is an error; a frame
// with an unrecognized method decodes to KindUnknown.
func Decode(raw []byte) (*Envelope, error) {
	var n notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch n.Method {
	case "slotNotification":
		var sn SlotNotification
		if err := decodeResult(&n, &sn); err != nil {
			return nil, err
		}
		return &Envelope{Kind: KindSlot, Slot: &sn}, nil

	case "accountNotification":
		var an AccountNotification
		if err := decodeResult(&n, &an); err != nil {
			return nil, err
		}
		return &Envelope{Kind: KindAccount, Account: &an}, nil

	case "transactionNotification":
		var tn TransactionNotification
		if err := decodeResult(&n, &tn); err != nil {
			return nil, err
		}
		return &Envelope{Kind: KindTransaction, Transaction: &tn}, nil

	case "blockNotification":
		var bn BlockNotification
		if err := decodeResult(&n, &bn); err != nil {
			return nil, err
		}
		return &Envelope{Kind: KindBlock, Block: &bn}, nil

	case "ping":
		return &Envelope{Kind: KindPing, PingID: n.Params.ID}, nil

	case "pong":
		return &Envelope{Kind: KindPong, PongID: n.Params.ID}, nil

	case "":
		return nil, fmt.Errorf("frame carries no method")
	}

	return &Envelope{Kind: KindUnknown}, nil
}

func decodeResult(n *notification, into interface{}) error {
	if len(n.Params.Result) == 0 {
		return fmt.Errorf("%s missing result payload", n.Method)
	}
	if err := json.Unmarshal(n.Params.Result, into); err != nil {
		return fmt.Errorf("%s: %w", n.Method, err)
	}
	return nil
}
