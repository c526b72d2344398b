package race

import (
	log "github.com/sirupsen/logrus"

	"slotrace/internal/pkg/ws"
)

// Passthrough logs account, transaction and block updates that arrive on a
// slot feed. These payloads are observed only; they never touch race state.
type Passthrough struct{}

// NewPassthrough creates the pass-through observer.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Observe logs one non-race payload.
func (p *Passthrough) Observe(stream StreamIdentity, env *ws.Envelope) {
	switch env.Kind {
	case ws.KindAccount:
		log.Infof("[%s] account update: pubkey=%s, slot=%d, lamports=%d",
			stream, env.Account.Pubkey, env.Account.Slot, env.Account.Lamports)

	case ws.KindTransaction:
		status := "SUCCESS"
		if len(env.Transaction.Err) > 0 && string(env.Transaction.Err) != "null" {
			status = "FAILED"
		}
		log.Infof("[%s] transaction update: signature=%s, slot=%d, status=%s",
			stream, env.Transaction.Signature, env.Transaction.Slot, status)

	case ws.KindBlock:
		log.Infof("[%s] block update: slot=%d, blockhash=%s",
			stream, env.Block.Slot, env.Block.Blockhash)
	}
}
