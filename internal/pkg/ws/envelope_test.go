package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSlotNotification(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"slotNotification","params":{"subscription":1,"result":{"slot":12345,"parent":12344,"status":"processed"}}}`)

	env, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, KindSlot, env.Kind)
	require.Equal(t, uint64(12345), env.Slot.Slot)
	require.Equal(t, uint64(12344), env.Slot.Parent)
	require.Equal(t, "processed", env.Slot.Status)
}

func TestDecodeHeartbeat(t *testing.T) {
	env, err := Decode([]byte(`{"method":"ping","params":{"id":42}}`))
	require.NoError(t, err)
	require.Equal(t, KindPing, env.Kind)
	require.Equal(t, int64(42), env.PingID)

	env, err = Decode([]byte(`{"method":"pong","params":{"id":42}}`))
	require.NoError(t, err)
	require.Equal(t, KindPong, env.Kind)
	require.Equal(t, int64(42), env.PongID)
}

func TestDecodePassthroughKinds(t *testing.T) {
	env, err := Decode([]byte(`{"method":"accountNotification","params":{"subscription":2,"result":{"pubkey":"9xQeW","lamports":100,"slot":7}}}`))
	require.NoError(t, err)
	require.Equal(t, KindAccount, env.Kind)
	require.Equal(t, "9xQeW", env.Account.Pubkey)
	require.Equal(t, uint64(100), env.Account.Lamports)

	env, err = Decode([]byte(`{"method":"transactionNotification","params":{"subscription":3,"result":{"signature":"5j7s","slot":8,"err":null}}}`))
	require.NoError(t, err)
	require.Equal(t, KindTransaction, env.Kind)
	require.Equal(t, "5j7s", env.Transaction.Signature)

	env, err = Decode([]byte(`{"method":"blockNotification","params":{"subscription":4,"result":{"slot":9,"blockhash":"EkSn"}}}`))
	require.NoError(t, err)
	require.Equal(t, KindBlock, env.Kind)
	require.Equal(t, "EkSn", env.Block.Blockhash)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"params":{"result":`))
	require.Error(t, err)

	// A frame with no method at all is malformed, not merely unknown.
	_, err = Decode([]byte(`{"params":{"id":1}}`))
	require.Error(t, err)

	// A notification whose inner payload is missing must fail so the consume
	// loop can trigger a reconnect.
	_, err = Decode([]byte(`{"method":"slotNotification","params":{"subscription":1}}`))
	require.Error(t, err)

	_, err = Decode([]byte(`{"method":"slotNotification","params":{"subscription":1,"result":{"slot":"not-a-number"}}}`))
	require.Error(t, err)
}

func TestDecodeUnknownMethod(t *testing.T) {
	env, err := Decode([]byte(`{"method":"voteNotification","params":{"result":{}}}`))
	require.NoError(t, err)
	require.Equal(t, KindUnknown, env.Kind)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "slot", KindSlot.String())
	require.Equal(t, "account", KindAccount.String())
	require.Equal(t, "transaction", KindTransaction.String())
	require.Equal(t, "block", KindBlock.String())
	require.Equal(t, "ping", KindPing.String())
	require.Equal(t, "pong", KindPong.String())
	require.Equal(t, "unknown", KindUnknown.String())
}
