package race

import (
	"context"

	"slotrace/internal/pkg/ws"
)

// WSDialer is the production Dialer, backed by the websocket collaborator.
type WSDialer struct {
	authToken string
}

// NewWSDialer creates a dialer carrying the stream's optional bearer
// credential.
func NewWSDialer(authToken string) *WSDialer {
	return &WSDialer{authToken: authToken}
}

// Dial connects to the stream's endpoint and subscribes to slot notifications
// at the given commitment level. Any failure is transient from the runner's
// point of view.
func (d *WSDialer) Dial(_ context.Context, stream StreamIdentity, commitment Commitment) (Feed, error) {
	conn, err := ws.NewConnection(stream.Endpoint, d.authToken)
	if err != nil {
		return nil, err
	}

	sub, err := conn.SubscribeSlots(1, string(commitment))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &wsFeed{conn: conn, sub: sub}, nil
}

type wsFeed struct {
	conn *ws.Connection
	sub  *ws.Subscription
}

func (f *wsFeed) Next() ([]byte, error) {
	return f.sub.NextMessage()
}

func (f *wsFeed) Pong(id int64) error {
	return f.conn.Pong(id)
}

func (f *wsFeed) Close() error {
	// The connection is usually already broken when the runner gets here, so
	// the unsubscribe is best effort.
	_ = f.sub.Unsubscribe()
	return f.conn.Close()
}
