package ws

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Request represents a JSON-RPC request sent to a slot feed endpoint.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type subscribeResponse struct {
	Error  map[string]interface{} `json:"error"`
	Result json.Number            `json:"result"`
}

// Connection is a thin wrapper around a websocket connection which provides
// convenience methods for subscribing to a slot feed and replying to
// heartbeats.
type Connection struct {
	conn *websocket.Conn
}

// NewConnection creates and initializes a new websocket connection.
func NewConnection(uri, authToken string) (*Connection, error) {
	header := http.Header{}
	if authToken != "" {
		header.Add("Authorization", authToken)
	}

	tlsConfig := tls.Config{}
	if strings.HasPrefix(uri, "wss") {
		tlsConfig.InsecureSkipVerify = true
	}
	dialer := websocket.Dialer{TLSClientConfig: &tlsConfig}

	conn, resp, err := dialer.Dial(uri, header)
	if err != nil {
		return nil, err
	}
	err = resp.Body.Close()

	return &Connection{
		conn: conn,
	}, err
}

// SubscribeSlots subscribes to slot notifications filtered by the given
// commitment level.
func (c *Connection) SubscribeSlots(id int, commitment string) (*Subscription, error) {
	return c.subscribe(NewRequest(id, "slotSubscribe", []interface{}{
		map[string]interface{}{"commitment": commitment},
	}))
}

func (c *Connection) subscribe(req *Request) (*Subscription, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	if err = c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return nil, err
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var res subscribeResponse
	if err = json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	if res.Error != nil {
		return nil, fmt.Errorf("error from RPC: %v", res.Error)
	}

	return &Subscription{
		ID:   res.Result,
		Conn: c,
	}, nil
}

// Pong replies to a server heartbeat, echoing its correlation id.
func (c *Connection) Pong(id int64) error {
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "pong",
		"params":  map[string]int64{"id": id},
	})
	if err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.TextMessage, body)
}

// Close closes a connection.
func (c *Connection) Close() error {
	if err := c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	); err != nil {
		return err
	}

	return c.conn.Close()
}

// Subscription represents a subscription to a slot feed.
type Subscription struct {
	ID   json.Number
	Conn *Connection
}

// Unsubscribe unsubscribes from the feed.
func (s *Subscription) Unsubscribe() error {
	body, err := json.Marshal(NewRequest(1, "slotUnsubscribe", []interface{}{s.ID}))
	if err != nil {
		return err
	}

	return s.Conn.conn.WriteMessage(websocket.TextMessage, body)
}

// NextMessage is a convenience method which reads and returns the next raw
// frame from the feed.
func (s *Subscription) NextMessage() ([]byte, error) {
	_, r, err := s.Conn.conn.NextReader()

	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}

// NewRequest is a convenience method to create a Request struct.
func NewRequest(id int, method string, params []interface{}) *Request {
	return &Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}
