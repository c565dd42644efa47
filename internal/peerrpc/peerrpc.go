// Package peerrpc is the concrete RPC transport the Prober dials: a
// single websocket connection carrying two JSON-framed request types,
// multiplexed rather than split across two sockets.
package peerrpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trudi-group/mc-crawler/crawl"
)

// Path is the fixed HTTP path a peer's consensus RPC endpoint is
// expected to serve the websocket upgrade on.
const Path = "/consensus"

type request struct {
	Method string `json:"method"`
}

type latestMsgResponse struct {
	Payload []byte `json:"payload"`
}

type lastBlockResponse struct {
	Index               uint64 `json:"index"`
	NetworkBlockVersion uint64 `json:"networkBlockVersion"`
	MinimumFee          uint64 `json:"minimumFee"`
}

// Dialer implements crawl.Dialer over gorilla/websocket.
type Dialer struct {
	ws *websocket.Dialer
}

// NewDialer constructs a Dialer whose handshake is bounded by timeout.
func NewDialer(timeout time.Duration) *Dialer {
	return &Dialer{ws: &websocket.Dialer{HandshakeTimeout: timeout}}
}

// Dial opens a websocket connection to uri's (host, port) at Path.
func (d *Dialer) Dial(ctx context.Context, uri string) (crawl.Channel, error) {
	host, port, ok := crawl.ParsePeerURI(uri)
	if !ok {
		return nil, fmt.Errorf("peerrpc: invalid peer uri %q", uri)
	}
	wsURL := fmt.Sprintf("ws://%s:%d%s", host, port, Path)
	conn, _, err := d.ws.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("peerrpc: dial %s: %w", wsURL, err)
	}
	return &channel{conn: conn}, nil
}

// channel implements crawl.Channel over one websocket connection. A
// mutex serializes GetLatestMsg/GetLastBlockInfo calls so both can be
// invoked from the same Prober without racing the underlying conn.
type channel struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *channel) call(ctx context.Context, method string, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return err
		}
	}
	if err := c.conn.WriteJSON(request{Method: method}); err != nil {
		return err
	}
	return c.conn.ReadJSON(out)
}

func (c *channel) GetLatestMsg(ctx context.Context) ([]byte, error) {
	var resp latestMsgResponse
	if err := c.call(ctx, "GetLatestMsg", &resp); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

func (c *channel) GetLastBlockInfo(ctx context.Context) (crawl.LastBlockInfo, error) {
	var resp lastBlockResponse
	if err := c.call(ctx, "GetLastBlockInfo", &resp); err != nil {
		return crawl.LastBlockInfo{}, err
	}
	return crawl.LastBlockInfo{
		Index:               resp.Index,
		NetworkBlockVersion: resp.NetworkBlockVersion,
		MinimumFee:          resp.MinimumFee,
	}, nil
}

func (c *channel) Close() error { return c.conn.Close() }
