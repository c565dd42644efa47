package crawl

import (
	"context"
	"time"

	"github.com/trudi-group/mc-crawler/log"
)

// LastBlockInfo is the structured reply to a GetLastBlockInfo call.
type LastBlockInfo struct {
	Index               uint64
	NetworkBlockVersion uint64
	MinimumFee          uint64
}

// Channel is an open RPC session with one peer, offering the two calls
// the crawler needs. Implemented concretely by internal/peerrpc over a
// websocket; faked in tests.
type Channel interface {
	GetLatestMsg(ctx context.Context) ([]byte, error)
	GetLastBlockInfo(ctx context.Context) (LastBlockInfo, error)
	Close() error
}

// Dialer constructs a Channel to a PeerURI. Its own failure (the peer is
// unreachable, TLS handshake failed, DNS didn't resolve) is distinct
// from an RPC made over an established Channel subsequently failing —
// the former means "this node is unreachable", the latter means "this
// node answered some calls but not this one".
type Dialer interface {
	Dial(ctx context.Context, uri string) (Channel, error)
}

// ProbeResult is the outcome of probing a single peer: each RPC
// succeeds or fails independently (Some/None), and a Channel
// construction failure collapses both into a single "could not reach
// this node at all" signal.
type ProbeResult struct {
	ChannelErr bool

	Online           bool
	LatestMsgPayload []byte

	HasLastBlock bool
	LastBlock    LastBlockInfo
}

// Prober is the Peer Prober (C2): given a Dialer, it opens a Channel to
// a peer and makes both RPCs, logging and absorbing any failure rather
// than returning an error — a silent or misbehaving peer is a normal
// crawl outcome, not an exceptional one.
type Prober struct {
	dialer  Dialer
	timeout time.Duration
	log     log.Logger
}

// NewProber constructs a Prober. timeout bounds each individual RPC,
// not the Dial call or the probe as a whole.
func NewProber(dialer Dialer, timeout time.Duration, logger log.Logger) *Prober {
	if logger == nil {
		logger = log.Root()
	}
	return &Prober{dialer: dialer, timeout: timeout, log: logger}
}

// Probe opens a Channel to uri and makes both RPCs against it.
func (p *Prober) Probe(ctx context.Context, uri string) ProbeResult {
	logger := p.log.New("peer", uri)
	ch, err := p.dialer.Dial(ctx, uri)
	if err != nil {
		logger.Warn("could not open channel", "err", err)
		return ProbeResult{ChannelErr: true}
	}
	defer func() {
		if cerr := ch.Close(); cerr != nil {
			logger.Warn("error closing channel", "err", cerr)
		}
	}()

	var res ProbeResult

	msgCtx, cancel := context.WithTimeout(ctx, p.timeout)
	payload, err := ch.GetLatestMsg(msgCtx)
	cancel()
	if err != nil {
		logger.Warn("GetLatestMsg failed", "err", err)
	} else {
		res.Online = true
		res.LatestMsgPayload = payload
	}

	blkCtx, cancel2 := context.WithTimeout(ctx, p.timeout)
	info, err := ch.GetLastBlockInfo(blkCtx)
	cancel2()
	if err != nil {
		logger.Warn("GetLastBlockInfo failed", "err", err)
	} else {
		res.HasLastBlock = true
		res.LastBlock = info
	}

	logger.Debug("probe complete", "online", res.Online, "hasLastBlock", res.HasLastBlock)
	return res
}
