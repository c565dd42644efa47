package crawl

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/trudi-group/mc-crawler/log"
)

// Engine is the Discovery Engine (C4): a fixed-point BFS over the
// network's PeerURI graph. Each round snapshots to_crawl, probes every
// member of that snapshot concurrently (bounded fan-out via an
// errgroup.Group with SetLimit, optionally paced by a rate.Limiter), and
// feeds newly-discovered peers back into to_crawl for the next round.
// The loop terminates the round a snapshot of to_crawl comes back empty.
type Engine struct {
	state       *CrawlerState
	prober      *Prober
	concurrency int
	limiter     *rate.Limiter
	log         log.Logger
}

// NewEngine constructs a Discovery Engine. concurrency bounds how many
// peers are probed at once within a single round; limiter may be nil to
// disable rate limiting entirely.
func NewEngine(state *CrawlerState, prober *Prober, concurrency int, limiter *rate.Limiter, logger log.Logger) *Engine {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = log.Root()
	}
	logger = logger.New("runId", state.RunID)
	return &Engine{state: state, prober: prober, concurrency: concurrency, limiter: limiter, log: logger}
}

// Crawl runs the fixed-point loop to completion. It only returns an
// error if ctx is canceled; individual peer failures never abort the
// crawl. A peer whose RPCs fail is recorded as unreachable; a peer whose
// Channel cannot be opened is marked crawled but not recorded at all.
func (e *Engine) Crawl(ctx context.Context) error {
	start := time.Now()
	round := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		uris := e.state.Snapshot()
		if len(uris) == 0 {
			break
		}
		round++
		e.log.Info("starting crawl round", "round", round, "peers", len(uris))

		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for _, uri := range uris {
			uri := uri
			g.Go(func() error {
				e.probeOne(ctx, uri)
				return nil
			})
		}
		_ = g.Wait()
	}
	e.state.SetCrawlTimes(start, time.Since(start))
	return nil
}

func (e *Engine) probeOne(ctx context.Context, uri string) {
	e.state.MarkCrawled(uri)
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return
		}
	}

	host, port, ok := ParsePeerURI(uri)
	if !ok {
		e.log.Warn("dropping malformed peer uri mid-crawl", "uri", uri)
		return
	}

	res := e.prober.Probe(ctx, uri)
	if res.ChannelErr {
		return
	}

	var qs QuorumSet
	if res.Online {
		if decoded, found := DecodeQuorumSetPayload(res.LatestMsgPayload, e.log); found {
			qs = decoded
		}
	}

	node := CrawledNode{
		Domain:    host,
		Port:      port,
		QuorumSet: qs,
		Online:    res.Online,
	}
	if res.HasLastBlock {
		node.LatestBlock = res.LastBlock.Index
		node.NetworkBlockVersion = res.LastBlock.NetworkBlockVersion
		node.MinimumFee = res.LastBlock.MinimumFee
	}
	e.state.AddDiscovered(node)
	if res.Online {
		e.state.IncrementReachable()
	}

	WalkNodes(qs, func(nm NodeMember) {
		derived := BuildPeerURI(nm.ResponderID)
		if _, _, ok := ParsePeerURI(derived); !ok {
			e.log.Warn("skipping malformed responder id", "responderId", nm.ResponderID)
			return
		}
		if e.state.Enqueue(derived) {
			e.log.Debug("discovered new peer", "uri", derived)
		}
	})
}
