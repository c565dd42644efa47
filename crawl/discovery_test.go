package crawl

import (
	"context"
	"testing"
	"time"
)

// networkDialer simulates a small, fixed FBAS network keyed by PeerURI,
// so the Discovery Engine's fixed-point loop can be exercised without a
// real transport.
type networkDialer struct {
	nodes map[string]QuorumSet
}

func (d *networkDialer) Dial(ctx context.Context, uri string) (Channel, error) {
	qs, ok := d.nodes[uri]
	if !ok {
		return nil, errUnknownPeer
	}
	payload, err := EncodeConsensusMsg(ConsensusMsg{QuorumSet: qs})
	if err != nil {
		return nil, err
	}
	return &fakeChannel{msg: payload, info: LastBlockInfo{Index: 7}}, nil
}

var errUnknownPeer = errDial("unknown peer")

type errDial string

func (e errDial) Error() string { return string(e) }

func TestDiscoveryEngineExpandsViaQuorumSetMembers(t *testing.T) {
	a := "mc://a.example.com:1"
	b := "mc://b.example.com:1"
	c := "mc://c.example.com:1"

	dialer := &networkDialer{nodes: map[string]QuorumSet{
		a: {Threshold: 1, Members: []QuorumSetMember{
			{Kind: MemberNode, Node: NodeMember{ResponderID: "b.example.com:1"}},
		}},
		b: {Threshold: 1, Members: []QuorumSetMember{
			{Kind: MemberNode, Node: NodeMember{ResponderID: "c.example.com:1"}},
		}},
		c: {Threshold: 0},
	}}

	state := NewCrawlerState([]string{a}, nil)
	prober := NewProber(dialer, time.Second, nil)
	engine := NewEngine(state, prober, 4, nil, nil)

	if err := engine.Crawl(context.Background()); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	discovered := state.Discovered()
	if len(discovered) != 3 {
		t.Fatalf("expected all 3 network members discovered, got %d: %+v", len(discovered), discovered)
	}
	if state.ReachableCount() != 3 {
		t.Fatalf("expected all 3 nodes reachable, got %d", state.ReachableCount())
	}
	if !state.ToCrawlEmpty() {
		t.Fatalf("expected fixed point to leave to_crawl empty")
	}
}

func TestDiscoveryEngineSkipsUnreachablePeers(t *testing.T) {
	a := "mc://a.example.com:1"
	dialer := &networkDialer{nodes: map[string]QuorumSet{}}

	state := NewCrawlerState([]string{a}, nil)
	prober := NewProber(dialer, time.Second, nil)
	engine := NewEngine(state, prober, 4, nil, nil)

	if err := engine.Crawl(context.Background()); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}
	if len(state.Discovered()) != 0 {
		t.Fatalf("expected no nodes recorded for an unreachable-only crawl")
	}
	if !state.IsCrawled(a) {
		t.Fatalf("expected the unreachable peer to still be marked crawled")
	}
}
