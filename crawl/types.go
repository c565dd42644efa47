package crawl

import (
	"crypto/ed25519"
	"fmt"
)

// CrawledNode is one validator observed during a crawl. Identity inside
// the working set is (Domain, Port); a node is inserted at most once
// per crawl.
type CrawledNode struct {
	PublicKey           ed25519.PublicKey
	Domain              string
	Port                uint16
	QuorumSet           QuorumSet
	Online              bool
	LatestBlock         uint64
	NetworkBlockVersion uint64
	MinimumFee          uint64
}

// Key identifies a node by (domain, port), the working set's identity.
func (n CrawledNode) Key() NodeKey { return NodeKey{Domain: n.Domain, Port: n.Port} }

// PeerURI returns the canonical mc://domain:port address for this node.
func (n CrawledNode) PeerURI() string {
	return BuildPeerURI(fmt.Sprintf("%s:%d", n.Domain, n.Port))
}

// NodeKey is the (domain, port) identity of a crawled node.
type NodeKey struct {
	Domain string
	Port   uint16
}

func (k NodeKey) String() string { return fmt.Sprintf("%s:%d", k.Domain, k.Port) }

// LatestBlockVerdictKind tags the variant of a LatestBlockVerdict.
type LatestBlockVerdictKind int

const (
	VerdictNone LatestBlockVerdictKind = iota
	VerdictConsensus
	VerdictDisagreement
)

// LatestBlockVerdict is the Federation Reconciler's network-wide verdict
// on the latest block: no data, an agreed block, or a disagreement
// carrying the reason it couldn't be resolved.
type LatestBlockVerdict struct {
	Kind   LatestBlockVerdictKind
	Block  uint64
	Reason string
}

func ConsensusVerdict(block uint64) LatestBlockVerdict {
	return LatestBlockVerdict{Kind: VerdictConsensus, Block: block}
}

func DisagreementVerdict(reason string) LatestBlockVerdict {
	return LatestBlockVerdict{Kind: VerdictDisagreement, Reason: reason}
}
