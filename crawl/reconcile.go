package crawl

import "crypto/ed25519"

// Reconcile is the Federation Reconciler (C5): it attributes a public
// key to every discovered node that didn't offer one directly, then
// computes the network's latest-block and minimum-fee verdicts. It
// never mutates CrawlerState; it operates on and returns a snapshot.
func Reconcile(state *CrawlerState) ([]CrawledNode, LatestBlockVerdict, uint64) {
	nodes := state.Discovered()
	attributed := attributeKeys(nodes)
	verdict := latestBlockVerdict(attributed, state.BootstrapPeers())
	fee := minimumFeeVerdict(attributed)
	return attributed, verdict, fee
}

// attributeKeys fills in PublicKey for any node that didn't advertise
// one itself, by searching every other discovered node's quorum set for
// a NodeMember whose derived PeerURI matches. First match wins;
// subsequent matches for the same node are ignored.
func attributeKeys(nodes []CrawledNode) []CrawledNode {
	out := make([]CrawledNode, len(nodes))
	copy(out, nodes)
	for i := range out {
		if len(out[i].PublicKey) != 0 {
			continue
		}
		ref := out[i].PeerURI()
		found := false
		for j := range out {
			if j == i || found {
				continue
			}
			WalkNodes(out[j].QuorumSet, func(nm NodeMember) {
				if found {
					return
				}
				if BuildPeerURI(nm.ResponderID) == ref {
					out[i].PublicKey = ed25519.PublicKey(append([]byte(nil), nm.PublicKey...))
					found = true
				}
			})
		}
	}
	return out
}

// latestBlockVerdict tallies each node's latest_block claim into a
// histogram over discovered. A unique mode is Consensus. A tie is
// broken by restricting the tally to nodes whose (domain, port) matches
// a bootstrap PeerURI: if none match, the verdict is an unresolved
// Disagreement; if the matching nodes report no non-zero block at all,
// the verdict is also a Disagreement; if their non-zero claims all
// agree, that block is the Consensus; otherwise the trusted nodes
// disagree and the verdict says so.
func latestBlockVerdict(nodes []CrawledNode, bootstrapURIs []string) LatestBlockVerdict {
	if len(nodes) == 0 {
		return DisagreementVerdict("no nodes discovered")
	}

	hist := make(map[uint64]int, len(nodes))
	for _, n := range nodes {
		hist[n.LatestBlock]++
	}

	best := 0
	var modes []uint64
	for blk, count := range hist {
		switch {
		case count > best:
			best = count
			modes = []uint64{blk}
		case count == best:
			modes = append(modes, blk)
		}
	}
	if len(modes) == 1 {
		return ConsensusVerdict(modes[0])
	}

	bootstrapKeys := make(map[NodeKey]bool, len(bootstrapURIs))
	for _, uri := range bootstrapURIs {
		host, port, ok := ParsePeerURI(uri)
		if !ok {
			continue
		}
		bootstrapKeys[NodeKey{Domain: host, Port: port}] = true
	}

	var matched bool
	var trusted []uint64
	for _, n := range nodes {
		if !bootstrapKeys[n.Key()] {
			continue
		}
		matched = true
		if n.LatestBlock != 0 {
			trusted = append(trusted, n.LatestBlock)
		}
	}
	if !matched {
		return DisagreementVerdict("unexpected: no crawled node matches a bootstrap peer")
	}
	if len(trusted) == 0 {
		return DisagreementVerdict("unexpected: matching bootstrap peers report no known block")
	}
	first := trusted[0]
	for _, v := range trusted[1:] {
		if v != first {
			return DisagreementVerdict("trusted nodes discordant")
		}
	}
	return ConsensusVerdict(first)
}

// minimumFeeVerdict returns the network's minimum fee if every
// discovered node agrees on it, or 0 if there's no unanimous value.
func minimumFeeVerdict(nodes []CrawledNode) uint64 {
	if len(nodes) == 0 {
		return 0
	}
	fee := nodes[0].MinimumFee
	for _, n := range nodes[1:] {
		if n.MinimumFee != fee {
			return 0
		}
	}
	return fee
}
