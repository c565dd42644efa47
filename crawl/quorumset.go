package crawl

import (
	"crypto/ed25519"

	"github.com/trudi-group/mc-crawler/log"
	"github.com/trudi-group/mc-crawler/rlp"
)

// MemberKind tags which variant of QuorumSetMember is populated.
type MemberKind uint8

const (
	MemberNode MemberKind = iota
	MemberInner
)

// NodeMember is a direct validator reference inside a QuorumSet: a
// transport-level responder ID and the signing key it was last seen
// advertising.
type NodeMember struct {
	ResponderID string
	PublicKey   ed25519.PublicKey
}

// QuorumSetMember is either a NodeMember or a nested QuorumSet, never
// both. Modeled as an explicit tagged struct rather than an interface{}
// payload so equality stays structural. Its Inner pointer is not
// RLP-encodable as is; it is flattened to memberWire for the wire.
type QuorumSetMember struct {
	Kind  MemberKind
	Node  NodeMember
	Inner *QuorumSet
}

// QuorumSet is a validator's trust declaration: a threshold and an
// ordered list of members, each either a direct node or a nested
// (arbitrarily deep) inner quorum set.
type QuorumSet struct {
	Threshold uint64
	Members   []QuorumSetMember
}

// IsEmpty reports whether qs carries no trust declaration at all — the
// state recorded for a node that responded but said nothing parseable.
func (qs QuorumSet) IsEmpty() bool {
	return qs.Threshold == 0 && len(qs.Members) == 0
}

// WalkNodes visits every NodeMember transitively reachable in qs,
// descending into inner quorum sets. Inner sets themselves are never
// passed to fn — only the direct node members they (recursively)
// contain: inner quorum sets contribute their members but are not
// themselves peers.
func WalkNodes(qs QuorumSet, fn func(NodeMember)) {
	for _, m := range qs.Members {
		switch m.Kind {
		case MemberNode:
			fn(m.Node)
		case MemberInner:
			if m.Inner != nil {
				WalkNodes(*m.Inner, fn)
			}
		}
	}
}

// ConsensusMsg is the wire envelope a node's GetLatestMsg response
// carries, modeled after the scp_msg.quorum_set path of the original
// protocol's consensus message.
type ConsensusMsg struct {
	QuorumSet QuorumSet
}

// --- wire encoding -------------------------------------------------------
//
// rlp can't encode a Go interface{} or a type containing a nil-or-not
// pointer ambiguity directly, so QuorumSet's recursive-sum shape is
// flattened to a plain tree of structs for the wire and reinflated on
// decode. This is the same "envelope struct separate from the domain
// type" split kvstore's codec.go uses for tx payloads.

type nodeMemberWire struct {
	ResponderID string
	PublicKey   []byte
}

type memberWire struct {
	Kind  uint8
	Node  nodeMemberWire
	Inner quorumSetWire
}

type quorumSetWire struct {
	Threshold uint64
	Members   []memberWire
}

type consensusMsgWire struct {
	QuorumSet quorumSetWire
}

func toWire(qs QuorumSet) quorumSetWire {
	w := quorumSetWire{Threshold: qs.Threshold}
	for _, m := range qs.Members {
		mw := memberWire{Kind: uint8(m.Kind)}
		switch m.Kind {
		case MemberNode:
			mw.Node = nodeMemberWire{
				ResponderID: m.Node.ResponderID,
				PublicKey:   []byte(m.Node.PublicKey),
			}
		case MemberInner:
			if m.Inner != nil {
				mw.Inner = toWire(*m.Inner)
			}
		}
		w.Members = append(w.Members, mw)
	}
	return w
}

func fromWire(w quorumSetWire) QuorumSet {
	qs := QuorumSet{Threshold: w.Threshold}
	for _, mw := range w.Members {
		m := QuorumSetMember{Kind: MemberKind(mw.Kind)}
		switch m.Kind {
		case MemberNode:
			m.Node = NodeMember{
				ResponderID: mw.Node.ResponderID,
				PublicKey:   ed25519.PublicKey(append([]byte(nil), mw.Node.PublicKey...)),
			}
		case MemberInner:
			inner := fromWire(mw.Inner)
			m.Inner = &inner
		}
		qs.Members = append(qs.Members, m)
	}
	return qs
}

// EncodeConsensusMsg serializes a ConsensusMsg to the opaque binary
// payload a GetLatestMsg RPC response carries. Exposed primarily so
// tests and the prober's fakes can build realistic fixtures.
func EncodeConsensusMsg(msg ConsensusMsg) ([]byte, error) {
	return rlp.EncodeToBytes(&consensusMsgWire{QuorumSet: toWire(msg.QuorumSet)})
}

// DecodeQuorumSetPayload implements the Quorum-Set Decoder (C3): an
// empty payload yields (QuorumSet{}, false) with no warning (the node is
// up but has nothing to say yet); a non-empty but undecodable payload
// logs a warning and yields the same (QuorumSet{}, false); a decodable
// payload yields the quorum set it carried and true. This never panics
// and never returns an error to the caller — decode failure is always a
// normal, logged outcome.
func DecodeQuorumSetPayload(payload []byte, logger log.Logger) (QuorumSet, bool) {
	if len(payload) == 0 {
		return QuorumSet{}, false
	}
	var wire consensusMsgWire
	if err := rlp.DecodeBytes(payload, &wire); err != nil {
		if logger != nil {
			logger.Warn("could not decode consensus message payload", "err", err, "len", len(payload))
		}
		return QuorumSet{}, false
	}
	return fromWire(wire.QuorumSet), true
}
