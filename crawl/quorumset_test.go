package crawl

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/trudi-group/mc-crawler/log"
)

func samplePublicKey(seed byte) ed25519.PublicKey {
	pub := make([]byte, ed25519.PublicKeySize)
	for i := range pub {
		pub[i] = seed
	}
	return pub
}

func TestConsensusMsgRoundTrip(t *testing.T) {
	inner := QuorumSet{
		Threshold: 2,
		Members: []QuorumSetMember{
			{Kind: MemberNode, Node: NodeMember{ResponderID: "b.example.com:1", PublicKey: samplePublicKey(2)}},
			{Kind: MemberNode, Node: NodeMember{ResponderID: "c.example.com:1", PublicKey: samplePublicKey(3)}},
		},
	}
	qs := QuorumSet{
		Threshold: 1,
		Members: []QuorumSetMember{
			{Kind: MemberNode, Node: NodeMember{ResponderID: "a.example.com:1", PublicKey: samplePublicKey(1)}},
			{Kind: MemberInner, Inner: &inner},
		},
	}
	payload, err := EncodeConsensusMsg(ConsensusMsg{QuorumSet: qs})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, found := DecodeQuorumSetPayload(payload, nil)
	if !found {
		t.Fatalf("expected decode to succeed")
	}
	if decoded.Threshold != 1 || len(decoded.Members) != 2 {
		t.Fatalf("unexpected decoded top level: %+v", decoded)
	}
	if decoded.Members[1].Inner == nil || decoded.Members[1].Inner.Threshold != 2 {
		t.Fatalf("inner quorum set not preserved: %+v", decoded.Members[1])
	}
	if !bytes.Equal(decoded.Members[0].Node.PublicKey, samplePublicKey(1)) {
		t.Fatalf("public key not preserved")
	}
}

func TestDecodeQuorumSetPayloadEmpty(t *testing.T) {
	qs, found := DecodeQuorumSetPayload(nil, log.Root())
	if found || !qs.IsEmpty() {
		t.Fatalf("expected empty payload to yield (zero value, false)")
	}
}

func TestDecodeQuorumSetPayloadCorrupt(t *testing.T) {
	qs, found := DecodeQuorumSetPayload([]byte{0xff, 0x01, 0x02}, log.Root())
	if found || !qs.IsEmpty() {
		t.Fatalf("expected corrupt payload to yield (zero value, false), got (%+v, %v)", qs, found)
	}
}

func TestWalkNodesDescendsIntoInnerSets(t *testing.T) {
	inner := QuorumSet{
		Threshold: 1,
		Members: []QuorumSetMember{
			{Kind: MemberNode, Node: NodeMember{ResponderID: "deep.example.com:1"}},
		},
	}
	qs := QuorumSet{
		Threshold: 1,
		Members: []QuorumSetMember{
			{Kind: MemberNode, Node: NodeMember{ResponderID: "top.example.com:1"}},
			{Kind: MemberInner, Inner: &inner},
		},
	}
	var seen []string
	WalkNodes(qs, func(nm NodeMember) { seen = append(seen, nm.ResponderID) })
	if len(seen) != 2 || seen[0] != "top.example.com:1" || seen[1] != "deep.example.com:1" {
		t.Fatalf("unexpected walk order: %v", seen)
	}
}
