// Package report projects the in-memory crawl model into the JSON
// shapes an operator or downstream tool consumes: the federation view
// and the full crawl report.
package report

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/trudi-group/mc-crawler/crawl"
	"github.com/trudi-group/mc-crawler/internal/geoip"
)

type geoDataJSON struct {
	CountryName string `json:"countryName"`
}

type quorumSetJSON struct {
	Threshold       uint64          `json:"threshold"`
	Validators      []string        `json:"validators"`
	InnerQuorumSets []quorumSetJSON `json:"innerQuorumSets,omitempty"`
}

type nodeJSON struct {
	PublicKey     string        `json:"publicKey"`
	Hostname      string        `json:"hostname"`
	Port          uint16        `json:"port"`
	Active        bool          `json:"active"`
	QuorumSet     quorumSetJSON `json:"quorumSet"`
	ISP           string        `json:"isp,omitempty"`
	GeoData       geoDataJSON   `json:"geoData"`
	LatestBlock   uint64        `json:"latestBlock"`
	LedgerVersion uint64        `json:"ledgerVersion"`
	MinimumFee    uint64        `json:"minimumFee"`
}

type federationViewJSON struct {
	Nodes []nodeJSON `json:"nodes"`
}

type nodeInfoJSON struct {
	TotalNodes     int `json:"totalNodes"`
	ReachableNodes int `json:"reachableNodes"`
}

type latestBlockJSON struct {
	Type   string `json:"type"`
	Block  uint64 `json:"block,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type crawlReportJSON struct {
	Timestamp   string          `json:"timestamp"`
	Duration    string          `json:"duration"`
	NodeInfo    nodeInfoJSON    `json:"nodeInfo"`
	Nodes       []nodeJSON      `json:"nodes"`
	LatestBlock latestBlockJSON `json:"latestBlock"`
	MinimumFee  uint64          `json:"minimumFee"`
}

func buildQuorumSetJSON(qs crawl.QuorumSet) quorumSetJSON {
	out := quorumSetJSON{Threshold: qs.Threshold, Validators: []string{}}
	for _, m := range qs.Members {
		switch m.Kind {
		case crawl.MemberNode:
			out.Validators = append(out.Validators, base64.StdEncoding.EncodeToString(m.Node.PublicKey))
		case crawl.MemberInner:
			if m.Inner != nil {
				out.InnerQuorumSets = append(out.InnerQuorumSets, buildQuorumSetJSON(*m.Inner))
			}
		}
	}
	return out
}

func buildNodeJSON(n crawl.CrawledNode, resolver geoip.Resolver) nodeJSON {
	return nodeJSON{
		PublicKey:     base64.StdEncoding.EncodeToString(n.PublicKey),
		Hostname:      n.Domain,
		Port:          n.Port,
		Active:        n.Online,
		QuorumSet:     buildQuorumSetJSON(n.QuorumSet),
		ISP:           resolver.LookupASN(n.Domain),
		GeoData:       geoDataJSON{CountryName: resolver.LookupCountry(n.Domain)},
		LatestBlock:   n.LatestBlock,
		LedgerVersion: n.NetworkBlockVersion,
		MinimumFee:    n.MinimumFee,
	}
}

func buildLatestBlockJSON(v crawl.LatestBlockVerdict) latestBlockJSON {
	switch v.Kind {
	case crawl.VerdictConsensus:
		return latestBlockJSON{Type: "consensus", Block: v.Block}
	default:
		return latestBlockJSON{Type: "disagreement", Reason: v.Reason}
	}
}

// WriteFederationView encodes nodes as the federation-view JSON shape.
func WriteFederationView(w io.Writer, nodes []crawl.CrawledNode, resolver geoip.Resolver) error {
	view := federationViewJSON{Nodes: make([]nodeJSON, 0, len(nodes))}
	for _, n := range nodes {
		view.Nodes = append(view.Nodes, buildNodeJSON(n, resolver))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// WriteCrawlReport encodes the full crawl-report JSON shape: summary
// metadata, the federation view, and both reconciliation verdicts.
func WriteCrawlReport(
	w io.Writer,
	start time.Time,
	duration time.Duration,
	reachableCount int,
	nodes []crawl.CrawledNode,
	latestBlock crawl.LatestBlockVerdict,
	minimumFee uint64,
	resolver geoip.Resolver,
) error {
	nodeJSONs := make([]nodeJSON, 0, len(nodes))
	for _, n := range nodes {
		nodeJSONs = append(nodeJSONs, buildNodeJSON(n, resolver))
	}
	report := crawlReportJSON{
		Timestamp: start.Format(time.RFC3339),
		Duration:  duration.String(),
		NodeInfo: nodeInfoJSON{
			TotalNodes:     len(nodes),
			ReachableNodes: reachableCount,
		},
		Nodes:       nodeJSONs,
		LatestBlock: buildLatestBlockJSON(latestBlock),
		MinimumFee:  minimumFee,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
