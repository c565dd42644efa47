package crawl

import (
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"

	"github.com/trudi-group/mc-crawler/log"
)

// CrawlerState is the shared, mutable working set a single crawl run
// builds up. to_crawl and crawled are deckarep/golang-set sets of
// PeerURI strings (golang-set's Set is itself safe for concurrent use);
// discovered is a keyed record store golang-set's value semantics don't
// fit, so it gets its own mutex.
type CrawlerState struct {
	RunID uuid.UUID

	bootstrapPeers mapset.Set
	toCrawl        mapset.Set
	crawled        mapset.Set

	mu             sync.Mutex
	discovered     map[NodeKey]CrawledNode
	reachableCount int
	crawlDuration  time.Duration
	crawlTimestamp time.Time

	log log.Logger
}

// NewCrawlerState seeds a fresh CrawlerState from a list of bootstrap
// PeerURIs. Malformed entries are rejected and logged rather than
// returned as an error — a single bad line in a bootstrap file must not
// prevent the rest of the crawl from starting.
func NewCrawlerState(bootstrapURIs []string, logger log.Logger) *CrawlerState {
	if logger == nil {
		logger = log.Root()
	}
	s := &CrawlerState{
		RunID:          uuid.New(),
		bootstrapPeers: mapset.NewSet(),
		toCrawl:        mapset.NewSet(),
		crawled:        mapset.NewSet(),
		discovered:     make(map[NodeKey]CrawledNode),
		log:            logger,
	}
	for _, raw := range bootstrapURIs {
		if _, _, ok := ParsePeerURI(raw); !ok {
			s.log.Warn("rejecting malformed bootstrap peer", "uri", raw)
			continue
		}
		s.bootstrapPeers.Add(raw)
		s.toCrawl.Add(raw)
	}
	return s
}

// BootstrapPeers returns the immutable set of bootstrap PeerURIs this
// crawl was seeded with.
func (s *CrawlerState) BootstrapPeers() []string {
	return stringSlice(s.bootstrapPeers)
}

// Snapshot returns the current contents of to_crawl as a stable slice,
// the round boundary the Discovery Engine's fixed-point loop iterates
// over.
func (s *CrawlerState) Snapshot() []string {
	return stringSlice(s.toCrawl)
}

// ToCrawlEmpty reports whether the fixed point has been reached.
func (s *CrawlerState) ToCrawlEmpty() bool {
	return s.toCrawl.Cardinality() == 0
}

// MarkCrawled moves uri from to_crawl into crawled. Safe to call more
// than once for the same uri.
func (s *CrawlerState) MarkCrawled(uri string) {
	s.toCrawl.Remove(uri)
	s.crawled.Add(uri)
}

// IsCrawled reports whether uri has already been probed this run.
func (s *CrawlerState) IsCrawled(uri string) bool {
	return s.crawled.Contains(uri)
}

// Enqueue adds uri to to_crawl unless it has already been crawled.
// Returns whether it was newly added (golang-set already dedups no-ops,
// this is informational for callers that want to log discovery of a
// genuinely new peer).
func (s *CrawlerState) Enqueue(uri string) bool {
	if s.crawled.Contains(uri) {
		return false
	}
	return s.toCrawl.Add(uri)
}

// AddDiscovered records node, keyed by (domain, port). A node already
// present for that key is left untouched — first write wins, matching
// the "inserted at most once" working-set identity rule.
func (s *CrawlerState) AddDiscovered(node CrawledNode) {
	key := node.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.discovered[key]; exists {
		return
	}
	s.discovered[key] = node
}

// IncrementReachable bumps the count of reachable nodes. The Discovery
// Engine calls it once for each node whose GetLatestMsg call succeeded.
func (s *CrawlerState) IncrementReachable() {
	s.mu.Lock()
	s.reachableCount++
	s.mu.Unlock()
}

// ReachableCount returns the number of nodes counted reachable this run.
func (s *CrawlerState) ReachableCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reachableCount
}

// Discovered returns a snapshot of every node recorded so far, ordered
// by (domain, port) so reconciliation is deterministic regardless of Go
// map iteration order.
func (s *CrawlerState) Discovered() []CrawledNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CrawledNode, 0, len(s.discovered))
	for _, n := range s.discovered {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Port < out[j].Port
	})
	return out
}

// SetCrawlTimes records the wall-clock start time and the elapsed
// duration of the completed crawl.
func (s *CrawlerState) SetCrawlTimes(start time.Time, duration time.Duration) {
	s.mu.Lock()
	s.crawlTimestamp = start
	s.crawlDuration = duration
	s.mu.Unlock()
}

// CrawlTimes returns the recorded start time and duration.
func (s *CrawlerState) CrawlTimes() (time.Time, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crawlTimestamp, s.crawlDuration
}

func stringSlice(set mapset.Set) []string {
	items := set.ToSlice()
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
