// Package geoip resolves IPs against two offline flat-file databases
// (ASN, Country), the way a report run wants to annotate every
// discovered node without making a network call per lookup.
package geoip

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

const cacheSize = 4096

// entry is one parsed database line: a CIDR block and the value (an ASN
// label or a country name) it resolves to.
type entry struct {
	network *net.IPNet
	value   string
}

// DB is one loaded flat-file database, queried by containment.
type DB struct {
	entries []entry
	cache   *lru.ARCCache
}

// Load reads path, a file of "cidr value" lines (blank lines and
// "#"-prefixed comments skipped), into a DB ready for lookups. A
// missing or unparseable file is returned as an error so callers can
// turn "the operator asked for a report that needs this database and it
// isn't there" into a fatal startup error.
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: opening %s: %w", path, err)
	}
	defer f.Close()

	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("geoip: allocating cache: %w", err)
	}
	db := &DB{cache: cache}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.SplitN(text, " ", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("geoip: %s:%d: malformed line %q", path, line, text)
		}
		_, network, err := net.ParseCIDR(fields[0])
		if err != nil {
			return nil, fmt.Errorf("geoip: %s:%d: %w", path, line, err)
		}
		db.entries = append(db.entries, entry{network: network, value: strings.TrimSpace(fields[1])})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("geoip: reading %s: %w", path, err)
	}
	return db, nil
}

// Lookup returns the value of the narrowest matching network for ip, or
// "" if no entry contains it or ip doesn't parse.
func (db *DB) Lookup(ip string) string {
	if cached, ok := db.cache.Get(ip); ok {
		return cached.(string)
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	best := ""
	bestOnes := -1
	for _, e := range db.entries {
		if !e.network.Contains(parsed) {
			continue
		}
		ones, _ := e.network.Mask.Size()
		if ones > bestOnes {
			bestOnes = ones
			best = e.value
		}
	}
	db.cache.Add(ip, best)
	return best
}

// Resolver bundles the ASN and Country databases a report run consults.
// Either may be nil, in which case the corresponding Lookup call always
// returns "".
type Resolver struct {
	ASN     *DB
	Country *DB
}

// LookupASN resolves ip's autonomous system label.
func (r Resolver) LookupASN(ip string) string {
	if r.ASN == nil {
		return ""
	}
	return r.ASN.Lookup(ip)
}

// LookupCountry resolves ip's country.
func (r Resolver) LookupCountry(ip string) string {
	if r.Country == nil {
		return ""
	}
	return r.Country.Lookup(ip)
}
