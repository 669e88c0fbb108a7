package dnswalk

import (
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/jmhodges/clock"
)

// keyEntry is a zone's currently-trusted DNSKEY RRset, timestamped for
// diagnostics (the store itself never expires an entry: see KeyStore).
type keyEntry struct {
	rrset   []dns.RR
	addedAt time.Time
}

// KeyStore is the process-lifetime map from zone owner name to the DNSKEY
// RRset currently trusted for that zone. It is constructed once and passed
// explicitly into the Resolver that uses it, rather than held as a
// package-level singleton, so multiple resolvers can run with independent
// trust state in the same process.
//
// The root entry "." is seeded by Bootstrap and is never evicted. Every
// other entry is added only after fetchAndValidateKeys (dnssec.go) has
// verified both the zone's DNSKEY self-signature and its DS anchor in the
// parent zone.
type KeyStore struct {
	mu    sync.Mutex
	clk   clock.Clock
	zones map[string]keyEntry
}

// NewKeyStore returns an empty KeyStore. Call Bootstrap before using it for
// validation so the root zone has a trusted entry.
func NewKeyStore(clk clock.Clock) *KeyStore {
	if clk == nil {
		clk = clock.Default()
	}
	return &KeyStore{clk: clk, zones: make(map[string]keyEntry)}
}

// Get returns the trusted DNSKEY RRset for zone, or nil if none is stored.
func (ks *KeyStore) Get(zone string) []dns.RR {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	e, present := ks.zones[zone]
	if !present {
		return nil
	}
	return e.rrset
}

// put tentatively (or permanently) records rrset as the trusted keys for
// zone. dnssec.go relies on being able to remove() this entry again if the
// self-signature check that follows a put fails.
func (ks *KeyStore) put(zone string, rrset []dns.RR) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.zones[zone] = keyEntry{rrset: rrset, addedAt: ks.clk.Now()}
}

// remove discards any trusted entry for zone.
func (ks *KeyStore) remove(zone string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	delete(ks.zones, zone)
}

// has reports whether zone has a trusted entry.
func (ks *KeyStore) has(zone string) bool {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	_, present := ks.zones[zone]
	return present
}
