package dnswalk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QueryLog records one exchange with a single upstream server (or a
// cache/key-store hit standing in for one).
type QueryLog struct {
	Server      string
	Zone        string
	CacheHit    bool
	DNSSECValid bool
	Referral    bool
	RTT         time.Duration
	Error       string `json:",omitempty"`
}

// LookupLog records a full iterative resolve: every QueryLog it took to
// answer one Request, tagged with a request id so a CLI invocation that
// issues several top-level lookups can still tell them apart in its output.
type LookupLog struct {
	RequestID string
	Name      string
	Type      string
	Started   time.Time
	Latency   time.Duration
	Queries   []QueryLog
}

// newLookupLog starts a LookupLog for (name, qtype), stamped with a fresh
// request id.
func newLookupLog(name, qtype string) *LookupLog {
	return &LookupLog{
		RequestID: uuid.NewString(),
		Name:      name,
		Type:      qtype,
		Started:   time.Now(),
	}
}

func (ll *LookupLog) record(q QueryLog) {
	ll.Queries = append(ll.Queries, q)
}

func (ll *LookupLog) finish() {
	ll.Latency = time.Since(ll.Started)
}

// String renders a LookupLog as a single line for plain-text diagnostics.
func (ll *LookupLog) String() string {
	chain := ""
	for _, q := range ll.Queries {
		source := q.Server
		if q.CacheHit {
			source = "keystore"
		}
		errPart := ""
		if q.Error != "" {
			errPart = fmt.Sprintf(" error=%q", q.Error)
		}
		if chain != "" {
			chain += "->"
		}
		chain += fmt.Sprintf("[server=%s zone=%q dnssec=%t referral=%t rtt=%s%s]",
			source, q.Zone, q.DNSSECValid, q.Referral, q.RTT, errPart)
	}
	return fmt.Sprintf("id=%s query=%q/%s latency=%s %s", ll.RequestID, ll.Name, ll.Type, ll.Latency, chain)
}
