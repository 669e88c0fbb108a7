package dnswalk

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
)

// queryTimeout is the per-server UDP exchange timeout used on every path,
// including DNSKEY lookups performed while validating.
const queryTimeout = 1 * time.Second

// dnsPort is a var, not a const, so tests can point sendUDP at a loopback
// mock server bound to an unprivileged port.
var dnsPort = "53"

// buildQuery constructs a standard DNS query message for (name, qtype).
// When wantDNSSEC is true the DO bit is set via EDNS0 so authoritative
// servers include RRSIG (and DS/DNSKEY, where applicable) records.
func buildQuery(name string, qtype uint16, wantDNSSEC bool) *dns.Msg {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	if wantDNSSEC {
		m.SetEdns0(4096, true)
	}
	return m
}

// sendUDP sends m to serverIP over UDP with the given timeout and returns
// the parsed response. Any network error, timeout, or malformed response is
// reported as an error for this one server; the caller is responsible for
// moving on to the next candidate.
func sendUDP(ctx context.Context, m *dns.Msg, serverIP string, timeout time.Duration) (*dns.Msg, error) {
	c := &dns.Client{Net: "udp", Timeout: timeout}
	r, _, err := c.ExchangeContext(ctx, m, net.JoinHostPort(serverIP, dnsPort))
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("dnswalk: empty response from " + serverIP)
	}
	return r, nil
}

// wireSize returns the on-the-wire size of m in bytes, or 0 if m is nil.
func wireSize(m *dns.Msg) int {
	if m == nil {
		return 0
	}
	b, err := m.Pack()
	if err != nil {
		return 0
	}
	return len(b)
}
