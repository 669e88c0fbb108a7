package dnswalk

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/miekg/dns"
	"github.com/nsmithuk/dnssec-root-anchors-go/anchors"
)

// MaxReferrals bounds how many steps a single resolve takes before giving
// up. Each step sends one query; referral hops, CNAME restarts and the final
// answer all count as steps.
var MaxReferrals = 10

// Resolver walks the DNS delegation hierarchy from a fixed set of root
// servers down to an authoritative answer, optionally validating every
// delegation it follows against ks.
type Resolver struct {
	rootServers []string
	ks          *KeyStore

	// Logger, if non-nil, receives one JSON-encoded LookupLog line per
	// resolve call.
	Logger *log.Logger
}

// NewResolver returns a Resolver that starts every resolution at
// rootServers and anchors DNSSEC validation in ks. Call Bootstrap before
// using it in validating mode.
func NewResolver(rootServers []string, ks *KeyStore) *Resolver {
	return &Resolver{rootServers: rootServers, ks: ks}
}

// Bootstrap seeds the root zone's DNSKEY RRset into the key store: it
// fetches "." DNSKEY from the configured root servers and anchors it
// against the IANA root trust anchor, using the same self-signature and
// DS-anchoring machinery as any other zone.
func (r *Resolver) Bootstrap(ctx context.Context) error {
	m := buildQuery(".", dns.TypeDNSKEY, true)
	msg, _, _, err := r.exchangeAny(ctx, m, r.rootServers)
	if err != nil {
		return err
	}
	if verr := r.verifyAndAnchor(".", msg, anchors.GetValid()); verr != nil {
		return verr
	}
	return nil
}

// Resolve performs a plain iterative resolution of req. It always returns
// a Response; total failure yields one with empty record lists and a zero
// message size.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Response, error) {
	return r.resolve(ctx, req, false)
}

// ResolveValidating performs the same walk as Resolve but validates every
// response the walk itself receives. A validation failure halts the walk
// and is attached to the returned Response's DNSSECError field rather than
// returned as an error. Addresses for NS names that a referral gives
// without glue are looked up with the plain Resolve, so the responses to
// those lookups are not validated.
func (r *Resolver) ResolveValidating(ctx context.Context, req Request) (*Response, error) {
	return r.resolve(ctx, req, true)
}

func (r *Resolver) resolve(ctx context.Context, req Request, validating bool) (*Response, error) {
	if !req.Valid() {
		return emptyResponse(req), ErrInvalidRequest
	}

	started := time.Now()
	ll := newLookupLog(req.Name, req.Type)
	defer func() {
		ll.finish()
		r.logLookup(ll)
	}()

	name := dns.Fqdn(req.Name)
	qtype := req.dnsType()
	servers := r.rootServers

	var answerAcc, authorityAcc []dns.RR
	var msgSize int

	finish := func(resp *Response) *Response {
		resp.QueryTimeMS = time.Since(started).Milliseconds()
		resp.When = time.Now().UTC().Format(time.RFC3339)
		resp.MsgSize = msgSize
		return resp
	}
	fail := func(err error) (*Response, error) {
		resp := finish(emptyResponse(req))
		resp.MsgSize = 0
		return resp, err
	}

	for i := 0; i < MaxReferrals; i++ {
		m := buildQuery(name, qtype, validating)
		msg, server, rtt, err := r.exchangeAny(ctx, m, servers)
		ql := QueryLog{Server: server, RTT: rtt}
		if err != nil {
			ql.Error = err.Error()
			ll.record(ql)
			return fail(err)
		}
		msgSize = wireSize(msg)

		if validating {
			if verr := r.validate(ctx, msg); verr != nil {
				ql.Error = verr.Error()
				ll.record(ql)
				resp := emptyResponse(req)
				resp.DNSSECError = verr
				return finish(resp), nil
			}
			ql.DNSSECValid = true
		}
		ll.record(ql)

		if len(msg.Answer) == 0 {
			if len(extractRRSet(msg.Ns, "", dns.TypeSOA)) > 0 {
				authorityAcc = append(authorityAcc, msg.Ns...)
				return finish(buildResponse(req, answerAcc, authorityAcc)), nil
			}

			if qtype == dns.TypeA || len(msg.Extra) > 0 {
				next, err := r.nextHopServers(ctx, msg.Ns, msg.Extra)
				if err != nil {
					return fail(err)
				}
				servers = next
				ll.Queries[len(ll.Queries)-1].Referral = true
				continue
			}
		}

		answerAcc = append(answerAcc, msg.Answer...)
		authorityAcc = append(authorityAcc, msg.Ns...)

		if cname, ok := isSingleCNAME(msg.Answer); ok {
			name = cname.Target
			qtype = dns.TypeA
			servers = r.rootServers
			continue
		}

		return finish(buildResponse(req, answerAcc, authorityAcc)), nil
	}

	return fail(ErrTooManyReferrals)
}

// exchangeAny tries each server in order and returns the first response
// received, along with which server answered and how long it took.
func (r *Resolver) exchangeAny(ctx context.Context, m *dns.Msg, servers []string) (*dns.Msg, string, time.Duration, error) {
	for _, s := range servers {
		start := time.Now()
		resp, err := sendUDP(ctx, m, s, queryTimeout)
		if err == nil {
			return resp, s, time.Since(start), nil
		}
	}
	return nil, "", 0, ErrNoResponse
}

// nextHopServers computes the candidate IPs for the next referral hop:
// glue A records in extra are preferred; failing that, each NS name in
// authority is resolved via a fresh recursive Resolve.
func (r *Resolver) nextHopServers(ctx context.Context, authority, extra []dns.RR) ([]string, error) {
	names := nsNames(authority)
	if len(names) == 0 {
		return nil, ErrNoNSAuthorities
	}

	if glue := glueAddresses(extra, names); len(glue) > 0 {
		return glue, nil
	}

	var ips []string
	for name := range names {
		resp, err := r.Resolve(ctx, Request{Name: name, Type: TypeA})
		if err != nil {
			continue
		}
		for _, rec := range resp.Answer {
			if rec.Type == TypeA {
				ips = append(ips, rec.Value)
			}
		}
	}
	if len(ips) == 0 {
		return nil, ErrNoAuthorityAddress
	}
	return ips, nil
}

func isSingleCNAME(answer []dns.RR) (*dns.CNAME, bool) {
	if len(answer) != 1 {
		return nil, false
	}
	c, ok := answer[0].(*dns.CNAME)
	return c, ok
}

func buildResponse(req Request, answer, authority []dns.RR) *Response {
	return &Response{
		Name:      req.Name,
		Type:      req.Type,
		Answer:    extractRecords(answer),
		Authority: extractRecords(authority),
	}
}

func (r *Resolver) logLookup(ll *LookupLog) {
	if r.Logger == nil {
		return
	}
	b, err := json.Marshal(ll)
	if err != nil {
		r.Logger.Println(ll.String())
		return
	}
	r.Logger.Println(string(b))
}
