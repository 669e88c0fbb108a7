package dnswalk

import "github.com/miekg/dns"

// extractRecords converts a section of a DNS message into a normalized,
// flat list of ResponseRecords. Records whose type isn't one of
// {A, NS, MX, CNAME, SOA} are dropped; unknown types and DNSSEC bookkeeping
// records are never surfaced to callers of the plain record-extraction
// path. It does no mutation of its input and is a pure function of each
// record's fields, so calling it twice on the same section always produces
// an equal list.
func extractRecords(section []dns.RR) []ResponseRecord {
	out := make([]ResponseRecord, 0, len(section))
	for _, rr := range section {
		switch v := rr.(type) {
		case *dns.A:
			out = append(out, ResponseRecord{Type: TypeA, Value: v.A.String()})
		case *dns.NS:
			out = append(out, ResponseRecord{Type: TypeNS, Value: v.Ns})
		case *dns.CNAME:
			out = append(out, ResponseRecord{Type: "CNAME", Value: v.Target})
		case *dns.MX:
			out = append(out, ResponseRecord{Type: TypeMX, Value: v.Mx, Preference: v.Preference})
		case *dns.SOA:
			out = append(out, ResponseRecord{Type: "SOA", Value: v.Ns + " " + v.Mbox})
		}
	}
	return out
}

// extractRRSet returns every record in in matching one of types t, optionally
// filtered to owner name name ("" matches any owner).
func extractRRSet(in []dns.RR, name string, t ...uint16) []dns.RR {
	wanted := make(map[uint16]struct{}, len(t))
	for _, rt := range t {
		wanted[rt] = struct{}{}
	}
	out := []dns.RR{}
	for _, rr := range in {
		if _, present := wanted[rr.Header().Rrtype]; !present {
			continue
		}
		if name != "" && rr.Header().Name != name {
			continue
		}
		out = append(out, rr)
	}
	return out
}

// glueAddresses returns the A records in extras whose owner name is one of
// nsNames, as plain dotted-quad strings.
func glueAddresses(extras []dns.RR, nsNames map[string]struct{}) []string {
	var out []string
	for _, rr := range extras {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}
		if _, present := nsNames[a.Header().Name]; present {
			out = append(out, a.A.String())
		}
	}
	return out
}

// nsNames returns the set of NS target names found in the authority section.
func nsNames(authority []dns.RR) map[string]struct{} {
	out := make(map[string]struct{})
	for _, rr := range authority {
		if ns, ok := rr.(*dns.NS); ok {
			out[ns.Ns] = struct{}{}
		}
	}
	return out
}
