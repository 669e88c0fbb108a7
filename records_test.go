package dnswalk

import (
	"net"
	"testing"

	"github.com/miekg/dns"
)

func TestExtractRecords(t *testing.T) {
	section := []dns.RR{
		&dns.A{Hdr: dns.RR_Header{Name: "a.com."}, A: net.IP{1, 2, 3, 4}},
		&dns.NS{Hdr: dns.RR_Header{Name: "a.com."}, Ns: "ns1.a.com."},
		&dns.CNAME{Hdr: dns.RR_Header{Name: "b.com."}, Target: "a.com."},
		&dns.MX{Hdr: dns.RR_Header{Name: "a.com."}, Preference: 10, Mx: "mail.a.com."},
		&dns.SOA{Hdr: dns.RR_Header{Name: "a.com."}, Ns: "ns1.a.com.", Mbox: "root.a.com."},
		&dns.RRSIG{Hdr: dns.RR_Header{Name: "a.com."}},
	}

	got := extractRecords(section)
	if len(got) != 5 {
		t.Fatalf("extractRecords returned %d records, want 5 (RRSIG should be dropped): %+v", len(got), got)
	}
	if got[0].Type != TypeA || got[0].Value != "1.2.3.4" {
		t.Fatalf("unexpected A record: %+v", got[0])
	}
	if got[3].Type != TypeMX || got[3].Preference != 10 || got[3].Value != "mail.a.com." {
		t.Fatalf("unexpected MX record: %+v", got[3])
	}
	if got[3].String() != "MX 10 mail.a.com." {
		t.Fatalf("MX rendering = %q, want %q", got[3].String(), "MX 10 mail.a.com.")
	}
}

func TestExtractRecordsIdempotent(t *testing.T) {
	section := []dns.RR{
		&dns.A{Hdr: dns.RR_Header{Name: "a.com."}, A: net.IP{1, 2, 3, 4}},
	}
	first := extractRecords(section)
	second := extractRecords(section)
	if len(first) != len(second) || first[0] != second[0] {
		t.Fatalf("extractRecords was not idempotent: %+v vs %+v", first, second)
	}
}

func TestExtractRRSetFiltersByOwnerAndType(t *testing.T) {
	in := []dns.RR{
		&dns.A{Hdr: dns.RR_Header{Name: "a.com.", Rrtype: dns.TypeA}},
		&dns.A{Hdr: dns.RR_Header{Name: "b.com.", Rrtype: dns.TypeA}},
		&dns.NS{Hdr: dns.RR_Header{Name: "a.com.", Rrtype: dns.TypeNS}},
	}

	got := extractRRSet(in, "a.com.", dns.TypeA)
	if len(got) != 1 || got[0].Header().Name != "a.com." {
		t.Fatalf("extractRRSet with owner filter returned %+v", got)
	}

	got = extractRRSet(in, "", dns.TypeA)
	if len(got) != 2 {
		t.Fatalf("extractRRSet with no owner filter returned %d records, want 2", len(got))
	}
}

func TestGlueAddresses(t *testing.T) {
	authority := []dns.RR{&dns.NS{Hdr: dns.RR_Header{Name: "example."}, Ns: "ns1.example."}}
	extra := []dns.RR{
		&dns.A{Hdr: dns.RR_Header{Name: "ns1.example."}, A: net.IP{9, 9, 9, 9}},
		&dns.A{Hdr: dns.RR_Header{Name: "unrelated."}, A: net.IP{1, 1, 1, 1}},
	}

	glue := glueAddresses(extra, nsNames(authority))
	if len(glue) != 1 || glue[0] != "9.9.9.9" {
		t.Fatalf("glueAddresses returned %v, want [9.9.9.9]", glue)
	}
}
