package dnswalk

import (
	"testing"

	"github.com/jmhodges/clock"
	"github.com/miekg/dns"
)

func TestKeyStoreGetMissing(t *testing.T) {
	ks := NewKeyStore(clock.NewFake())
	if got := ks.Get("example."); got != nil {
		t.Fatalf("Get on empty store returned %v, want nil", got)
	}
	if ks.has("example.") {
		t.Fatal("has reported true for a zone never put")
	}
}

func TestKeyStorePutGetRemove(t *testing.T) {
	ks := NewKeyStore(clock.NewFake())
	rrset := []dns.RR{&dns.DNSKEY{Hdr: dns.RR_Header{Name: "example."}, Flags: 257}}

	ks.put("example.", rrset)
	if !ks.has("example.") {
		t.Fatal("has reported false right after put")
	}
	got := ks.Get("example.")
	if len(got) != 1 || got[0] != rrset[0] {
		t.Fatalf("Get returned %v, want %v", got, rrset)
	}

	ks.remove("example.")
	if ks.has("example.") {
		t.Fatal("has reported true after remove")
	}
	if got := ks.Get("example."); got != nil {
		t.Fatalf("Get after remove returned %v, want nil", got)
	}
}

func TestKeyStoreIndependentZones(t *testing.T) {
	ks := NewKeyStore(clock.NewFake())
	root := []dns.RR{&dns.DNSKEY{Hdr: dns.RR_Header{Name: "."}, Flags: 257}}
	child := []dns.RR{&dns.DNSKEY{Hdr: dns.RR_Header{Name: "example."}, Flags: 257}}

	ks.put(".", root)
	ks.put("example.", child)
	ks.remove("example.")

	if !ks.has(".") {
		t.Fatal("removing a child zone evicted the root entry")
	}
}
