package dnswalk

import (
	"crypto/rsa"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/miekg/dns"
)

func signedDNSKEY(t *testing.T, name string) (*dns.DNSKEY, *dns.RRSIG, *rsa.PrivateKey) {
	t.Helper()
	ksk := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: name, Rrtype: dns.TypeDNSKEY},
		Algorithm: dns.RSASHA256,
		Flags:     257,
		Protocol:  3,
	}
	pk, err := ksk.Generate(512)
	if err != nil {
		t.Fatalf("generating KSK: %s", err)
	}
	rk := pk.(*rsa.PrivateKey)

	sig := &dns.RRSIG{
		Hdr:        dns.RR_Header{Name: name, Rrtype: dns.TypeRRSIG},
		TypeCovered: dns.TypeDNSKEY,
		Algorithm:  dns.RSASHA256,
		KeyTag:     ksk.KeyTag(),
		SignerName: name,
		Inception:  uint32(time.Now().Add(-time.Hour).Unix()),
		Expiration: uint32(time.Now().Add(time.Hour).Unix()),
	}
	if err := sig.Sign(rk, []dns.RR{ksk}); err != nil {
		t.Fatalf("signing DNSKEY RRset: %s", err)
	}
	return ksk, sig, rk
}

func TestVerifyAndAnchorSuccess(t *testing.T) {
	ksk, sig, _ := signedDNSKEY(t, "example.")
	msg := &dns.Msg{Answer: []dns.RR{ksk, sig}}
	parentDS := []*dns.DS{ksk.ToDS(dns.SHA256)}

	r := &Resolver{ks: NewKeyStore(clock.NewFake())}
	if verr := r.verifyAndAnchor("example.", msg, parentDS); verr != nil {
		t.Fatalf("verifyAndAnchor failed on a valid self-signed, DS-anchored zone: %s", verr)
	}
	if !r.ks.has("example.") {
		t.Fatal("verifyAndAnchor succeeded but did not record the zone's trusted keys")
	}
}

func TestVerifyAndAnchorBadSignature(t *testing.T) {
	ksk, sig, _ := signedDNSKEY(t, "example.")
	sig.Signature = ""
	msg := &dns.Msg{Answer: []dns.RR{ksk, sig}}
	parentDS := []*dns.DS{ksk.ToDS(dns.SHA256)}

	r := &Resolver{ks: NewKeyStore(clock.NewFake())}
	verr := r.verifyAndAnchor("example.", msg, parentDS)
	if verr == nil {
		t.Fatal("verifyAndAnchor accepted a tampered DNSKEY self-signature")
	}
	if verr.Code != ValidationCodeDNSKEYSignatureInvalid {
		t.Fatalf("verr.Code = %v, want ValidationCodeDNSKEYSignatureInvalid", verr.Code)
	}
	if r.ks.has("example.") {
		t.Fatal("a failed self-signature check left a tentative key store entry behind")
	}
}

func TestVerifyAndAnchorDSMismatch(t *testing.T) {
	ksk, sig, _ := signedDNSKEY(t, "example.")
	msg := &dns.Msg{Answer: []dns.RR{ksk, sig}}
	badDS := ksk.ToDS(dns.SHA256)
	badDS.Digest = "0000000000000000000000000000000000000000"

	r := &Resolver{ks: NewKeyStore(clock.NewFake())}
	verr := r.verifyAndAnchor("example.", msg, []*dns.DS{badDS})
	if verr == nil {
		t.Fatal("verifyAndAnchor accepted a KSK that doesn't hash to the parent DS digest")
	}
	if verr.Code != ValidationCodeDSMismatch {
		t.Fatalf("verr.Code = %v, want ValidationCodeDSMismatch", verr.Code)
	}
}

func TestVerifyAndAnchorNotEnabled(t *testing.T) {
	msg := &dns.Msg{}
	r := &Resolver{ks: NewKeyStore(clock.NewFake())}
	verr := r.verifyAndAnchor("example.", msg, nil)
	if verr == nil || verr.Code != ValidationCodeNotEnabled {
		t.Fatalf("verifyAndAnchor(empty response) = %v, want ValidationCodeNotEnabled", verr)
	}
}

func TestMatchRRSIGPairsByTypeCovered(t *testing.T) {
	sigA := &dns.RRSIG{Hdr: dns.RR_Header{Name: "a.com.", Rrtype: dns.TypeRRSIG}, TypeCovered: dns.TypeA}
	sigNS := &dns.RRSIG{Hdr: dns.RR_Header{Name: "a.com.", Rrtype: dns.TypeRRSIG}, TypeCovered: dns.TypeNS}
	msg := &dns.Msg{
		Answer: []dns.RR{
			&dns.NS{Hdr: dns.RR_Header{Name: "a.com.", Rrtype: dns.TypeNS}},
			sigA,
			&dns.A{Hdr: dns.RR_Header{Name: "a.com.", Rrtype: dns.TypeA}},
			sigNS,
		},
	}

	pairs := matchRRSIGPairs(msg)
	if len(pairs) != 2 {
		t.Fatalf("matchRRSIGPairs returned %d pairs, want 2", len(pairs))
	}
	for _, p := range pairs {
		if p.rrsig == sigA && p.rrset[0].Header().Rrtype != dns.TypeA {
			t.Fatalf("A RRSIG paired with wrong-type RRset despite section order: %+v", p.rrset)
		}
		if p.rrsig == sigNS && p.rrset[0].Header().Rrtype != dns.TypeNS {
			t.Fatalf("NS RRSIG paired with wrong-type RRset despite section order: %+v", p.rrset)
		}
	}
}

func TestMapDigestAlgorithmDefaultsToSHA256(t *testing.T) {
	if got := mapDigestAlgorithm(dns.SHA1); got != dns.SHA1 {
		t.Fatalf("mapDigestAlgorithm(SHA1) = %d, want %d", got, dns.SHA1)
	}
	if got := mapDigestAlgorithm(dns.GOST94); got != dns.SHA256 {
		t.Fatalf("mapDigestAlgorithm(GOST94) = %d, want SHA256 default", got)
	}
}
