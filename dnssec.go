package dnswalk

import (
	"context"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// sigPair is a (RRset, RRSIG) unit matched by the RRSIG's type_covered
// field against RRsets of the same owner in the same section, rather than
// by section position, which depends entirely on server ordering.
type sigPair struct {
	rrset []dns.RR
	rrsig *dns.RRSIG
}

// matchRRSIGPairs scans every section of msg once and returns every
// (RRset, RRSIG) unit it can build.
func matchRRSIGPairs(msg *dns.Msg) []sigPair {
	var pairs []sigPair
	for _, section := range [][]dns.RR{msg.Answer, msg.Ns, msg.Extra} {
		if len(section) == 0 {
			continue
		}
		for _, sigRR := range extractRRSet(section, "", dns.TypeRRSIG) {
			sig := sigRR.(*dns.RRSIG)
			rest := extractRRSet(section, sig.Header().Name, sig.TypeCovered)
			if len(rest) == 0 {
				continue
			}
			pairs = append(pairs, sigPair{rrset: rest, rrsig: sig})
		}
	}
	return pairs
}

func buildKeyMap(rrset []dns.RR) map[uint16]*dns.DNSKEY {
	m := make(map[uint16]*dns.DNSKEY, len(rrset))
	for _, rr := range rrset {
		if dk, ok := rr.(*dns.DNSKEY); ok {
			m[dk.KeyTag()] = dk
		}
	}
	return m
}

// digestCandidates turns a DS record's digest-algorithm enum into a digest
// family by ordered substring match against the algorithm's name. The
// ordering is preserved deliberately, since the first matching entry wins.
// An algorithm whose name matches no entry (e.g. GOST94) falls through to
// the SHA256 default in mapDigestAlgorithm.
var digestCandidates = []struct {
	substr string
	digest uint8
}{
	{"MD5", dns.SHA1},
	{"SHA1", dns.SHA1},
	{"SHA128", dns.SHA256},
	{"SHA256", dns.SHA256},
	{"SHA512", dns.SHA384},
}

func digestAlgorithmName(t uint8) string {
	switch t {
	case dns.SHA1:
		return "SHA1"
	case dns.SHA256:
		return "SHA256"
	case dns.SHA384:
		return "SHA384"
	case dns.GOST94:
		return "GOST94"
	default:
		return "UNKNOWN"
	}
}

// mapDigestAlgorithm maps a DS record's digest-type field to the digest
// family ToDS should compute, by substring match over digestCandidates;
// first match wins, default SHA256.
func mapDigestAlgorithm(t uint8) uint8 {
	name := digestAlgorithmName(t)
	for _, c := range digestCandidates {
		if strings.Contains(name, c.substr) {
			return c.digest
		}
	}
	return dns.SHA256
}

// validate is invoked on every response received during a validating
// resolve; a non-nil result aborts that resolution branch. It inspects msg
// directly: DS records found in any section anchor a delegation, and every
// (RRset, RRSIG) pair found in any section must verify against the
// currently trusted key store.
func (r *Resolver) validate(ctx context.Context, msg *dns.Msg) *ValidationError {
	all := make([]dns.RR, 0, len(msg.Answer)+len(msg.Ns)+len(msg.Extra))
	all = append(all, msg.Answer...)
	all = append(all, msg.Ns...)
	all = append(all, msg.Extra...)
	dsRecords := extractRRSet(all, "", dns.TypeDS)

	if len(msg.Answer) == 0 && len(dsRecords) == 0 {
		return validationErr(ValidationCodeNotSupported, "", nil)
	}

	for _, dsRR := range dsRecords {
		ds := dsRR.(*dns.DS)
		if verr := r.fetchAndValidateKeys(ctx, ds); verr != nil {
			return verr
		}
	}

	for _, pair := range matchRRSIGPairs(msg) {
		if verr := r.verifyPair(pair); verr != nil {
			return verr
		}
	}

	return nil
}

func (r *Resolver) verifyPair(pair sigPair) *ValidationError {
	keys := r.ks.Get(pair.rrsig.SignerName)
	if keys == nil {
		return validationErr(ValidationCodeRRSIGInvalid, pair.rrsig.SignerName, errNoTrustedKeys)
	}
	keyMap := buildKeyMap(keys)
	k, present := keyMap[pair.rrsig.KeyTag]
	if !present {
		return validationErr(ValidationCodeRRSIGInvalid, pair.rrsig.SignerName, errMissingDNSKEYForRRSIG)
	}
	if err := pair.rrsig.Verify(k, pair.rrset); err != nil {
		return validationErr(ValidationCodeRRSIGInvalid, pair.rrsig.SignerName, err)
	}
	if !pair.rrsig.ValidityPeriod(time.Time{}) {
		return validationErr(ValidationCodeRRSIGInvalid, pair.rrsig.SignerName, errInvalidSignaturePeriod)
	}
	return nil
}

// nsAddressesFor resolves the candidate authoritative IPs for zone's
// DNSKEY, via plain (non-validated) NS then A lookups. This sub-query is
// deliberately not DNSSEC-validated: a recursive validating resolve here
// would risk infinite recursion, and the DNSKEY response fetched next is
// itself about to be validated against the parent DS.
func (r *Resolver) nsAddressesFor(ctx context.Context, zone string) ([]string, error) {
	nsResp, _ := r.Resolve(ctx, Request{Name: zone, Type: TypeNS})
	var names []string
	for _, rec := range append(append([]ResponseRecord{}, nsResp.Answer...), nsResp.Authority...) {
		if rec.Type == TypeNS {
			names = append(names, rec.Value)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoNSAuthorities
	}

	var ips []string
	for _, name := range names {
		aResp, _ := r.Resolve(ctx, Request{Name: name, Type: TypeA})
		for _, rec := range aResp.Answer {
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

// queryForDNSKEY queries each candidate IP in turn for (zone, DNSKEY) with
// DO set, stopping at the first successful response.
func (r *Resolver) queryForDNSKEY(ctx context.Context, zone string, candidates []string) (*dns.Msg, error) {
	m := buildQuery(zone, dns.TypeDNSKEY, true)
	for _, ip := range candidates {
		resp, err := sendUDP(ctx, m, ip, queryTimeout)
		if err == nil {
			return resp, nil
		}
	}
	return nil, ErrNoResponse
}

// fetchAndValidateKeys implements the per-DS branch of the validator:
// resolve the child zone's DNSKEY servers, fetch its DNSKEY RRset, and
// anchor it against ds.
func (r *Resolver) fetchAndValidateKeys(ctx context.Context, ds *dns.DS) *ValidationError {
	zone := ds.Header().Name
	ips, err := r.nsAddressesFor(ctx, zone)
	if err != nil {
		return validationErr(ValidationCodeKeyFetchFailed, zone, err)
	}
	msg, err := r.queryForDNSKEY(ctx, zone, ips)
	if err != nil {
		return validationErr(ValidationCodeKeyFetchFailed, zone, err)
	}
	return r.verifyAndAnchor(zone, msg, []*dns.DS{ds})
}

// verifyAndAnchor runs DNSKEY self-signature verification and DS anchoring
// (validator steps 4-6) for zone's DNSKEY response msg against parentDS,
// and on success records the DNSKEY RRset as zone's trusted keys in the key
// store. It is shared between fetchAndValidateKeys (every non-root
// delegation) and Bootstrap (the root zone, whose "parent DS set" is the
// library-provided trust anchor rather than a DS record seen in a
// referral).
func (r *Resolver) verifyAndAnchor(zone string, msg *dns.Msg, parentDS []*dns.DS) *ValidationError {
	var ksks []*dns.DNSKEY
	var dnskeyRRset []dns.RR
	var rrsig *dns.RRSIG
	for _, rr := range msg.Answer {
		switch v := rr.(type) {
		case *dns.DNSKEY:
			dnskeyRRset = append(dnskeyRRset, v)
			if v.Flags == 257 {
				ksks = append(ksks, v)
			}
		case *dns.RRSIG:
			if v.TypeCovered == dns.TypeDNSKEY {
				rrsig = v
			}
		}
	}
	if len(ksks) == 0 || len(dnskeyRRset) == 0 || rrsig == nil {
		return validationErr(ValidationCodeNotEnabled, zone, nil)
	}

	// Tentatively trust the RRset so it can verify its own signature, then
	// undo that if either the self-signature or the DS anchor fails.
	r.ks.put(zone, dnskeyRRset)

	keyMap := buildKeyMap(dnskeyRRset)
	signer, present := keyMap[rrsig.KeyTag]
	if !present {
		r.ks.remove(zone)
		return validationErr(ValidationCodeDNSKEYSignatureInvalid, zone, errMissingDNSKEYForRRSIG)
	}
	if err := rrsig.Verify(signer, dnskeyRRset); err != nil {
		r.ks.remove(zone)
		return validationErr(ValidationCodeDNSKEYSignatureInvalid, zone, err)
	}
	if !rrsig.ValidityPeriod(time.Time{}) {
		r.ks.remove(zone)
		return validationErr(ValidationCodeDNSKEYSignatureInvalid, zone, errInvalidSignaturePeriod)
	}

	// DS anchoring: try every KSK candidate against every parent DS record,
	// so a KSK rollover with multiple published keys doesn't spuriously fail.
	for _, ksk := range ksks {
		for _, parent := range parentDS {
			if parent.Algorithm != ksk.Algorithm {
				continue
			}
			computed := ksk.ToDS(mapDigestAlgorithm(parent.DigestType))
			if computed != nil && strings.EqualFold(computed.Digest, parent.Digest) {
				return nil
			}
		}
	}
	r.ks.remove(zone)
	return validationErr(ValidationCodeDSMismatch, zone, nil)
}
