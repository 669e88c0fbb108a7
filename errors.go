package dnswalk

import "errors"

// Sentinel errors. Resolve and ResolveValidating return the exported ones as
// their error result, alongside an empty Response (see resolver.go); the
// validator also carries some of them as the Cause of a ValidationError
// (see dnssec.go).
var (
	ErrNoResponse           = errors.New("dnswalk: no server in the candidate set responded")
	ErrNoNSAuthorities      = errors.New("dnswalk: no NS records found in authority section")
	ErrNoAuthorityAddress   = errors.New("dnswalk: no A records found for any authority nameserver")
	ErrTooManyReferrals     = errors.New("dnswalk: too many referrals")
	ErrInvalidRequest       = errors.New("dnswalk: request type is not one of A, NS, MX")
	ErrUselessResponse      = errors.New("dnswalk: response had no answer, no SOA, and no referral candidates")
	errNoRootServersInHints = errors.New("dnswalk: hints file contained no root server addresses")

	errNoTrustedKeys          = errors.New("dnswalk: no trusted DNSKEY RRset for signer zone")
	errMissingDNSKEYForRRSIG  = errors.New("dnswalk: no DNSKEY in trusted set matches RRSIG key tag")
	errInvalidSignaturePeriod = errors.New("dnswalk: signature outside its validity period")
)

// ValidationCode names one of the six DNSSEC validation outcomes the core
// can surface. ValidationCodeNone never appears on a returned error; it
// exists only so the zero value of ValidationCode is non-representable.
type ValidationCode int

const (
	ValidationCodeNone ValidationCode = iota
	ValidationCodeNotSupported
	ValidationCodeKeyFetchFailed
	ValidationCodeNotEnabled
	ValidationCodeDNSKEYSignatureInvalid
	ValidationCodeDSMismatch
	ValidationCodeRRSIGInvalid
)

// ValidationError is the tagged variant of the six validator outcomes. Its
// Error() string is the exact text the rendering contract expects; Cause,
// when present, is the underlying miekg/dns verification error.
type ValidationError struct {
	Code  ValidationCode
	Zone  string
	Cause error
}

func (v *ValidationError) Error() string {
	switch v.Code {
	case ValidationCodeNotSupported:
		return "DNSSEC not supported"
	case ValidationCodeKeyFetchFailed:
		return "Could not fetch DNSKEY"
	case ValidationCodeNotEnabled:
		return "DNSSEC not enabled"
	case ValidationCodeDNSKEYSignatureInvalid:
		return "Failed to validate signature of DNSKEY record"
	case ValidationCodeDSMismatch:
		return "DS validation for KSK failed"
	case ValidationCodeRRSIGInvalid:
		return "DNSSEC RRSIG record verification failed"
	default:
		return "DNSSEC validation failed"
	}
}

func (v *ValidationError) Unwrap() error { return v.Cause }

func validationErr(code ValidationCode, zone string, cause error) *ValidationError {
	return &ValidationError{Code: code, Zone: zone, Cause: cause}
}
