// Package dnswalk implements an iterative, optionally DNSSEC-validating DNS
// resolver. It walks the delegation hierarchy from the root down to an
// authoritative answer itself, rather than delegating to the system
// resolver, and can anchor every delegation it follows back to the DNS
// root's trust anchor.
package dnswalk

import (
	"fmt"

	"github.com/miekg/dns"
)

// Supported question types. The resolver rejects any other type as invalid
// input.
const (
	TypeA  = "A"
	TypeNS = "NS"
	TypeMX = "MX"
)

// Request is a single DNS question: a name and a record type.
type Request struct {
	Name string
	Type string
}

// Valid reports whether r.Type is one of the record types this resolver
// knows how to handle.
func (r Request) Valid() bool {
	switch r.Type {
	case TypeA, TypeNS, TypeMX:
		return true
	}
	return false
}

func (r Request) dnsType() uint16 {
	switch r.Type {
	case TypeA:
		return dns.TypeA
	case TypeNS:
		return dns.TypeNS
	case TypeMX:
		return dns.TypeMX
	}
	return 0
}

// ResponseRecord is a single record extracted from a response, normalized to
// a (type, value) pair. MX records also carry their preference; it is zero
// and omitted from the rendered form for every other type.
type ResponseRecord struct {
	Type       string
	Value      string
	Preference uint16
}

// String renders a record as "<type> <value>", or "<type> <preference>
// <value>" for an MX record with a non-zero preference.
func (rr ResponseRecord) String() string {
	if rr.Type == TypeMX && rr.Preference != 0 {
		return fmt.Sprintf("%s %d %s", rr.Type, rr.Preference, rr.Value)
	}
	return fmt.Sprintf("%s %s", rr.Type, rr.Value)
}

// Response is the result of resolving a Request. DNSSECError is nil unless
// the resolve was performed in validating mode and a validation step failed.
type Response struct {
	Name        string
	Type        string
	Answer      []ResponseRecord
	Authority   []ResponseRecord
	QueryTimeMS int64
	When        string
	MsgSize     int
	DNSSECError *ValidationError
}

// emptyResponse returns the Response the resolver falls back to on failure:
// the request's name and type, empty record lists, zero size.
func emptyResponse(req Request) *Response {
	return &Response{
		Name:      req.Name,
		Type:      req.Type,
		Answer:    []ResponseRecord{},
		Authority: []ResponseRecord{},
	}
}
