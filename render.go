package dnswalk

import (
	"fmt"
	"strings"
)

// RenderResponse produces the human-readable rendering of a Response.
// includeDNSSEC controls whether the trailing DNSSEC error line is
// included, so the same Response type serves both the plain and the
// validating CLI entry points.
func RenderResponse(r *Response, includeDNSSEC bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question section - Name: %s Type: %s\n", r.Name, r.Type)
	fmt.Fprintf(&b, "Answer section - %s\n", renderRecords(r.Answer))
	fmt.Fprintf(&b, "Authority section - %s\n", renderRecords(r.Authority))
	fmt.Fprintf(&b, "Metadata - Query time: %dms When: %s Msg size rcvd: %d\n", r.QueryTimeMS, r.When, r.MsgSize)
	if includeDNSSEC {
		errStr := "None"
		if r.DNSSECError != nil {
			errStr = r.DNSSECError.Error()
		}
		fmt.Fprintf(&b, "DNSSEC error message: %s\n", errStr)
	}
	return b.String()
}

func renderRecords(recs []ResponseRecord) string {
	parts := make([]string, len(recs))
	for i, rec := range recs {
		parts[i] = rec.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
