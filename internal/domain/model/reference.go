package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TransactionReference is the opaque identifier of one payment attempt at the
// remote gateway. It is the idempotency key for every side effect tied to that
// payment, so it is captured once and never regenerated.
type TransactionReference string

func (r TransactionReference) String() string { return string(r) }

func (r TransactionReference) IsZero() bool { return r == "" }

// ResolveReference extracts a transaction reference from a checkout redirect
// URL. Matching is attempted in strict priority order, first match wins:
//
//  1. a path segment following "/checkout/" that starts with 'T' and continues
//     alphanumerically (the hosted-checkout vendor embeds the canonical
//     reference in this shape),
//  2. the "tripay_reference" query parameter,
//  3. the "reference" query parameter,
//  4. the last non-empty path segment, accepted only when it starts with 'T'
//     and is longer than 10 characters.
//
// Anything else, including an unparseable URL, yields ok == false. Callers
// treat that as "no reference yet", never as an error.
func ResolveReference(rawURL string) (TransactionReference, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	segs := splitPath(u.Path)
	for i, seg := range segs {
		if seg != "checkout" || i+1 >= len(segs) {
			continue
		}
		if ref := segs[i+1]; isCheckoutRef(ref) {
			return TransactionReference(ref), true
		}
	}

	q := u.Query()
	if v := q.Get("tripay_reference"); v != "" {
		return TransactionReference(v), true
	}
	if v := q.Get("reference"); v != "" {
		return TransactionReference(v), true
	}

	if len(segs) > 0 {
		last := segs[len(segs)-1]
		if strings.HasPrefix(last, "T") && len(last) > 10 {
			return TransactionReference(last), true
		}
	}
	return "", false
}

// NewSyntheticReference builds a reference for orders that never touch the
// hosted checkout page and so never produce a gateway reference. It is
// generated exactly once at order creation; retries reuse the stored value.
func NewSyntheticReference(now time.Time) TransactionReference {
	return TransactionReference(fmt.Sprintf("OPAY%d", now.UnixMilli()))
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isCheckoutRef(s string) bool {
	if len(s) < 2 || s[0] != 'T' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
