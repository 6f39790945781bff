package core

import "github.com/cockroachdb/apd/v3"

// IsPositive reports whether s parses as a decimal strictly greater than
// zero. Unparseable amounts are treated as not positive.
func IsPositive(s string) bool {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return false
	}
	return d.Sign() > 0
}
