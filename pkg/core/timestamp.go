package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EpochToISO converts upstream epoch seconds, optionally fractional, to an
// RFC 3339 UTC timestamp. The integer and fractional digits are parsed
// separately so no precision is lost to float rounding.
func EpochToISO(epoch string) (string, error) {
	epoch = strings.TrimSpace(epoch)
	if epoch == "" {
		return "", fmt.Errorf("empty epoch")
	}
	if strings.ContainsAny(epoch, "eE") {
		f, err := strconv.ParseFloat(epoch, 64)
		if err != nil {
			return "", fmt.Errorf("parse epoch %q: %w", epoch, err)
		}
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC().Format(time.RFC3339Nano), nil
	}

	whole, frac, _ := strings.Cut(epoch, ".")
	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse epoch %q: %w", epoch, err)
	}
	var nsec int64
	if frac != "" {
		if strings.Trim(frac, "0123456789") != "" {
			return "", fmt.Errorf("parse epoch %q: invalid fraction", epoch)
		}
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		if nsec, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return "", fmt.Errorf("parse epoch %q: %w", epoch, err)
		}
		// the fraction carries the sign of the whole part, "-0.5" included
		if strings.HasPrefix(whole, "-") {
			nsec = -nsec
		}
	}
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339Nano), nil
}
