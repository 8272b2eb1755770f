package auth

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

var ttlUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    day,
	"week":   7 * day,
	"month":  30 * day,
	"year":   365 * day,
}

// ParseTTL reads a lifetime such as "1 day" or "15 minutes".
// Months are 30 days and years 365 days. Go duration strings like "15m" are accepted too.
func ParseTTL(value string) (time.Duration, error) {
	fields := strings.Fields(value)
	switch len(fields) {
	case 1:
		d, err := time.ParseDuration(fields[0])
		if err != nil {
			return 0, fmt.Errorf("invalid ttl %q: %w", value, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("invalid ttl %q: must be positive", value)
		}
		return d, nil
	case 2:
	default:
		return 0, fmt.Errorf("invalid ttl %q: expected \"<amount> <unit>\"", value)
	}

	amount, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl amount %q: %w", fields[0], err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("invalid ttl %q: must be positive", value)
	}

	unitName := strings.TrimSuffix(strings.ToLower(fields[1]), "s")
	unit, ok := ttlUnits[unitName]
	if !ok {
		return 0, fmt.Errorf("invalid ttl unit %q", fields[1])
	}
	if amount > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("invalid ttl %q: out of range", value)
	}
	return time.Duration(amount) * unit, nil
}
