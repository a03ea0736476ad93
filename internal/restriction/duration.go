package restriction

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// durationUnits are searched independently, so components may come in any
// order and any subset, separated by anything.
var durationUnits = []struct { //nolint:gochecknoglobals // -
	pattern *regexp.Regexp
	unit    time.Duration
}{
	{regexp.MustCompile(`(\d+) ?d(ays?)?`), day},
	{regexp.MustCompile(`(\d+) ?h(ours?)?`), time.Hour},
	{regexp.MustCompile(`(\d+) ?m((inutes?)?|(ins?)?)?`), time.Minute},
	{regexp.MustCompile(`(\d+) ?s((econds?)?|(ecs?)?)?`), time.Second},
}

// ParseDuration converts text such as "1d 2h 30m 10s" or "5 hours" into a duration.
// Only the first occurrence of each unit counts. The result must be positive.
func ParseDuration(text string) (time.Duration, error) {
	var total time.Duration

	for _, u := range durationUnits {
		match := u.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		n, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil || n > int64(math.MaxInt64/u.unit) {
			return 0, fmt.Errorf("%w: %q is too large", ErrInvalidDuration, match[1])
		}

		part := time.Duration(n) * u.unit
		if total > math.MaxInt64-part {
			return 0, fmt.Errorf("%w: %q is too large", ErrInvalidDuration, text)
		}
		total += part
	}

	if total <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, text)
	}

	return total, nil
}

// FormatDuration renders a duration in the form accepted by ParseDuration.
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d <= 0 {
		return "0s"
	}

	var parts []string
	for _, u := range []struct {
		unit   time.Duration
		suffix string
	}{{day, "d"}, {time.Hour, "h"}, {time.Minute, "m"}, {time.Second, "s"}} {
		if n := d / u.unit; n > 0 {
			parts = append(parts, strconv.FormatInt(int64(n), 10)+u.suffix)
			d -= n * u.unit
		}
	}

	return strings.Join(parts, " ")
}
