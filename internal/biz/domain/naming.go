package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NextSequence computes 1 + max(n) over all names matching ^prefix(\d+)
// case-insensitively, or 1 if none match. Insensitive to input order
// and to multiple names sharing the same number.
func NextSequence(names []string, prefix string) int {
	re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `(\d+)`)
	max := 0
	for _, name := range names {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// MonthCategoryName derives the archive category name from a timestamp:
// the lower-cased full month name, evaluated in JST.
func MonthCategoryName(t time.Time) string {
	return strings.ToLower(t.In(JST).Month().String())
}

// MonthChannelPrefix derives the channel-name prefix from a timestamp:
// the lower-cased 3-letter month abbreviation, evaluated in JST.
func MonthChannelPrefix(t time.Time) string {
	return strings.ToLower(t.In(JST).Month().String()[:3])
}
