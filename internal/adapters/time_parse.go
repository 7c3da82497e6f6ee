package adapters

import (
	"strings"
	"time"
)

var manifestTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
	time.UnixDate,
}

// normalizeCreatedAt rewrites a manifest timestamp as RFC 3339 in UTC.
// Values in no known layout are returned unchanged.
func normalizeCreatedAt(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, layout := range manifestTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
	}
	return value
}
