package rules

import (
	"regexp"
	"strings"

	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

var (
	groupWordRe = regexp.MustCompile(`(?i)\bgroup\b`)
	cjkDayRe    = regexp.MustCompile(`第?\s*(\d+)\s*天`)
	timeRe      = regexp.MustCompile(`(?i)time(?:point)?\s*(\d+)`)
)

// NormalizeLabel canonicalizes a free-text group label: empty or "NA"
// input becomes the NA sentinel, the standalone word "group" is stripped,
// day/timepoint phrasings (including the CJK 第N天 form) are rewritten to
// dayN, and surrounding whitespace is trimmed. The function is idempotent.
func NormalizeLabel(s string) string {
	v := strings.TrimSpace(s)
	if v == "" || strings.EqualFold(v, table.NA) {
		return table.NA
	}

	v = groupWordRe.ReplaceAllString(v, "")
	v = cjkDayRe.ReplaceAllString(v, "day$1")
	v = timeRe.ReplaceAllString(v, "day$1")
	v = strings.TrimSpace(v)

	// A label that was nothing but the word "group" collapses to empty;
	// map it to the sentinel so normalization stays idempotent.
	if v == "" {
		return table.NA
	}

	return v
}
