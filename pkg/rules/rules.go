// Package rules implements the grouping-rule core of the pipeline: parsing
// the classification oracle's free-text reply into typed, ordered grouping
// rules, applying those rules deterministically to a sample table, and
// canonicalizing the resulting group labels.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// regexPrefix tags a pattern key as a case-insensitive regex match instead
// of an exact value match.
const regexPrefix = "regex:"

// MatchKind distinguishes the two pattern variants a rule may carry.
type MatchKind int

const (
	// MatchExact compares the pattern against the cell value with
	// case-sensitive string equality.
	MatchExact MatchKind = iota

	// MatchRegex matches the pattern case-insensitively anywhere in the
	// cell value.
	MatchRegex
)

// LogicEntry is one (pattern, label) pair of a rule's grouping logic.
// Entry order is semantically significant: the oracle orders patterns from
// general to specific, and a later match intentionally overwrites an
// earlier one on the same row.
type LogicEntry struct {
	Pattern string
	Label   string
	Kind    MatchKind
}

// Logic is an ordered sequence of pattern entries. It decodes from a JSON
// object while preserving the key order the oracle produced; a plain Go map
// would destroy the general-to-specific precedence contract.
type Logic []LogicEntry

// UnmarshalJSON walks the object token stream so key order survives.
func (l *Logic) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("grouping_logic must be a JSON object")
	}

	var entries Logic

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("grouping_logic key is not a string")
		}

		var label string
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("grouping_logic value for %q is not a string: %w", key, err)
		}

		entry := LogicEntry{Pattern: key, Label: label, Kind: MatchExact}
		if strings.HasPrefix(key, regexPrefix) {
			entry.Kind = MatchRegex
			entry.Pattern = strings.TrimPrefix(key, regexPrefix)
		}

		entries = append(entries, entry)
	}

	*l = entries

	return nil
}

// MarshalJSON re-serializes the logic with its original key order, for the
// rule-documentation sheet.
func (l Logic) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, e := range l {
		if i > 0 {
			buf.WriteByte(',')
		}

		key := e.Pattern
		if e.Kind == MatchRegex {
			key = regexPrefix + e.Pattern
		}

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Rule is one validated grouping rule: which metadata column to read, the
// ordered pattern logic to apply, and the oracle's stated confidence and
// rationale.
type Rule struct {
	Column     string
	Confidence string
	Reason     string
	Logic      Logic
}

// StudyFields carries the study-level classification the oracle returns
// alongside the grouping rules. Unavailable fields hold the NA sentinel.
type StudyFields struct {
	DiseaseMajor string
	DiseaseMinor string
	ICD11Code    string
	SampleSource string
}

// Analysis is the validated result of one oracle consultation.
type Analysis struct {
	Study    StudyFields
	Rules    []Rule
	Warnings []string
}
