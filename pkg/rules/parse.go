package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// oracleResponse mirrors the JSON schema the prompt asks the oracle to
// produce. Everything outside this object in the reply is ignored.
type oracleResponse struct {
	DiseaseMajor    string       `json:"disease_major"`
	DiseaseMinor    string       `json:"disease_minor"`
	ICD11Code       string       `json:"icd11_code"`
	SampleSource    string       `json:"sample_source"`
	GroupingColumns []ruleRecord `json:"grouping_columns"`
}

type ruleRecord struct {
	ColumnName    string `json:"column_name"`
	GroupingLogic Logic  `json:"grouping_logic"`
	Confidence    string `json:"confidence"`
	Reason        string `json:"reason"`
}

// ExtractJSON locates the embedded JSON object in the oracle's free-text
// reply. It first tries the greedy span from the first '{' to the last '}'
// (which tolerates code fences and prose around the object); if that span
// is not valid JSON it falls back to the balanced object starting at the
// first '{'.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	end := strings.LastIndexByte(text, '}')
	if end > start {
		if candidate := text[start : end+1]; json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	if candidate, ok := balancedObject(text[start:]); ok && json.Valid([]byte(candidate)) {
		return candidate, true
	}

	return "", false
}

// balancedObject returns the prefix of s that closes the object opened by
// its first byte, tracking string literals and escapes.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// Parse extracts and validates the oracle's reply against the sample
// table. Malformed rule entries (missing column name, empty logic,
// uncompilable regex patterns, or a column the table does not have) are
// dropped with a recorded warning; a reply with no usable JSON object is
// an error the caller treats as "no grouping".
func Parse(text string, tbl *table.Table) (*Analysis, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in oracle response")
	}

	var resp oracleResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode oracle response: %w", err)
	}

	analysis := &Analysis{
		Study: StudyFields{
			DiseaseMajor: orNA(resp.DiseaseMajor),
			DiseaseMinor: orNA(resp.DiseaseMinor),
			ICD11Code:    orNA(resp.ICD11Code),
			SampleSource: orNA(resp.SampleSource),
		},
	}

	for _, rec := range resp.GroupingColumns {
		rule, warnings := validateRule(rec, tbl)
		analysis.Warnings = append(analysis.Warnings, warnings...)

		if rule != nil {
			analysis.Rules = append(analysis.Rules, *rule)
		}
	}

	return analysis, nil
}

func validateRule(rec ruleRecord, tbl *table.Table) (*Rule, []string) {
	var warnings []string

	if rec.ColumnName == "" {
		return nil, []string{"dropped rule with empty column_name"}
	}

	if len(rec.GroupingLogic) == 0 {
		return nil, []string{fmt.Sprintf("dropped rule for column %q: empty grouping_logic", rec.ColumnName)}
	}

	if tbl != nil && !tbl.Has(rec.ColumnName) {
		return nil, []string{fmt.Sprintf("dropped rule for column %q: column not present in metadata", rec.ColumnName)}
	}

	logic := make(Logic, 0, len(rec.GroupingLogic))

	for _, entry := range rec.GroupingLogic {
		if entry.Kind == MatchRegex {
			if _, err := regexp.Compile("(?i)" + entry.Pattern); err != nil {
				warnings = append(warnings,
					fmt.Sprintf("dropped pattern %q for column %q: %v", entry.Pattern, rec.ColumnName, err))
				continue
			}
		}

		logic = append(logic, entry)
	}

	if len(logic) == 0 {
		warnings = append(warnings,
			fmt.Sprintf("dropped rule for column %q: no usable patterns", rec.ColumnName))

		return nil, warnings
	}

	return &Rule{
		Column:     rec.ColumnName,
		Logic:      logic,
		Confidence: rec.Confidence,
		Reason:     rec.Reason,
	}, warnings
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return table.NA
	}

	return s
}
