package rules

import (
	"fmt"
	"regexp"

	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// Assignment is one derived group column over the full sample row set.
type Assignment struct {
	Name  string
	Cells []string
}

// OutputColumn names the derived column for the rule at position i:
// "group" for the first rule, "subgroup{i}" for the rest.
func OutputColumn(i int) string {
	if i == 0 {
		return "group"
	}

	return fmt.Sprintf("subgroup%d", i)
}

// Apply evaluates the rules against the sample table in their received
// order and returns one assignment column per rule. Every cell starts at
// the NA sentinel; patterns within a rule are applied in their declared
// order, and a later pattern's match overwrites an earlier one on the same
// row (the oracle orders patterns from general to specific, so the
// specific match is meant to win). A rule whose column is absent from the
// table yields an all-NA column without error. Labels pass through
// NormalizeLabel before being written.
func Apply(tbl *table.Table, ruleSet []Rule) []Assignment {
	if tbl == nil || len(ruleSet) == 0 {
		return nil
	}

	out := make([]Assignment, 0, len(ruleSet))

	for i, rule := range ruleSet {
		cells := make([]string, tbl.Rows())
		for r := range cells {
			cells[r] = table.NA
		}

		if col, ok := tbl.Column(rule.Column); ok {
			applyLogic(col, rule.Logic, cells)
		}

		out = append(out, Assignment{Name: OutputColumn(i), Cells: cells})
	}

	return out
}

func applyLogic(col []string, logic Logic, cells []string) {
	for _, entry := range logic {
		label := NormalizeLabel(entry.Label)

		switch entry.Kind {
		case MatchRegex:
			re, err := regexp.Compile("(?i)" + entry.Pattern)
			if err != nil {
				// Uncompilable patterns are dropped at parse time;
				// skip here so hand-built rules cannot panic.
				continue
			}

			for r, v := range col {
				if re.MatchString(v) {
					cells[r] = label
				}
			}
		case MatchExact:
			for r, v := range col {
				if v == entry.Pattern {
					cells[r] = label
				}
			}
		}
	}
}
