// Package prompt renders the classification-oracle prompt: a fixed
// instruction template with the project record, linked publications, and a
// bounded preview of the deduplicated metadata columns embedded as data.
// The rendered text is deterministic for identical inputs.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shaoxunyuan/prjmeta/pkg/fetch"
	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// SystemRole is the fixed system message sent with every oracle call.
const SystemRole = "You are a bioinformatics expert skilled in parsing SRA/GEO metadata and extracting structured study information."

// MaxExamples caps how many example values a column preview may embed, so
// prompt size stays bounded regardless of table size.
const MaxExamples = 6

// ColumnPreview summarizes one metadata column for the oracle.
type ColumnPreview struct {
	Name     string
	Examples []string
	Distinct int
}

// Preview builds the column previews for a normalized table, in column
// order, with at most MaxExamples example values per column.
func Preview(t *table.Table) []ColumnPreview {
	if t == nil {
		return nil
	}

	names := t.Names()
	out := make([]ColumnPreview, 0, len(names))

	for _, name := range names {
		out = append(out, ColumnPreview{
			Name:     name,
			Distinct: t.DistinctCount(name),
			Examples: t.DistinctValues(name, MaxExamples),
		})
	}

	return out
}

// Data is everything that varies between prompt renderings. GeneratedAt is
// injected by the caller so the builder itself stays a pure function.
type Data struct {
	ProjectID    string
	GeneratedAt  time.Time
	Project      *fetch.ProjectFields
	Publications []fetch.Publication
	Preview      []ColumnPreview
}

// Build renders the full prompt text.
func Build(d Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Metadata analysis prompt\n")
	fmt.Fprintf(&b, "# Project: %s\n", d.ProjectID)
	fmt.Fprintf(&b, "# Generated at %s\n\n", d.GeneratedAt.Format("2006-01-02T15:04:05"))

	b.WriteString(`Goal:
From BioProject / GEO / PubMed / SRA metadata, extract key study information and output JSON (no explanation).

Output JSON format:
{
  "disease_major": "ICD-11 chapter name (English)",
  "disease_minor": "specific disease name (English, e.g., COVID-19)",
  "icd11_code": "ICD-11 code if available, else NA",
  "sample_source": "sample origin in English (e.g., PBMC, serum, lung tissue)",
  "grouping_columns": [
    {
      "column_name": "metadata column name",
      "grouping_logic": {"value or regex:pattern": "GroupName(EN)"},
      "confidence": "High/Medium/Low",
      "reason": "short reasoning"
    }
  ]
}

Constraints:
- Output only the JSON object, nothing else.
- All output must be in English.
- disease_major should correspond to an ICD-11 chapter name.
- Do NOT include the word 'group' in group names.
- Timepoints must use the dayN format (e.g., day7, day14).
- Group names must be short and unambiguous (e.g., "AS", "Control").
- Grouping rules must cover every value pattern present in the data.
- Order patterns from general to specific: a broad pattern (e.g., "regex:disease") comes before a narrower one (e.g., "regex:severe disease") so the specific match overrides the general one.

`)

	fmt.Fprintf(&b, "BioProject:\n%s\n\n", marshalBlock(d.Project))
	fmt.Fprintf(&b, "PubMed:\n%s\n\n", marshalBlock(d.Publications))

	b.WriteString("SRA columns preview (deduplicated):\n")
	b.WriteString(renderPreview(d.Preview))

	return b.String()
}

// marshalBlock renders a value as indented JSON; nil or unserializable
// values degrade to the NA sentinel so the template shape never changes.
func marshalBlock(v any) string {
	if v == nil {
		return table.NA
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil || string(data) == "null" {
		return table.NA
	}

	return string(data)
}

func renderPreview(preview []ColumnPreview) string {
	if len(preview) == 0 {
		return "(no columns)\n"
	}

	var b strings.Builder

	for _, col := range preview {
		fmt.Fprintf(&b, "- %s (%d unique): %s\n",
			col.Name, col.Distinct, strings.Join(col.Examples, " | "))
	}

	return b.String()
}
