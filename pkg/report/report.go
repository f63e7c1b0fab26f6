// Package report composes the final workbook sheets from the pipeline's
// outputs: the normalized metadata sheet, the project summary sheet, the
// per-sample grouping sheet, and the optional rule-documentation sheet.
package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shaoxunyuan/prjmeta/pkg/accession"
	"github.com/shaoxunyuan/prjmeta/pkg/fetch"
	"github.com/shaoxunyuan/prjmeta/pkg/rules"
	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// Sheet names in the output workbook.
const (
	SheetMetadata = "metadata"
	SheetProject  = "bioproject"
	SheetSamples  = "sampletable"
	SheetRules    = "grouping_rules"
)

var (
	runColRe = regexp.MustCompile(`(?i)(^|_)run(_|$)|run_accession`)
)

// Sheet is one tabular worksheet: a header row plus data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Report is the assembled workbook content, ready for serialization.
type Report struct {
	Sheets []Sheet
}

// Input gathers everything the assembler consumes. Metadata is the
// download-stripped table shown in the metadata sheet; Full is the
// original fetch table whose row order all sample rows align with.
type Input struct {
	ProjectID    string
	Project      *fetch.ProjectFields
	Publications []fetch.Publication
	Study        rules.StudyFields
	Metadata     *table.Table
	Full         *table.Table
	Candidates   []string
	Assignments  []rules.Assignment
	Rules        []rules.Rule
}

// Assemble builds all sheets. The grouping_rules sheet is only present
// when at least one rule was applied.
func Assemble(in Input) *Report {
	r := &Report{}

	r.Sheets = append(r.Sheets, metadataSheet(in.Metadata))

	samples := sampleSheet(in)
	r.Sheets = append(r.Sheets, projectSheet(in, samples), samples)

	if len(in.Rules) > 0 {
		r.Sheets = append(r.Sheets, rulesSheet(in.Rules))
	}

	return r
}

func metadataSheet(t *table.Table) Sheet {
	sheet := Sheet{Name: SheetMetadata}
	if t == nil {
		return sheet
	}

	sheet.Header = t.Names()
	sheet.Rows = make([][]string, t.Rows())

	for i := range sheet.Rows {
		row := make([]string, len(sheet.Header))

		for j, name := range sheet.Header {
			cells, _ := t.Column(name)
			row[j] = cells[i]
		}

		sheet.Rows[i] = row
	}

	return sheet
}

// sampleSheet joins run/biosample identifiers with the group assignment
// columns and the candidate reference columns, aligned strictly by row
// position with the original fetch order.
func sampleSheet(in Input) Sheet {
	sheet := Sheet{Name: SheetSamples}

	rows := 0
	if in.Full != nil {
		rows = in.Full.Rows()
	}

	addColumn := func(name string, cells []string) {
		sheet.Header = append(sheet.Header, name)

		for len(cells) < rows {
			cells = append(cells, table.NA)
		}

		if len(sheet.Rows) == 0 {
			sheet.Rows = make([][]string, rows)
		}

		for i := 0; i < rows; i++ {
			sheet.Rows[i] = append(sheet.Rows[i], cells[i])
		}
	}

	addColumn("run_accession", identifierColumn(in, runColumn))
	addColumn("biosample", identifierColumn(in, biosampleColumn))

	for _, a := range in.Assignments {
		addColumn(a.Name, a.Cells)
	}

	for _, name := range in.Candidates {
		if in.Metadata == nil {
			break
		}

		if cells, ok := in.Metadata.Column(name); ok {
			addColumn(name, cells)
		}
	}

	return sheet
}

func identifierColumn(in Input, find func(*table.Table) string) []string {
	if in.Metadata == nil || in.Full == nil {
		return nil
	}

	name := find(in.Metadata)
	if name == "" {
		return nil
	}

	cells, _ := in.Full.Column(name)

	return cells
}

// runColumn finds the run identifier column by name, falling back to
// sniffing the cell content for SRR-style accessions when pysradb used an
// unexpected header.
func runColumn(t *table.Table) string {
	for _, name := range t.Names() {
		if runColRe.MatchString(name) {
			return name
		}
	}

	return columnByContent(t, accession.Run)
}

func biosampleColumn(t *table.Table) string {
	for _, name := range t.Names() {
		if strings.Contains(strings.ToLower(name), "biosample") {
			return name
		}
	}

	return columnByContent(t, accession.BioSample)
}

func columnByContent(t *table.Table, kind accession.Kind) string {
	for _, name := range t.Names() {
		if cells, ok := t.Column(name); ok && accession.DetectColumn(cells) == kind {
			return name
		}
	}

	return ""
}

// projectSheet builds the key/value study summary.
func projectSheet(in Input, samples Sheet) Sheet {
	species := table.NA
	geo := table.NA

	if in.Project != nil {
		species = naOr(in.Project.OrganismName)
		geo = naOr(in.Project.GEOAccession)
	}

	grouping := table.NA
	if len(in.Rules) > 0 {
		names := make([]string, len(in.Rules))
		for i, r := range in.Rules {
			names[i] = r.Column
		}

		grouping = strings.Join(names, ", ")
	}

	rows := [][]string{
		{"bioproject", in.ProjectID},
		{"geo_accession", geo},
		{"pmid", joinClean(pubField(in.Publications, func(p fetch.Publication) string { return p.PMID }), ",")},
		{"journal_name", joinClean(pubField(in.Publications, func(p fetch.Publication) string { return p.Journal }), "; ")},
		{"publication_data", joinClean(pubField(in.Publications, func(p fetch.Publication) string { return p.Date }), "; ")},
		{"publication_doi", joinClean(pubField(in.Publications, func(p fetch.Publication) string { return p.DOI }), "; ")},
		{"species", species},
		{"disease_major", naOr(in.Study.DiseaseMajor)},
		{"disease_minor", naOr(in.Study.DiseaseMinor)},
		{"icd11_code", naOr(in.Study.ICD11Code)},
		{"sample_source", naOr(in.Study.SampleSource)},
		{"instrument", firstNonNA(in.Metadata, "instrument")},
		{"library_strategy", firstNonNA(in.Metadata, "library_strategy")},
		{"library_source", firstNonNA(in.Metadata, "library_source")},
		{"library_selection", firstNonNA(in.Metadata, "library_selection")},
		{"library_layout", firstNonNA(in.Metadata, "library_layout")},
		{"grouping", grouping},
		{"group_info", groupInfo(samples)},
		{"sample_size", sampleSize(samples, in.Full)},
	}

	return Sheet{
		Name:   SheetProject,
		Header: []string{"field", "value"},
		Rows:   rows,
	}
}

// groupInfo summarizes per-group sample counts over the "group" column,
// excluding the NA sentinel, ordered by count descending with ties kept in
// first-appearance order.
func groupInfo(samples Sheet) string {
	col := sheetColumn(samples, "group")
	if col == nil {
		return table.NA
	}

	counts := make(map[string]int)

	var order []string

	for _, v := range col {
		if v == table.NA {
			continue
		}

		if counts[v] == 0 {
			order = append(order, v)
		}

		counts[v]++
	}

	if len(order) == 0 {
		return table.NA
	}

	// Stable sort by descending count; first appearance breaks ties.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	parts := make([]string, len(order))
	for i, label := range order {
		parts[i] = fmt.Sprintf("%s: %d", label, counts[label])
	}

	return strings.Join(parts, "; ")
}

// sampleSize is the distinct biosample count, falling back to the total
// row count when no biosample column was found.
func sampleSize(samples Sheet, full *table.Table) string {
	col := sheetColumn(samples, "biosample")
	if col != nil {
		distinct := make(map[string]struct{}, len(col))
		allNA := true

		for _, v := range col {
			distinct[v] = struct{}{}

			if v != table.NA {
				allNA = false
			}
		}

		if !allNA {
			return fmt.Sprintf("%d", len(distinct))
		}
	}

	if full != nil {
		return fmt.Sprintf("%d", full.Rows())
	}

	return "0"
}

func sheetColumn(s Sheet, name string) []string {
	idx := -1

	for i, h := range s.Header {
		if h == name {
			idx = i
			break
		}
	}

	if idx < 0 {
		return nil
	}

	col := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		col[i] = row[idx]
	}

	return col
}

func rulesSheet(ruleSet []rules.Rule) Sheet {
	sheet := Sheet{
		Name:   SheetRules,
		Header: []string{"column_name", "grouping_logic", "confidence", "reason"},
	}

	for _, r := range ruleSet {
		logic, err := json.Marshal(r.Logic)
		if err != nil {
			logic = []byte(table.NA)
		}

		sheet.Rows = append(sheet.Rows, []string{
			r.Column, string(logic), r.Confidence, r.Reason,
		})
	}

	return sheet
}

func pubField(pubs []fetch.Publication, get func(fetch.Publication) string) []string {
	out := make([]string, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, get(p))
	}

	return out
}

// joinClean concatenates values with order-preserving deduplication,
// skipping empties and NA sentinels. An empty result is NA.
func joinClean(values []string, sep string) string {
	seen := make(map[string]struct{}, len(values))

	var out []string

	for _, v := range values {
		s := strings.TrimSpace(v)
		if s == "" || strings.EqualFold(s, table.NA) {
			continue
		}

		if _, dup := seen[s]; dup {
			continue
		}

		seen[s] = struct{}{}
		out = append(out, s)
	}

	if len(out) == 0 {
		return table.NA
	}

	return strings.Join(out, sep)
}

func firstNonNA(t *table.Table, name string) string {
	if t == nil {
		return table.NA
	}

	return t.FirstNonNA(name)
}

func naOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return table.NA
	}

	return s
}
