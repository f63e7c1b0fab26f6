package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaoxunyuan/prjmeta/pkg/fetch"
	"github.com/shaoxunyuan/prjmeta/pkg/rules"
	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

func buildTable(t *testing.T, cols map[string][]string, order []string) *table.Table {
	t.Helper()

	tbl := table.New()
	for _, name := range order {
		require.NoError(t, tbl.AddColumn(name, cols[name]))
	}

	return tbl
}

func testInput(t *testing.T) Input {
	t.Helper()

	order := []string{"run_accession", "biosample", "condition", "instrument", "library_strategy"}
	full := buildTable(t, map[string][]string{
		"run_accession":    {"SRR001", "SRR002", "SRR003", "SRR004"},
		"biosample":        {"SAMN01", "SAMN02", "SAMN03", "SAMN03"},
		"condition":        {"healthy", "healthy", "AS patient", "AS patient"},
		"instrument":       {"NovaSeq 6000", "NovaSeq 6000", "NovaSeq 6000", "NovaSeq 6000"},
		"library_strategy": {"RNA-Seq", "RNA-Seq", "RNA-Seq", "RNA-Seq"},
	}, order)

	ruleSet := []rules.Rule{{
		Column:     "condition",
		Confidence: "High",
		Reason:     "condition separates patients from controls",
		Logic: rules.Logic{
			{Pattern: "healthy", Label: "Control", Kind: rules.MatchExact},
			{Pattern: "AS patient", Label: "AS", Kind: rules.MatchExact},
		},
	}}

	return Input{
		ProjectID: "PRJNA979185",
		Project: &fetch.ProjectFields{
			Accession:    "PRJNA979185",
			OrganismName: "Homo sapiens",
			GEOAccession: "GSE123456",
		},
		Publications: []fetch.Publication{
			{PMID: "39160575", Journal: "Nat Commun", Date: "2024 Aug", DOI: "10.1038/a"},
			{PMID: "39812345", Journal: "Nat Commun", Date: "2025 Jan", DOI: "10.1038/b"},
		},
		Study: rules.StudyFields{
			DiseaseMajor: "Diseases of the musculoskeletal system",
			DiseaseMinor: "Ankylosing spondylitis",
			ICD11Code:    "FA92.0",
			SampleSource: "whole blood",
		},
		Metadata:    full,
		Full:        full,
		Candidates:  []string{"condition"},
		Assignments: rules.Apply(full, ruleSet),
		Rules:       ruleSet,
	}
}

func sheetByName(t *testing.T, r *Report, name string) Sheet {
	t.Helper()

	for _, s := range r.Sheets {
		if s.Name == name {
			return s
		}
	}

	t.Fatalf("sheet %s not found", name)

	return Sheet{}
}

func summaryValue(t *testing.T, s Sheet, field string) string {
	t.Helper()

	for _, row := range s.Rows {
		if row[0] == field {
			return row[1]
		}
	}

	t.Fatalf("summary field %s not found", field)

	return ""
}

func TestAssemble_SheetSet(t *testing.T) {
	r := Assemble(testInput(t))

	var names []string
	for _, s := range r.Sheets {
		names = append(names, s.Name)
	}

	assert.Equal(t, []string{SheetMetadata, SheetProject, SheetSamples, SheetRules}, names)
}

func TestAssemble_NoRulesOmitsRuleSheet(t *testing.T) {
	in := testInput(t)
	in.Rules = nil
	in.Assignments = nil

	r := Assemble(in)

	var names []string
	for _, s := range r.Sheets {
		names = append(names, s.Name)
	}

	assert.Equal(t, []string{SheetMetadata, SheetProject, SheetSamples}, names)

	samples := sheetByName(t, r, SheetSamples)
	assert.Equal(t, []string{"run_accession", "biosample", "condition"}, samples.Header)
}

func TestAssemble_SampleSheetAlignment(t *testing.T) {
	r := Assemble(testInput(t))
	samples := sheetByName(t, r, SheetSamples)

	require.Equal(t, []string{"run_accession", "biosample", "group", "condition"}, samples.Header)
	require.Len(t, samples.Rows, 4)

	assert.Equal(t, []string{"SRR001", "SAMN01", "Control", "healthy"}, samples.Rows[0])
	assert.Equal(t, []string{"SRR003", "SAMN03", "AS", "AS patient"}, samples.Rows[2])
}

func TestAssemble_ProjectSummary(t *testing.T) {
	r := Assemble(testInput(t))
	summary := sheetByName(t, r, SheetProject)

	assert.Equal(t, "PRJNA979185", summaryValue(t, summary, "bioproject"))
	assert.Equal(t, "GSE123456", summaryValue(t, summary, "geo_accession"))
	assert.Equal(t, "39160575,39812345", summaryValue(t, summary, "pmid"))

	// Identical journals collapse; distinct dates are both kept.
	assert.Equal(t, "Nat Commun", summaryValue(t, summary, "journal_name"))
	assert.Equal(t, "2024 Aug; 2025 Jan", summaryValue(t, summary, "publication_data"))
	assert.Equal(t, "10.1038/a; 10.1038/b", summaryValue(t, summary, "publication_doi"))

	assert.Equal(t, "Homo sapiens", summaryValue(t, summary, "species"))
	assert.Equal(t, "Ankylosing spondylitis", summaryValue(t, summary, "disease_minor"))
	assert.Equal(t, "NovaSeq 6000", summaryValue(t, summary, "instrument"))
	assert.Equal(t, "RNA-Seq", summaryValue(t, summary, "library_strategy"))
	assert.Equal(t, "NA", summaryValue(t, summary, "library_layout"))

	assert.Equal(t, "condition", summaryValue(t, summary, "grouping"))
	assert.Equal(t, "Control: 2; AS: 2", summaryValue(t, summary, "group_info"))

	// Two runs share SAMN03, so three distinct biosamples.
	assert.Equal(t, "3", summaryValue(t, summary, "sample_size"))
}

func TestAssemble_DegradedSummary(t *testing.T) {
	in := testInput(t)
	in.Project = nil
	in.Publications = nil
	in.Study = rules.StudyFields{}
	in.Rules = nil
	in.Assignments = nil

	summary := sheetByName(t, Assemble(in), SheetProject)

	for _, field := range []string{
		"geo_accession", "pmid", "journal_name", "publication_data",
		"publication_doi", "species", "disease_major", "grouping", "group_info",
	} {
		assert.Equal(t, "NA", summaryValue(t, summary, field), field)
	}
}

func TestAssemble_RuleSheetPreservesLogicOrder(t *testing.T) {
	in := testInput(t)
	in.Rules = []rules.Rule{{
		Column:     "condition",
		Confidence: "Medium",
		Reason:     "general before specific",
		Logic: rules.Logic{
			{Pattern: "disease", Label: "Disease", Kind: rules.MatchRegex},
			{Pattern: "severe disease", Label: "SevereDisease", Kind: rules.MatchRegex},
		},
	}}

	ruleSheet := sheetByName(t, Assemble(in), SheetRules)
	require.Len(t, ruleSheet.Rows, 1)

	assert.Equal(t, "condition", ruleSheet.Rows[0][0])
	assert.Equal(t,
		`{"regex:disease":"Disease","regex:severe disease":"SevereDisease"}`,
		ruleSheet.Rows[0][1])
}

func TestSampleSheet_ContentBasedIdentifiers(t *testing.T) {
	// Neither header names the run or biosample column, so detection falls
	// back to sniffing cell content.
	order := []string{"acc", "sample_id", "condition"}
	full := buildTable(t, map[string][]string{
		"acc":       {"SRR1000001", "SRR1000002"},
		"sample_id": {"SAMN100001", "SAMN100002"},
		"condition": {"healthy", "tumor"},
	}, order)

	in := Input{ProjectID: "PRJNA1", Metadata: full, Full: full}
	samples := sheetByName(t, Assemble(in), SheetSamples)

	require.Equal(t, []string{"run_accession", "biosample"}, samples.Header)
	assert.Equal(t, []string{"SRR1000001", "SAMN100001"}, samples.Rows[0])
}

func TestJoinClean(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		sep    string
		want   string
	}{
		{name: "dedup preserving order", values: []string{"b", "a", "b"}, sep: ",", want: "b,a"},
		{name: "skips empties and NA", values: []string{"", "NA", "na", "x"}, sep: ",", want: "x"},
		{name: "all empty", values: []string{"", "NA"}, sep: ",", want: "NA"},
		{name: "nil", values: nil, sep: ";", want: "NA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinClean(tt.values, tt.sep))
		})
	}
}
