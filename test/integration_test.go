package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shaoxunyuan/prjmeta/internal/pipeline"
	"github.com/shaoxunyuan/prjmeta/pkg/report"
)

func runFixturePipeline(t *testing.T) (*pipeline.Result, *Oracle) {
	t.Helper()

	oracle := &Oracle{}

	p := pipeline.New(
		pipeline.Config{Outdir: t.TempDir(), Quiet: true},
		pipeline.Deps{
			Registry:   Registry{},
			Literature: Literature{},
			Source:     Source{},
			Oracle:     oracle,
		},
	)

	result, err := p.Run(context.Background(), ProjectID)
	require.NoError(t, err)

	return result, oracle
}

func TestEndToEnd_Artifacts(t *testing.T) {
	result, oracle := runFixturePipeline(t)

	assert.True(t, result.Grouped)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Rules, 2)
	assert.Equal(t, "treatment", result.Rules[0].Column)
	assert.Equal(t, "collection_time", result.Rules[1].Column)

	// The saved prompt is exactly what the oracle received, and the
	// download-link column never reaches it.
	saved, err := os.ReadFile(result.PromptPath)
	require.NoError(t, err)
	assert.Equal(t, oracle.Prompt, string(saved))
	assert.NotContains(t, oracle.Prompt, "fastq_ftp")
	assert.Contains(t, oracle.Prompt, "treatment")
	assert.Contains(t, oracle.Prompt, ProjectID)

	assert.Equal(t, ProjectID+"_metadata.xlsx", filepath.Base(result.WorkbookPath))
	assert.Equal(t, ProjectID+"_deepseek_prompt.txt", filepath.Base(result.PromptPath))
}

func TestEndToEnd_Workbook(t *testing.T) {
	result, _ := runFixturePipeline(t)

	f, err := excelize.OpenFile(result.WorkbookPath)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		[]string{report.SheetMetadata, report.SheetProject, report.SheetSamples, report.SheetRules},
		f.GetSheetList())

	rows, err := f.GetRows(report.SheetSamples)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	assert.Equal(t,
		[]string{"run_accession", "biosample", "group", "subgroup1", "treatment", "collection_time"},
		rows[0])

	// "control group" normalizes to "control"; the CJK day phrasing
	// normalizes to dayN.
	assert.Equal(t,
		[]string{"SRR2400001", "SAMN36000001", "control", "day0", "untreated control", "第0天"},
		rows[1])
	assert.Equal(t,
		[]string{"SRR2400006", "SAMN36000006", "anti-TNF", "day7", "anti-TNF treated", "第7天"},
		rows[6])

	// Constant columns are dropped from the metadata sheet only by the
	// oracle preview, not here; the stripped table keeps them but loses
	// the download links.
	meta, err := f.GetRows(report.SheetMetadata)
	require.NoError(t, err)
	assert.Contains(t, meta[0], "instrument")
	assert.NotContains(t, meta[0], "fastq_ftp")
}

func TestEndToEnd_ProjectSummary(t *testing.T) {
	result, _ := runFixturePipeline(t)

	f, err := excelize.OpenFile(result.WorkbookPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetProject)
	require.NoError(t, err)

	fields := make(map[string]string, len(rows))
	for _, row := range rows[1:] {
		if len(row) >= 2 {
			fields[row[0]] = row[1]
		}
	}

	assert.Equal(t, ProjectID, fields["bioproject"])
	assert.Equal(t, "GSE234001", fields["geo_accession"])
	assert.Equal(t, "39160575", fields["pmid"])
	assert.Equal(t, "Homo sapiens", fields["species"])
	assert.Equal(t, "Ankylosing spondylitis", fields["disease_minor"])
	assert.Equal(t, "FA92.0", fields["icd11_code"])
	assert.Equal(t, "NovaSeq 6000", fields["instrument"])
	assert.Equal(t, "RNA-Seq", fields["library_strategy"])
	assert.Equal(t, "treatment, collection_time", fields["grouping"])
	assert.Equal(t, "control: 3; anti-TNF: 3", fields["group_info"])
	assert.Equal(t, "6", fields["sample_size"])
}

func TestEndToEnd_RulesSheet(t *testing.T) {
	result, _ := runFixturePipeline(t)

	f, err := excelize.OpenFile(result.WorkbookPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetRules)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"column_name", "grouping_logic", "confidence", "reason"}, rows[0])
	assert.Equal(t, "treatment", rows[1][0])
	assert.Equal(t, `{"regex:control":"control group","regex:anti-TNF":"anti-TNF"}`, rows[1][1])
	assert.Equal(t, "High", rows[1][2])
	assert.Equal(t, "collection_time", rows[2][0])
}
