// Package pipeline orchestrates one project run: metadata fetch, column
// normalization, oracle consultation, rule application, and workbook
// assembly. External collaborators are injected as ports so the run logic
// is testable without network or subprocess dependencies.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shaoxunyuan/prjmeta/pkg/fetch"
	"github.com/shaoxunyuan/prjmeta/pkg/oracle"
	"github.com/shaoxunyuan/prjmeta/pkg/prompt"
	"github.com/shaoxunyuan/prjmeta/pkg/report"
	"github.com/shaoxunyuan/prjmeta/pkg/rules"
	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// Config holds per-run settings.
type Config struct {
	Outdir  string
	Quiet   bool
	Verbose bool
}

// Deps are the external collaborators of a run.
type Deps struct {
	Registry   fetch.Registry
	Literature fetch.Literature
	Source     fetch.MetadataSource
	Oracle     oracle.Oracle
}

// Result reports what a completed run produced.
type Result struct {
	WorkbookPath string
	PromptPath   string
	Rules        []rules.Rule
	Warnings     []string
	Grouped      bool
}

// Pipeline runs the full analysis for one project accession.
type Pipeline struct {
	config Config
	deps   Deps
}

// New creates a pipeline. Missing optional collaborators (registry,
// literature, oracle) degrade the matching stage instead of failing; the
// metadata source is mandatory.
func New(config Config, deps Deps) *Pipeline {
	return &Pipeline{config: config, deps: deps}
}

// Run executes the pipeline for one project ID and writes the workbook
// and prompt artifacts into the configured output directory.
func (p *Pipeline) Run(ctx context.Context, projectID string) (*Result, error) {
	if p.deps.Source == nil {
		return nil, fmt.Errorf("metadata source is required")
	}

	if err := p.deps.Source.Check(); err != nil {
		return nil, err
	}

	outdir := p.config.Outdir
	if outdir == "" {
		outdir = "."
	}

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &Result{
		WorkbookPath: filepath.Join(outdir, projectID+"_metadata.xlsx"),
		PromptPath:   filepath.Join(outdir, projectID+"_deepseek_prompt.txt"),
	}

	// Stage 1: project-level lookups. Failures here degrade the summary
	// fields to NA, they never abort the run.
	p.progress("[1/4] Fetching BioProject / GEO / PubMed information...")

	project, publications := p.fetchProjectInfo(ctx, projectID, result)

	// Stage 2: the per-run sample table. Without it there is nothing to
	// report, so failure is fatal.
	p.progress("[2/4] Fetching run metadata via pysradb...")

	full, err := p.deps.Source.Metadata(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", projectID, err)
	}

	p.progress("  %d runs x %d columns", full.Rows(), full.Cols())

	stripped := table.StripDownloadColumns(full)
	p.describeColumns(stripped)

	// Stage 3: oracle consultation over the deduplicated column preview.
	p.progress("[3/4] Building oracle prompt and requesting analysis...")

	clean := table.Deduplicate(stripped)

	promptText := prompt.Build(prompt.Data{
		ProjectID:    projectID,
		GeneratedAt:  time.Now(),
		Project:      project,
		Publications: publications,
		Preview:      prompt.Preview(clean),
	})

	if err := os.WriteFile(result.PromptPath, []byte(promptText), 0o644); err != nil {
		return nil, fmt.Errorf("failed to save prompt: %w", err)
	}

	analysis := p.consultOracle(ctx, promptText, full, result)

	// Stage 4: rule application and workbook assembly.
	p.progress("[4/4] Applying grouping rules and writing workbook...")

	assignments := rules.Apply(full, analysis.Rules)
	candidates := table.SelectCandidates(stripped)

	workbook := report.Assemble(report.Input{
		ProjectID:    projectID,
		Project:      project,
		Publications: publications,
		Study:        analysis.Study,
		Metadata:     stripped,
		Full:         full,
		Candidates:   candidates,
		Assignments:  assignments,
		Rules:        analysis.Rules,
	})

	if err := workbook.WriteFile(result.WorkbookPath); err != nil {
		return nil, err
	}

	result.Rules = analysis.Rules
	result.Grouped = len(analysis.Rules) > 0

	p.progress("Done: %s", result.WorkbookPath)

	return result, nil
}

// fetchProjectInfo performs the recoverable registry and literature
// lookups.
func (p *Pipeline) fetchProjectInfo(ctx context.Context, projectID string, result *Result) (*fetch.ProjectFields, []fetch.Publication) {
	var (
		project      *fetch.ProjectFields
		publications []fetch.Publication
	)

	if p.deps.Registry != nil {
		fields, err := p.deps.Registry.Project(ctx, projectID)
		if err != nil {
			p.warn(result, "BioProject lookup failed: %v", err)
		} else {
			project = fields
		}
	}

	geo := ""
	if project != nil {
		geo = project.GEOAccession
	}

	if p.deps.Literature != nil && geo != "" {
		pubs, err := p.deps.Literature.Publications(ctx, geo)
		if err != nil {
			p.warn(result, "GEO/PubMed lookup failed: %v", err)
		} else {
			publications = pubs
		}
	}

	if !p.config.Quiet {
		pmid := table.NA
		if len(publications) > 0 {
			pmid = publications[0].PMID
		}

		fmt.Printf("  %s / %s / %s\n", projectID, orNA(geo), pmid)
	}

	return project, publications
}

// consultOracle performs the single oracle call and parses the reply.
// Any failure degrades to an empty analysis: the workbook is still
// produced, just without group columns or a rule-documentation sheet.
func (p *Pipeline) consultOracle(ctx context.Context, promptText string, full *table.Table, result *Result) *rules.Analysis {
	empty := &rules.Analysis{Study: rules.StudyFields{
		DiseaseMajor: table.NA,
		DiseaseMinor: table.NA,
		ICD11Code:    table.NA,
		SampleSource: table.NA,
	}}

	if p.deps.Oracle == nil {
		p.warn(result, "no oracle configured, skipping grouping analysis")
		return empty
	}

	response, err := p.deps.Oracle.Classify(ctx, prompt.SystemRole, promptText)
	if err != nil {
		p.warn(result, "oracle call failed: %v", err)
		return empty
	}

	analysis, err := rules.Parse(response, full)
	if err != nil {
		p.warn(result, "could not parse oracle response: %v", err)
		return empty
	}

	for _, w := range analysis.Warnings {
		p.warn(result, "%s", w)
	}

	for _, rule := range analysis.Rules {
		p.progress("  rule on %q (%s): %s", rule.Column, rule.Confidence, rule.Reason)
	}

	return analysis
}

// describeColumns prints the per-column distinct-value report.
func (p *Pipeline) describeColumns(t *table.Table) {
	if !p.config.Verbose {
		return
	}

	for _, name := range t.Names() {
		fmt.Printf("  - %s: %d unique values\n", name, t.DistinctCount(name))
	}
}

func (p *Pipeline) progress(format string, args ...any) {
	if !p.config.Quiet {
		fmt.Printf(format+"\n", args...)
	}
}

func (p *Pipeline) warn(result *Result, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	result.Warnings = append(result.Warnings, msg)
	fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
}

func orNA(s string) string {
	if s == "" {
		return table.NA
	}

	return s
}
