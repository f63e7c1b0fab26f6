// Package test holds the end-to-end fixtures: a canned pysradb metadata
// table, a canned oracle reply, and in-memory doubles for the pipeline's
// external collaborators.
package test

import (
	"context"
	"strings"

	"github.com/shaoxunyuan/prjmeta/pkg/fetch"
	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// ProjectID is the accession all fixtures describe.
const ProjectID = "PRJNA979185"

// RunsTSV mimics `pysradb metadata --detailed --expand` output: six runs
// of a treatment time course, including a download-link column and a
// constant column that normalization removes before the oracle sees the
// table.
var RunsTSV = strings.Join([]string{
	strings.Join([]string{
		"run_accession", "experiment_accession", "biosample",
		"organism_name", "instrument", "library_strategy",
		"treatment", "collection_time", "fastq_ftp",
	}, "\t"),
	strings.Join([]string{"SRR2400001", "SRX1200001", "SAMN36000001", "Homo sapiens", "NovaSeq 6000", "RNA-Seq", "untreated control", "第0天", "ftp://e/1"}, "\t"),
	strings.Join([]string{"SRR2400002", "SRX1200002", "SAMN36000002", "Homo sapiens", "NovaSeq 6000", "RNA-Seq", "untreated control", "第3天", "ftp://e/2"}, "\t"),
	strings.Join([]string{"SRR2400003", "SRX1200003", "SAMN36000003", "Homo sapiens", "NovaSeq 6000", "RNA-Seq", "untreated control", "第7天", "ftp://e/3"}, "\t"),
	strings.Join([]string{"SRR2400004", "SRX1200004", "SAMN36000004", "Homo sapiens", "NovaSeq 6000", "RNA-Seq", "anti-TNF treated", "第0天", "ftp://e/4"}, "\t"),
	strings.Join([]string{"SRR2400005", "SRX1200005", "SAMN36000005", "Homo sapiens", "NovaSeq 6000", "RNA-Seq", "anti-TNF treated", "第3天", "ftp://e/5"}, "\t"),
	strings.Join([]string{"SRR2400006", "SRX1200006", "SAMN36000006", "Homo sapiens", "NovaSeq 6000", "RNA-Seq", "anti-TNF treated", "第7天", "ftp://e/6"}, "\t"),
}, "\n") + "\n"

// OracleReply is a realistic chat completion: prose around a JSON object,
// with one regex rule and one exact rule whose labels need normalization
// ("control group" and the CJK day phrasing).
const OracleReply = `Based on the metadata, this is a treatment time course.

{
  "disease_major": "Diseases of the musculoskeletal system",
  "disease_minor": "Ankylosing spondylitis",
  "icd11_code": "FA92.0",
  "sample_source": "whole blood",
  "grouping_columns": [
    {
      "column_name": "treatment",
      "grouping_logic": {"regex:control": "control group", "regex:anti-TNF": "anti-TNF"},
      "confidence": "High",
      "reason": "treatment distinguishes anti-TNF exposure from untreated controls"
    },
    {
      "column_name": "collection_time",
      "grouping_logic": {"第0天": "第0天", "第3天": "第3天", "第7天": "第7天"},
      "confidence": "Medium",
      "reason": "collection_time captures the sampling day"
    }
  ]
}

Let me know if you need anything else.`

// Project and Publications are the registry/literature fixtures.
var Project = &fetch.ProjectFields{
	Accession:    ProjectID,
	Title:        "Whole blood RNA-seq of anti-TNF treated AS patients",
	OrganismName: "Homo sapiens",
	DataType:     "Transcriptome or Gene expression",
	GEOAccession: "GSE234001",
}

var Publications = []fetch.Publication{
	{PMID: "39160575", Title: "Anti-TNF response in AS", Journal: "Nat Commun", Date: "2024 Aug", DOI: "10.1038/s41467-024-0001"},
}

// Source parses RunsTSV on demand, standing in for the pysradb runner.
type Source struct{}

func (Source) Check() error { return nil }

func (Source) Metadata(context.Context, string) (*table.Table, error) {
	return fetch.ParseTSV([]byte(RunsTSV))
}

// Registry returns the canned project fields.
type Registry struct{}

func (Registry) Project(context.Context, string) (*fetch.ProjectFields, error) {
	return Project, nil
}

// Literature returns the canned publication list.
type Literature struct{}

func (Literature) Publications(context.Context, string) ([]fetch.Publication, error) {
	return Publications, nil
}

// Oracle replies with the canned analysis and records the prompt it saw.
type Oracle struct {
	Prompt string
}

func (o *Oracle) Classify(_ context.Context, _, prompt string) (string, error) {
	o.Prompt = prompt

	return OracleReply, nil
}
