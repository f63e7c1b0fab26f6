// Package fetch provides the external collaborators of the grouping
// pipeline behind small ports: the NCBI registry lookup for project-level
// fields, the literature lookup for linked publications, and the
// sequencing-read archive metadata source (pysradb). Each port has one
// real implementation and can be replaced with a canned double in tests.
package fetch

import (
	"context"

	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// ProjectFields holds the project-level record returned by the registry
// lookup. The struct is embedded as JSON into the oracle prompt.
type ProjectFields struct {
	Accession    string `json:"accession"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	OrganismName string `json:"organism_name"`
	DataType     string `json:"data_type,omitempty"`
	TargetScope  string `json:"target_scope,omitempty"`
	MethodType   string `json:"method_type,omitempty"`
	Registration string `json:"registration_date,omitempty"`
	GEOAccession string `json:"geo_accession,omitempty"`
}

// Publication is one literature record linked to a project's dataset.
type Publication struct {
	PMID    string `json:"pmid"`
	Title   string `json:"title,omitempty"`
	Journal string `json:"journal"`
	Date    string `json:"pub_date"`
	DOI     string `json:"doi"`
}

// Registry returns project-level fields for a sequencing-project accession.
type Registry interface {
	Project(ctx context.Context, id string) (*ProjectFields, error)
}

// Literature returns zero or more publications associated with a
// gene-expression dataset accession.
type Literature interface {
	Publications(ctx context.Context, geoAccession string) ([]Publication, error)
}

// MetadataSource returns the per-run sample table for a project.
type MetadataSource interface {
	// Check verifies that the source is usable before any network work.
	Check() error

	// Metadata fetches the full per-run metadata table.
	Metadata(ctx context.Context, id string) (*table.Table, error)
}
