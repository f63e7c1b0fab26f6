// Package accession recognizes the biological database identifiers that
// flow through the pipeline: the BioProject accession given on the command
// line and the SRA/GEO/BioSample identifiers appearing in fetched metadata
// columns.
package accession

import (
	"regexp"
	"strings"

	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// Kind is the category of a recognized accession.
type Kind string

const (
	BioProject Kind = "bioproject" // PRJNA, PRJEB, PRJDB
	GEOSeries  Kind = "geo_series" // GSE
	GEOSample  Kind = "geo_sample" // GSM
	SRAStudy   Kind = "sra_study"  // SRP, ERP, DRP
	BioSample  Kind = "biosample"  // SAMN, SAME, SAMD
	SRASample  Kind = "sra_sample" // SRS, ERS, DRS
	Experiment Kind = "sra_experiment"
	Run        Kind = "sra_run" // SRR, ERR, DRR
	Unknown    Kind = "unknown"
)

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Patterns are checked in order; the more specific project-level forms come
// before the granular run-level ones.
var patterns = []pattern{
	{BioProject, regexp.MustCompile(`^PRJ[EDN][A-Z]\d+$`)},
	{GEOSeries, regexp.MustCompile(`^GSE\d+$`)},
	{SRAStudy, regexp.MustCompile(`^[EDS]RP\d{6,}$`)},
	{BioSample, regexp.MustCompile(`^SAM[NED]\d+$`)},
	{SRASample, regexp.MustCompile(`^[EDS]RS\d{6,}$`)},
	{GEOSample, regexp.MustCompile(`^GSM\d+$`)},
	{Experiment, regexp.MustCompile(`^[EDS]RX\d{6,}$`)},
	{Run, regexp.MustCompile(`^[EDS]RR\d{6,}$`)},
}

// Detect classifies a single identifier. Case and surrounding whitespace
// are ignored.
func Detect(input string) Kind {
	normalized := strings.ToUpper(strings.TrimSpace(input))

	for _, p := range patterns {
		if p.re.MatchString(normalized) {
			return p.kind
		}
	}

	return Unknown
}

// IsBioProject reports whether the input is a well-formed BioProject
// accession (PRJNA / PRJEB / PRJDB and friends).
func IsBioProject(input string) bool {
	return Detect(input) == BioProject
}

// DetectColumn sniffs a column's content and returns the accession kind
// that more than half of its non-NA cells share, or Unknown.
func DetectColumn(cells []string) Kind {
	counts := make(map[Kind]int)
	total := 0

	for _, cell := range cells {
		if cell == table.NA || strings.TrimSpace(cell) == "" {
			continue
		}

		total++

		if kind := Detect(cell); kind != Unknown {
			counts[kind]++
		}
	}

	for kind, n := range counts {
		if 2*n > total {
			return kind
		}
	}

	return Unknown
}
