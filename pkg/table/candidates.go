package table

import "strings"

// excludeKeys marks identifier-like columns that can never be grouping
// dimensions: accessions, run identifiers, and download artifacts.
// Matched as case-insensitive substrings of the column name.
var excludeKeys = []string{
	"acc", "accession", "run", "srr", "srx", "srs", "sra",
	"gsm", "samn", "ftp", "http", "url", "md5", "download", "size",
}

// maxCandidateDistinct caps how many distinct values a plausible grouping
// column may have. Columns above the cap look like free identifiers.
const maxCandidateDistinct = 10

// SelectCandidates returns, in column order, the names of columns that are
// statistically plausible grouping dimensions: not identifier-like, with a
// distinct-value count k satisfying 2 <= k <= min(10, max(2, rows/2)).
func SelectCandidates(t *Table) []string {
	if t == nil || t.Cols() == 0 {
		return nil
	}

	ceiling := t.Rows() / 2
	if ceiling < 2 {
		ceiling = 2
	}

	if ceiling > maxCandidateDistinct {
		ceiling = maxCandidateDistinct
	}

	var out []string

	for _, name := range t.names {
		if isExcludedName(name) {
			continue
		}

		k := t.DistinctCount(name)
		if k >= 2 && k <= ceiling {
			out = append(out, name)
		}
	}

	return out
}

func isExcludedName(name string) bool {
	lower := strings.ToLower(name)
	for _, key := range excludeKeys {
		if strings.Contains(lower, key) {
			return true
		}
	}

	return false
}
