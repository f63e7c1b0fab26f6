package table

import "strings"

// downloadKeys marks columns that carry bulk-download artifacts (transfer
// protocols, checksums, file paths) rather than biological signal. Matched
// as case-insensitive substrings of the column name.
var downloadKeys = []string{
	"ftp", "http", "url", "aspera", "download", "md5",
	"fastq", "bam", "cram", "sra_file",
}

// StripDownloadColumns returns a derived table without download-artifact
// columns. Column order is preserved.
func StripDownloadColumns(t *Table) *Table {
	if t == nil || t.Cols() == 0 {
		return t
	}

	var keep []string

	for _, name := range t.names {
		lower := strings.ToLower(name)
		drop := false

		for _, key := range downloadKeys {
			if strings.Contains(lower, key) {
				drop = true
				break
			}
		}

		if !drop {
			keep = append(keep, name)
		}
	}

	return t.Select(keep)
}

// Deduplicate returns a derived table without columns that carry no
// grouping signal: columns with fewer than two distinct values (entirely
// empty or constant) and columns whose row-wise value sequence exactly
// duplicates an earlier column. The leftmost of a duplicate set survives.
// The pass is pure and idempotent.
func Deduplicate(t *Table) *Table {
	if t == nil || t.Cols() == 0 {
		return t
	}

	seen := make(map[string]struct{}, len(t.names))

	var keep []string

	for _, name := range t.names {
		if t.DistinctCount(name) < 2 {
			continue
		}

		key := strings.Join(t.cols[name], "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		keep = append(keep, name)
	}

	return t.Select(keep)
}
