package table

import (
	"fmt"
	"reflect"
	"testing"
)

func TestSelectCandidates(t *testing.T) {
	tbl := mustTable(t, [][2]any{
		// Identifier-like names are excluded regardless of cardinality.
		{"run_accession", []string{"SRR1", "SRR2", "SRR3", "SRR4"}},
		{"biosample_url", []string{"u1", "u2", "u3", "u4"}},
		// One distinct value: no grouping signal.
		{"organism", []string{"human", "human", "human", "human"}},
		// Two distinct values: a plausible grouping dimension.
		{"condition", []string{"healthy", "healthy", "AS", "AS"}},
		// Too many distinct values for 4 rows (ceiling is max(2, 4/2) = 2).
		{"title", []string{"t1", "t2", "t3", "t3"}},
	})

	got := SelectCandidates(tbl)
	want := []string{"condition"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSelectCandidates_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		distinct int
		want     bool
	}{
		{name: "k=1 excluded", rows: 30, distinct: 1, want: false},
		{name: "k=2 included", rows: 30, distinct: 2, want: true},
		{name: "k=10 included at large n", rows: 30, distinct: 10, want: true},
		{name: "k=11 above hard cap", rows: 30, distinct: 11, want: false},
		{name: "k=3 above n/2 ceiling", rows: 4, distinct: 3, want: false},
		{name: "tiny table still allows k=2", rows: 3, distinct: 2, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := make([]string, tt.rows)
			for i := range cells {
				cells[i] = fmt.Sprintf("v%d", i%tt.distinct)
			}

			tbl := mustTable(t, [][2]any{{"phenotype", cells}})

			got := SelectCandidates(tbl)
			included := len(got) == 1

			if included != tt.want {
				t.Errorf("rows=%d distinct=%d: included=%t, want %t",
					tt.rows, tt.distinct, included, tt.want)
			}
		})
	}
}

func TestSelectCandidates_ExcludedNames(t *testing.T) {
	excluded := []string{
		"Run", "run_accession", "SRR_id", "srx_accession", "gsm_title",
		"SAMN_id", "fastq_md5", "download_path", "total_size", "study_accession",
	}

	for _, name := range excluded {
		t.Run(name, func(t *testing.T) {
			tbl := mustTable(t, [][2]any{
				{name, []string{"a", "a", "b", "b"}},
			})

			if got := SelectCandidates(tbl); len(got) != 0 {
				t.Errorf("expected %q to be excluded, got %v", name, got)
			}
		})
	}
}

func TestSelectCandidates_OrderPreserved(t *testing.T) {
	tbl := mustTable(t, [][2]any{
		{"tissue", []string{"lung", "lung", "liver", "liver"}},
		{"condition", []string{"a", "a", "b", "b"}},
		{"timepoint", []string{"day0", "day7", "day0", "day7"}},
	})

	want := []string{"tissue", "condition", "timepoint"}
	if got := SelectCandidates(tbl); !reflect.DeepEqual(got, want) {
		t.Errorf("expected column order %v, got %v", want, got)
	}
}

func TestSelectCandidates_Empty(t *testing.T) {
	if got := SelectCandidates(nil); got != nil {
		t.Errorf("expected nil for nil table, got %v", got)
	}

	if got := SelectCandidates(New()); got != nil {
		t.Errorf("expected nil for empty table, got %v", got)
	}
}
