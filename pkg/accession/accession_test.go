package accession

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"PRJNA979185", BioProject},
		{"PRJEB12345", BioProject},
		{"PRJDB4321", BioProject},
		{"prjna979185", BioProject},
		{"  PRJNA979185  ", BioProject},
		{"GSE123456", GEOSeries},
		{"GSM987654", GEOSample},
		{"SRP123456", SRAStudy},
		{"ERP123456", SRAStudy},
		{"SAMN12345678", BioSample},
		{"SAME12345678", BioSample},
		{"SRS123456", SRASample},
		{"SRX123456", Experiment},
		{"SRR123456", Run},
		{"ERR1234567", Run},
		{"DRR123456", Run},
		{"SRR123", Unknown}, // too few digits for a run
		{"PRJ123", Unknown},
		{"NC_000001", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.input); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsBioProject(t *testing.T) {
	valid := []string{"PRJNA979185", "PRJEB1", "PRJDB99999"}
	for _, id := range valid {
		if !IsBioProject(id) {
			t.Errorf("IsBioProject(%q) = false, want true", id)
		}
	}

	invalid := []string{"GSE123456", "SRR123456", "PRJNA", "PRJXA123", ""}
	for _, id := range invalid {
		if IsBioProject(id) {
			t.Errorf("IsBioProject(%q) = true, want false", id)
		}
	}
}

func TestDetectColumn(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  Kind
	}{
		{
			name:  "runs",
			cells: []string{"SRR000001", "SRR000002", "SRR000003"},
			want:  Run,
		},
		{
			name:  "biosamples with one NA",
			cells: []string{"SAMN01", "NA", "SAMN02", "SAMN03"},
			want:  BioSample,
		},
		{
			name:  "mixed below majority",
			cells: []string{"SRR000001", "healthy", "patient", "control"},
			want:  Unknown,
		},
		{
			name:  "free text",
			cells: []string{"healthy", "patient"},
			want:  Unknown,
		},
		{
			name:  "all NA",
			cells: nil,
			want:  Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectColumn(tt.cells); got != tt.want {
				t.Errorf("DetectColumn(%v) = %v, want %v", tt.cells, got, tt.want)
			}
		})
	}
}
