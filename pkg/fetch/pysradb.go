package fetch

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shaoxunyuan/prjmeta/pkg/table"
)

// PysradbRunner fetches the per-run metadata table by shelling out to the
// pysradb command-line tool.
type PysradbRunner struct {
	// Command is the executable name, "pysradb" unless overridden.
	Command string
}

// NewPysradbRunner creates a runner using the pysradb binary on PATH.
func NewPysradbRunner() *PysradbRunner {
	return &PysradbRunner{Command: "pysradb"}
}

// Check verifies that the pysradb executable is available.
func (r *PysradbRunner) Check() error {
	cmd := exec.Command(r.Command, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s not found, install it with: pip install pysradb", r.Command)
	}

	return nil
}

// Metadata runs `pysradb metadata <id> --detailed --expand` and parses the
// tab-separated output into a table. Missing cells become the NA sentinel.
func (r *PysradbRunner) Metadata(ctx context.Context, id string) (*table.Table, error) {
	cmd := exec.CommandContext(ctx, r.Command, "metadata", id, "--detailed", "--expand")

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("pysradb metadata failed: %s: %w", msg, err)
		}

		return nil, fmt.Errorf("pysradb metadata failed: %w", err)
	}

	return ParseTSV(stdout.Bytes())
}

// ParseTSV parses tab-separated metadata output into a table. Short rows
// are padded so every column keeps the full row count.
func ParseTSV(data []byte) (*table.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata TSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("metadata output has no sample rows")
	}

	header := records[0]
	rows := records[1:]

	t := table.New()
	seen := make(map[string]int, len(header))

	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", col+1)
		}

		// pysradb output may repeat a header name; suffix repeats so
		// every column stays addressable.
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}

		cells := make([]string, len(rows))

		for i, row := range rows {
			if col < len(row) {
				cells[i] = row[col]
			}
		}

		if err := t.AddColumn(name, cells); err != nil {
			return nil, err
		}
	}

	return t, nil
}
