// # internal/output/output_test.go
package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wavetrace/internal/wavedrom"
)

func TestWriteDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	doc := &wavedrom.Document{
		Signal: []wavedrom.Entry{
			{Name: "clk", Wave: "p...."},
			{Name: "count[7:0]", Wave: "=.=..", Data: []string{"0", "1"}},
		},
		Config: wavedrom.DefaultConfig(),
		Head:   wavedrom.DefaultHead(),
		Foot:   wavedrom.DefaultFoot(),
	}

	path, err := WriteDocument(dir, "counter", doc)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "counter.json" {
		t.Errorf("unexpected output path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded wavedrom.Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Signal) != 2 {
		t.Fatalf("expected 2 signal rows, got %d", len(decoded.Signal))
	}
	if decoded.Signal[0].Name != "clk" || decoded.Signal[0].Wave != "p...." {
		t.Errorf("unexpected first row: %+v", decoded.Signal[0])
	}
	if len(decoded.Signal[0].Data) != 0 {
		t.Error("single-bit row must omit data")
	}
	if !strings.Contains(string(data), "  \"signal\"") {
		t.Error("expected two-space indented JSON")
	}
}

func TestTSVGenerator(t *testing.T) {
	gen := NewTSVGenerator([]Report{
		{Sample: "counter", Status: "converted", Signals: 3, Reordered: true, Output: "out/counter.json"},
		{Sample: "fifo", Status: "failed", Error: "waveform: no value changes recorded"},
	})

	tsv, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Sample\tStatus") {
		t.Error("missing header row")
	}
	if !strings.Contains(lines[1], "counter\tconverted\t3\tyes") {
		t.Errorf("unexpected row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "fifo\tfailed\t0\tno") {
		t.Errorf("unexpected row: %s", lines[2])
	}
}
