// # internal/app/app_test.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavetrace/internal/config"
	"wavetrace/internal/wavedrom"
)

const counterVerilog = `
module counter (
    input wire clk,
    input wire rst,
    output reg [7:0] count
);
endmodule
`

const counterVCD = `$timescale 1ns $end
$scope module counter $end
$var wire 1 ! clk $end
$var wire 1 " rst $end
$var wire 8 # count [7:0] $end
$upscope $end
$enddefinitions $end
#0
0!
1"
b00000000 #
#5
1!
#10
0!
b00000001 #
#15
1!
#20
0!
`

func writeSample(t *testing.T, dir, stem string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".v"), []byte(counterVerilog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".vcd"), []byte(counterVCD), 0o644))
}

func testConfig(t *testing.T, sampleDir, outDir string) *config.Config {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "wavetrace.toml")
	content := `
sample_dirs = ["` + sampleDir + `"]
output_dir = "` + outDir + `"
workers = 2
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	return cfg
}

func TestDiscoverSamples(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "counter")

	// A source without a dump must be skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.v"), []byte(counterVerilog), 0o644))

	// Per-sample order file wins over the shared one.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.order.txt"), []byte("rst\nclk\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signal_order.txt"), []byte("clk\n"), 0o644))

	a, err := New(testConfig(t, dir, filepath.Join(dir, "out")))
	require.NoError(t, err)
	defer a.Close()

	samples, err := a.DiscoverSamples()
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "counter", samples[0].Name)
	assert.Equal(t, filepath.Join(dir, "counter.order.txt"), samples[0].OrderPath)
}

func TestDiscoverSamplesSharedOrderFile(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "counter")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signal_order.txt"), []byte("clk\n"), 0o644))

	a, err := New(testConfig(t, dir, filepath.Join(dir, "out")))
	require.NoError(t, err)
	defer a.Close()

	samples, err := a.DiscoverSamples()
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, filepath.Join(dir, "signal_order.txt"), samples[0].OrderPath)
}

func TestConvertSample(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "counter")

	a, err := New(testConfig(t, dir, filepath.Join(dir, "out")))
	require.NoError(t, err)
	defer a.Close()

	res := a.ConvertSample(context.Background(), Sample{
		Name:        "counter",
		VerilogPath: filepath.Join(dir, "counter.v"),
		VCDPath:     filepath.Join(dir, "counter.vcd"),
	})
	require.NoError(t, res.Err)
	require.NotNil(t, res.Document)
	require.Equal(t, 3, res.SignalCount())

	assert.Equal(t, "clk", res.Document.Signal[0].Name)
	assert.Equal(t, "p...", res.Document.Signal[0].Wave)
	assert.Equal(t, "rst", res.Document.Signal[1].Name)
	assert.Equal(t, "1...", res.Document.Signal[1].Wave)
	assert.Equal(t, "count[7:0]", res.Document.Signal[2].Name)
	assert.Equal(t, "=.=.", res.Document.Signal[2].Wave)
	assert.Equal(t, []string{"0", "1"}, res.Document.Signal[2].Data)
}

func TestConvertSampleStageErrors(t *testing.T) {
	dir := t.TempDir()
	a, err := New(testConfig(t, dir, filepath.Join(dir, "out")))
	require.NoError(t, err)
	defer a.Close()

	badVerilog := filepath.Join(dir, "bad.v")
	require.NoError(t, os.WriteFile(badVerilog, []byte("wire x;"), 0o644))
	goodVCD := filepath.Join(dir, "bad.vcd")
	require.NoError(t, os.WriteFile(goodVCD, []byte(counterVCD), 0o644))

	res := a.ConvertSample(context.Background(), Sample{
		Name: "bad", VerilogPath: badVerilog, VCDPath: goodVCD,
	})
	require.Error(t, res.Err)
	var stageErr *StageError
	require.ErrorAs(t, res.Err, &stageErr)
	assert.Equal(t, "verilog", stageErr.Stage)

	goodVerilog := filepath.Join(dir, "empty.v")
	require.NoError(t, os.WriteFile(goodVerilog, []byte(counterVerilog), 0o644))
	emptyVCD := filepath.Join(dir, "empty.vcd")
	require.NoError(t, os.WriteFile(emptyVCD, []byte("$enddefinitions $end\n"), 0o644))

	res = a.ConvertSample(context.Background(), Sample{
		Name: "empty", VerilogPath: goodVerilog, VCDPath: emptyVCD,
	})
	require.Error(t, res.Err)
	require.ErrorAs(t, res.Err, &stageErr)
	assert.Equal(t, "vcd", stageErr.Stage)
}

func TestConvertSampleReorders(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "counter")
	orderPath := filepath.Join(dir, "counter.order.txt")
	require.NoError(t, os.WriteFile(orderPath, []byte("count[7:0]\nrst\ncik\n"), 0o644))

	a, err := New(testConfig(t, dir, filepath.Join(dir, "out")))
	require.NoError(t, err)
	defer a.Close()

	res := a.ConvertSample(context.Background(), Sample{
		Name:        "counter",
		VerilogPath: filepath.Join(dir, "counter.v"),
		VCDPath:     filepath.Join(dir, "counter.vcd"),
		OrderPath:   orderPath,
	})
	require.NoError(t, res.Err)
	require.True(t, res.Reordered)
	require.Equal(t, 3, res.SignalCount())

	// "cik" is OCR noise for clk and still lands in the right slot.
	assert.Equal(t, "count[7:0]", res.Document.Signal[0].Name)
	assert.Equal(t, "rst", res.Document.Signal[1].Name)
	assert.Equal(t, "clk", res.Document.Signal[2].Name)
}

func TestRunScan(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	writeSample(t, dir, "counter")
	writeSample(t, dir, "fifo")

	cfg := testConfig(t, dir, outDir)
	cfg.History.Path = filepath.Join(dir, "history.db")

	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.RunScan(context.Background()))

	for _, name := range []string{"counter", "fifo"} {
		data, err := os.ReadFile(filepath.Join(outDir, name+".json"))
		require.NoError(t, err)

		var doc wavedrom.Document
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Len(t, doc.Signal, 3)
	}

	summary, err := os.ReadFile(filepath.Join(outDir, "summary.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "counter\tconverted")
	assert.Contains(t, string(summary), "fifo\tconverted")

	runs, err := a.store.LoadRuns(time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].SampleCount)
	assert.Equal(t, 2, runs[0].ConvertedCount)
	assert.Equal(t, 0, runs[0].FailedCount)
	assert.Equal(t, 6, runs[0].SignalCount)
}

func TestRunScanAllFailed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.v"), []byte("wire x;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.vcd"), []byte(counterVCD), 0o644))

	a, err := New(testConfig(t, dir, filepath.Join(dir, "out")))
	require.NoError(t, err)
	defer a.Close()

	require.Error(t, a.RunScan(context.Background()))
}

func TestStageErrorFormat(t *testing.T) {
	err := &StageError{Stage: "waveform", Err: errors.New("no value changes recorded")}
	assert.Equal(t, "waveform: no value changes recorded", err.Error())
}
