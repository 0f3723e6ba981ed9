// # internal/app/app.go
package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"wavetrace/internal/config"
	"wavetrace/internal/history"
	"wavetrace/internal/shared/util"
)

// Sample is one discovered conversion unit: a Verilog source with its
// value-change dump and an optional reference order file.
type Sample struct {
	Name        string
	VerilogPath string
	VCDPath     string
	OrderPath   string
}

// StageError marks which pipeline stage a sample failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// App owns the conversion pipeline and its supporting services.
type App struct {
	cfg          *config.Config
	store        *history.Store
	limiter      *util.Limiter
	excludeGlobs []glob.Glob
}

func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:     cfg,
		limiter: util.NewLimiter(cfg.Watch.RatePerSecond, cfg.Watch.Burst),
	}

	for _, pattern := range cfg.Encoder.ExcludeSignals {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", pattern, err)
		}
		a.excludeGlobs = append(a.excludeGlobs, g)
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.store = store
	}

	return a, nil
}

func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// DiscoverSamples walks the configured sample directories and pairs each
// Verilog source with its sibling dump. Sources without a dump are skipped.
// The order file is <stem>.order.txt when present, otherwise the directory's
// shared signal_order.txt.
func (a *App) DiscoverSamples() ([]Sample, error) {
	var samples []Sample
	seen := make(map[string]int)

	for _, dir := range a.cfg.SampleDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".v") {
				return nil
			}

			stem := strings.TrimSuffix(d.Name(), ".v")
			base := filepath.Dir(path)

			vcdPath := filepath.Join(base, stem+".vcd")
			if _, err := os.Stat(vcdPath); err != nil {
				return nil
			}

			orderPath := ""
			if p := filepath.Join(base, stem+".order.txt"); fileExists(p) {
				orderPath = p
			} else if p := filepath.Join(base, "signal_order.txt"); fileExists(p) {
				orderPath = p
			}

			name := stem
			seen[stem]++
			if n := seen[stem]; n > 1 {
				name = fmt.Sprintf("%s_%d", stem, n)
			}

			samples = append(samples, Sample{
				Name:        name,
				VerilogPath: path,
				VCDPath:     vcdPath,
				OrderPath:   orderPath,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan sample directory %q: %w", dir, err)
		}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
