// # internal/wavedrom/generator.go
package wavedrom

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"wavetrace/internal/vcd"
	"wavetrace/internal/verilog"
)

// Order selects how signal rows are arranged in the document.
type Order int

const (
	// OrderVCD keeps the order signals were declared in the dump.
	OrderVCD Order = iota
	// OrderPort follows the module's port declaration order.
	OrderPort
	// OrderGrouped arranges signals into semantic categories.
	OrderGrouped
)

const (
	DefaultMaxSignals   = 20
	DefaultMaxTimeSteps = 50
)

// signalGroups orders signals into categories for OrderGrouped: clocks,
// resets, status, read control/data, write control, empty/full, write data,
// generic control, address/data.
var signalGroups = [][]string{
	{"clk", "clock", "clk_ena"},
	{"rst", "reset", "rstn", "rst_n", "resetn"},
	{"full", "a_full", "almost_full"},
	{"rd_en", "re", "read", "rd"},
	{"dout", "rdata", "rd_data", "data_out", "q"},
	{"wr_en", "we", "write", "wr"},
	{"empty", "a_empty", "almost_empty"},
	{"din", "wdata", "wr_data", "data_in", "d"},
	{"en", "enable", "valid", "ready", "start", "done"},
	{"addr", "address", "data"},
}

// Options configure a Generator. Zero values get sane defaults.
type Options struct {
	MaxSignals      int
	MaxTimeSteps    int
	IncludeInternal bool
	Order           Order

	// IOPortNames is the explicit I/O name set; when non-empty, any signal
	// whose bare name is absent is internal. When empty, naming heuristics
	// classify instead.
	IOPortNames []string

	// Ports drive display naming and OrderPort sorting.
	Ports []verilog.Port

	// ExcludeGlobs drop matching signal names regardless of classification.
	ExcludeGlobs []glob.Glob

	Config map[string]any
	Head   map[string]any
	Foot   map[string]any
}

type Generator struct {
	opts       Options
	ioNames    map[string]bool
	portIndex  map[string]int
	portByName map[string]verilog.Port
}

func NewGenerator(opts Options) *Generator {
	if opts.MaxSignals <= 0 {
		opts.MaxSignals = DefaultMaxSignals
	}
	if opts.MaxTimeSteps <= 0 {
		opts.MaxTimeSteps = DefaultMaxTimeSteps
	}
	if opts.Config == nil {
		opts.Config = DefaultConfig()
	}
	if opts.Head == nil {
		opts.Head = DefaultHead()
	}
	if opts.Foot == nil {
		opts.Foot = DefaultFoot()
	}

	g := &Generator{
		opts:       opts,
		ioNames:    make(map[string]bool, len(opts.IOPortNames)),
		portIndex:  make(map[string]int, len(opts.Ports)),
		portByName: make(map[string]verilog.Port, len(opts.Ports)),
	}
	for _, n := range opts.IOPortNames {
		g.ioNames[strings.ToLower(n)] = true
	}
	for i, p := range opts.Ports {
		lower := strings.ToLower(p.Name)
		if _, ok := g.portIndex[lower]; !ok {
			g.portIndex[lower] = i
			g.portByName[lower] = p
		}
	}
	return g
}

// Generate encodes the parsed dump into a WaveDrom document. A dump with no
// signals yields an empty signal list; the caller decides whether that is a
// failure.
func (g *Generator) Generate(data *vcd.Data) *Document {
	doc := &Document{
		Signal: []Entry{},
		Config: copyMeta(g.opts.Config),
		Head:   copyMeta(g.opts.Head),
		Foot:   copyMeta(g.opts.Foot),
	}
	if len(data.Signals) == 0 {
		return doc
	}

	signals := make([]*vcd.Signal, 0, len(data.Signals))
	for _, sig := range data.Signals {
		if g.excluded(sig.Name) {
			continue
		}
		if !g.opts.IncludeInternal && g.isInternal(sig) {
			continue
		}
		signals = append(signals, sig)
	}

	signals = g.sortSignals(signals)
	if len(signals) > g.opts.MaxSignals {
		signals = signals[:g.opts.MaxSignals]
	}

	step := g.timeStep(data)
	numSteps := min(g.opts.MaxTimeSteps, max(1, data.EndTime/step))

	for _, sig := range signals {
		if entry, ok := g.waveEntry(sig, step, numSteps); ok {
			doc.Signal = append(doc.Signal, entry)
		}
	}
	return doc
}

func (g *Generator) excluded(name string) bool {
	for _, pat := range g.opts.ExcludeGlobs {
		if pat.Match(name) {
			return true
		}
	}
	return false
}

// isInternal classifies a signal as not part of the module's I/O. With an
// explicit port name set the lookup is exact; otherwise naming heuristics
// stand in.
func (g *Generator) isInternal(sig *vcd.Signal) bool {
	lower := strings.ToLower(sig.Name)
	if len(g.ioNames) > 0 {
		return !g.ioNames[lower]
	}

	if len(sig.Name) == 1 && strings.ContainsRune("ijklmn", rune(sig.Name[0])) {
		return true
	}
	switch {
	case lower == "cnt", lower == "count", lower == "counter":
		return false
	case strings.HasPrefix(lower, "cnt_"),
		strings.HasPrefix(lower, "mem"),
		strings.HasPrefix(lower, "genvar"):
		return true
	}
	return strings.Contains(strings.ToLower(sig.Scope), "internal")
}

func (g *Generator) sortSignals(signals []*vcd.Signal) []*vcd.Signal {
	switch g.opts.Order {
	case OrderPort:
		if len(g.portIndex) > 0 {
			return g.sortByPortOrder(signals)
		}
		return signals
	case OrderGrouped:
		return g.sortByGroup(signals)
	default:
		return signals
	}
}

func (g *Generator) sortByPortOrder(signals []*vcd.Signal) []*vcd.Signal {
	sorted := make([]*vcd.Signal, len(signals))
	copy(sorted, signals)

	unmatched := len(g.portIndex)
	index := func(s *vcd.Signal) int {
		if i, ok := g.portIndex[strings.ToLower(s.Name)]; ok {
			return i
		}
		return unmatched
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		ia, ib := index(sorted[a]), index(sorted[b])
		if ia != ib {
			return ia < ib
		}
		if ia == unmatched {
			// Unmatched signals keep arrival order.
			return false
		}
		return sorted[a].Name < sorted[b].Name
	})
	return sorted
}

func (g *Generator) sortByGroup(signals []*vcd.Signal) []*vcd.Signal {
	type key struct {
		group, pattern int
		name           string
	}
	keyOf := func(s *vcd.Signal) key {
		lower := strings.ToLower(s.Name)
		for gi, patterns := range signalGroups {
			for pi, pat := range patterns {
				if lower == pat || strings.HasPrefix(lower, pat) || strings.HasSuffix(lower, pat) {
					return key{gi, pi, s.Name}
				}
			}
		}
		return key{len(signalGroups), 0, s.Name}
	}

	sorted := make([]*vcd.Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(a, b int) bool {
		ka, kb := keyOf(sorted[a]), keyOf(sorted[b])
		if ka.group != kb.group {
			return ka.group < kb.group
		}
		if ka.pattern != kb.pattern {
			return ka.pattern < kb.pattern
		}
		return ka.name < kb.name
	})
	return sorted
}

// timeStep picks the sampling interval: the minimum gap between clock
// transitions when a clock toggles, else end time divided by the step cap.
func (g *Generator) timeStep(data *vcd.Data) int {
	if data.EndTime == 0 {
		return 1
	}

	for _, sig := range data.Signals {
		if !strings.Contains(strings.ToLower(sig.Name), "clk") || len(sig.Values) == 0 {
			continue
		}
		var transitions []int
		for _, c := range sig.Values {
			if c.Time > 0 {
				transitions = append(transitions, c.Time)
			}
		}
		if len(transitions) < 2 {
			continue
		}
		minGap := 0
		for i := 1; i < len(transitions); i++ {
			gap := transitions[i] - transitions[i-1]
			if minGap == 0 || gap < minGap {
				minGap = gap
			}
		}
		if minGap > 0 {
			return minGap
		}
	}

	return max(1, data.EndTime/g.opts.MaxTimeSteps)
}

func (g *Generator) waveEntry(sig *vcd.Signal, step, numSteps int) (Entry, bool) {
	if len(sig.Values) == 0 {
		return Entry{}, false
	}
	if sig.Width == 1 {
		return g.singleBitWave(sig, step, numSteps), true
	}
	return g.multiBitWave(sig, step, numSteps), true
}

// singleBitWave samples a one-bit trace. Clock-named signals collapse to a
// rising-edge marker followed by repeats, on the assumption that a declared
// clock toggles every step.
func (g *Generator) singleBitWave(sig *vcd.Signal, step, numSteps int) Entry {
	lower := strings.ToLower(sig.Name)
	isClock := strings.Contains(lower, "clk") || strings.Contains(lower, "clock")

	var wave strings.Builder
	last := ""
	haveLast := false

	for i := 0; i < numSteps; i++ {
		if isClock && i == 1 {
			return Entry{
				Name: g.displayName(sig),
				Wave: "p" + strings.Repeat(".", numSteps-1),
			}
		}

		value := sig.ValueAt(i * step)
		switch {
		case haveLast && value == last:
			wave.WriteByte('.')
		case value == "0", value == "1", value == "x", value == "z":
			wave.WriteString(value)
		default:
			wave.WriteByte('x')
		}
		last = value
		haveLast = true
	}

	return Entry{Name: g.displayName(sig), Wave: wave.String()}
}

func (g *Generator) multiBitWave(sig *vcd.Signal, step, numSteps int) Entry {
	var wave strings.Builder
	var data []string
	last := ""
	haveLast := false

	for i := 0; i < numSteps; i++ {
		value := sig.ValueAt(i * step)
		switch {
		case haveLast && value == last:
			wave.WriteByte('.')
		case strings.Contains(value, "x"):
			wave.WriteByte('x')
		case strings.Contains(value, "z"):
			wave.WriteByte('z')
		default:
			wave.WriteByte('=')
			data = append(data, hexLiteral(value))
		}
		last = value
		haveLast = true
	}

	entry := Entry{Name: g.displayName(sig), Wave: wave.String()}
	if len(data) > 0 {
		entry.Data = data
	}
	return entry
}

// hexLiteral reformats a binary string as uppercase hex. Malformed strings
// degrade to a truncated literal instead of failing the encode.
func hexLiteral(value string) string {
	n, err := strconv.ParseUint(value, 2, 64)
	if err != nil {
		if len(value) > 8 {
			return value[:8]
		}
		return value
	}
	return fmt.Sprintf("%X", n)
}

// displayName prefers the matching port's bit-range-qualified name.
func (g *Generator) displayName(sig *vcd.Signal) string {
	if p, ok := g.portByName[strings.ToLower(sig.Name)]; ok {
		return p.FullName()
	}
	return sig.Name
}
