// # internal/vcd/vcd.go
package vcd

// Change is one timestamped value event. Values are lowercase strings over
// the {0,1,x,z} per-bit alphabet.
type Change struct {
	Time  int
	Value string
}

// Signal is one declared signal with its time-ordered trace.
type Signal struct {
	ID     string
	Name   string
	Width  int
	Scope  string
	Values []Change
}

// QualifiedName is the externally visible key: scope path plus leaf name.
func (s *Signal) QualifiedName() string {
	if s.Scope == "" {
		return s.Name
	}
	return s.Scope + "." + s.Name
}

// ValueAt returns the last recorded value at or before the given time,
// or "x" when no change has been observed yet.
func (s *Signal) ValueAt(time int) string {
	last := "x"
	for _, c := range s.Values {
		if c.Time > time {
			break
		}
		last = c.Value
	}
	return last
}

// Data is a parsed value-change dump. Signals keeps declaration order;
// ByName indexes them by qualified name. Immutable once parsed.
type Data struct {
	Timescale string
	Signals   []*Signal
	ByName    map[string]*Signal
	EndTime   int
}
