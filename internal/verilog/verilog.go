// # internal/verilog/verilog.go
package verilog

import (
	"fmt"
	"strings"
)

type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
	Inout  Direction = "inout"
)

// DefaultWidth is used when a declared bit range does not resolve to integer
// bounds (e.g. [WIDTH-1:0] with WIDTH a parameter).
const DefaultWidth = 8

// Width is a port's bit width together with whether the declared bounds
// resolved. Unresolved widths carry the DefaultWidth approximation so
// consumers can detect and report it.
type Width struct {
	Bits     int
	Resolved bool
}

type Port struct {
	Name      string
	Direction Direction
	Width     Width
	MSB       int
	LSB       int
	HasRange  bool
	IsReg     bool
	IsSigned  bool
}

// FullName renders the signal name with its bit range, e.g. "data[7:0]".
// Implicit single-bit signals render as the bare name.
func (p Port) FullName() string {
	if p.Width.Bits == 1 {
		if p.HasRange {
			return fmt.Sprintf("%s[%d:%d]", p.Name, p.MSB, p.LSB)
		}
		return p.Name
	}
	msb, lsb := p.MSB, p.LSB
	if !p.HasRange {
		msb = p.Width.Bits - 1
		lsb = 0
	}
	return fmt.Sprintf("%s[%d:%d]", p.Name, msb, lsb)
}

type Parameter struct {
	Name  string
	Value string
}

// Module is an extracted module header: name plus ports in declaration order.
// Immutable after extraction.
type Module struct {
	Name       string
	Ports      []Port
	Parameters []Parameter
}

func (m *Module) Inputs() []Port  { return m.byDirection(Input) }
func (m *Module) Outputs() []Port { return m.byDirection(Output) }
func (m *Module) Inouts() []Port  { return m.byDirection(Inout) }

func (m *Module) byDirection(dir Direction) []Port {
	var out []Port
	for _, p := range m.Ports {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out
}

// ClockSignals returns single-bit inputs whose name looks like a clock.
// Naming heuristic only, no semantic analysis.
func (m *Module) ClockSignals() []Port {
	return m.matchInputs("clk", "clock")
}

// ResetSignals returns single-bit inputs whose name looks like a reset.
func (m *Module) ResetSignals() []Port {
	return m.matchInputs("rst", "reset")
}

func (m *Module) matchInputs(patterns ...string) []Port {
	var out []Port
	for _, p := range m.Inputs() {
		if p.Width.Bits != 1 {
			continue
		}
		lower := strings.ToLower(p.Name)
		for _, pat := range patterns {
			if strings.Contains(lower, pat) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// PortNames returns the bare port names in declaration order.
func (m *Module) PortNames() []string {
	names := make([]string, 0, len(m.Ports))
	for _, p := range m.Ports {
		names = append(names, p.Name)
	}
	return names
}

// Port looks up a port by name, case-insensitively.
func (m *Module) Port(name string) (Port, bool) {
	lower := strings.ToLower(name)
	for _, p := range m.Ports {
		if strings.ToLower(p.Name) == lower {
			return p, true
		}
	}
	return Port{}, false
}
