// # internal/verilog/parser.go
package verilog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoModule is returned when no module declaration is found in the source.
var ErrNoModule = errors.New("no module declaration found")

// Pattern-based extraction, not a grammar. Good enough for the header and
// port declarations of generated RTL; unknown syntax is skipped, never fatal.
var (
	blockCommentRE = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRE  = regexp.MustCompile(`(?m)//.*$`)

	// module <name> [#(<params>)] (<ports>) ;
	moduleRE = regexp.MustCompile(`(?s)module\s+(\w+)\s*(?:#\s*\((.*?)\))?\s*\((.*?)\)\s*;`)

	// ANSI-style port in the header: input wire [7:0] data
	ansiPortRE = regexp.MustCompile(`(?i)(input|output|inout)\s+(?:reg\s+|wire\s+)?(signed\s+)?(?:\[([^\]]+):([^\]]+)\]\s+)?(\w+)`)

	// Non-ANSI declaration in the body: output reg [7:0] q, r;
	portDeclRE = regexp.MustCompile(`(?i)(input|output|inout)\s+(reg|wire)?\s*(signed)?\s*(?:\[([^\]]+):([^\]]+)\])?\s*([\w\s,]+)\s*;`)

	paramRE     = regexp.MustCompile(`(?i)parameter\s+(?:\[(\d+):(\d+)\])?\s*(\w+)\s*=\s*([^,;\)]+)`)
	endmoduleRE = regexp.MustCompile(`(?i)\bendmodule\b`)

	headerNoiseRE = regexp.MustCompile(`(?i)input|output|inout|reg|wire|\[[^\]]+\]`)
	identifierRE  = regexp.MustCompile(`^\w+$`)
)

// Parse extracts the module structure from Verilog source text. Pure function
// of the input; returns ErrNoModule when no module header matches.
func Parse(src string) (*Module, error) {
	code := stripComments(src)

	m := moduleRE.FindStringSubmatch(code)
	if m == nil {
		return nil, ErrNoModule
	}
	name, paramSection, portSection := m[1], m[2], m[3]

	params := parseParameters(paramSection)

	body := code[strings.Index(code, m[0])+len(m[0]):]
	if loc := endmoduleRE.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}
	params = append(params, parseParameters(body)...)

	ports := parseANSIPorts(portSection)
	if len(ports) == 0 {
		ports = parseNonANSIPorts(body, extractPortNames(portSection))
	}

	return &Module{Name: name, Ports: ports, Parameters: params}, nil
}

func stripComments(code string) string {
	code = blockCommentRE.ReplaceAllString(code, "")
	return lineCommentRE.ReplaceAllString(code, "")
}

func parseParameters(text string) []Parameter {
	var params []Parameter
	for _, m := range paramRE.FindAllStringSubmatch(text, -1) {
		params = append(params, Parameter{
			Name:  strings.TrimSpace(m[3]),
			Value: strings.TrimRight(strings.TrimSpace(m[4]), ","),
		})
	}
	return params
}

func parseANSIPorts(portSection string) []Port {
	var ports []Port
	seen := make(map[string]bool)

	for _, m := range ansiPortRE.FindAllStringSubmatch(portSection, -1) {
		name := m[5]
		switch strings.ToLower(name) {
		case "wire", "reg", "signed", "unsigned":
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		p := Port{
			Name:      name,
			Direction: Direction(strings.ToLower(m[1])),
			IsSigned:  m[2] != "",
			Width:     Width{Bits: 1, Resolved: true},
		}
		if m[3] != "" || m[4] != "" {
			applyRange(&p, m[3], m[4])
		}
		ports = append(ports, p)
	}
	return ports
}

// extractPortNames pulls bare identifiers out of a non-ANSI header list.
func extractPortNames(portSection string) []string {
	clean := headerNoiseRE.ReplaceAllString(portSection, "")
	var names []string
	for _, n := range strings.Split(clean, ",") {
		n = strings.TrimSpace(n)
		if n != "" && identifierRE.MatchString(n) {
			names = append(names, n)
		}
	}
	return names
}

func parseNonANSIPorts(body string, portNames []string) []Port {
	nameSet := make(map[string]bool, len(portNames))
	for _, n := range portNames {
		nameSet[n] = true
	}

	var ports []Port
	for _, m := range portDeclRE.FindAllStringSubmatch(body, -1) {
		for _, name := range strings.Split(m[6], ",") {
			name = strings.TrimSpace(name)
			if name == "" || (len(nameSet) > 0 && !nameSet[name]) {
				continue
			}
			p := Port{
				Name:      name,
				Direction: Direction(strings.ToLower(m[1])),
				IsReg:     strings.EqualFold(m[2], "reg"),
				IsSigned:  m[3] != "",
				Width:     Width{Bits: 1, Resolved: true},
			}
			if m[4] != "" || m[5] != "" {
				applyRange(&p, m[4], m[5])
			}
			ports = append(ports, p)
		}
	}
	return ports
}

// applyRange resolves a declared [msb:lsb] range. Symbolic bounds fall back
// to DefaultWidth with synthetic 7:0 bounds and Resolved=false.
func applyRange(p *Port, msbStr, lsbStr string) {
	p.HasRange = true
	msb, msbOK := parseBitIndex(msbStr)
	lsb, lsbOK := parseBitIndex(lsbStr)
	if msbOK && lsbOK {
		p.MSB = msb
		p.LSB = lsb
		p.Width = Width{Bits: abs(msb-lsb) + 1, Resolved: true}
		return
	}
	p.MSB = DefaultWidth - 1
	p.LSB = 0
	p.Width = Width{Bits: DefaultWidth, Resolved: false}
}

func parseBitIndex(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
