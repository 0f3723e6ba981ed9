// # internal/vcd/parser.go
package vcd

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	scopeRE     = regexp.MustCompile(`\$scope\s+(\w+)\s+(\w+)`)
	varRE       = regexp.MustCompile(`\$var\s+(\w+)\s+(\d+)\s+(\S+)\s+(\S+)(?:\s+\[[\d:]+\])?\s*\$end`)
	timescaleRE = regexp.MustCompile(`(\d+\s*\w+)`)
	vectorRE    = regexp.MustCompile(`^[bB]([01xXzZ]+)\s+(\S+)`)
)

// Parse reads VCD text into per-signal traces. Malformed lines are skipped,
// never fatal; a result with zero signals is for the caller to classify.
func Parse(content string) *Data {
	p := &parser{
		data: &Data{
			Timescale: "1ns",
			ByName:    make(map[string]*Signal),
		},
		byID: make(map[string]*Signal),
	}
	p.run(strings.Split(content, "\n"))
	return p.data
}

type parser struct {
	data        *Data
	byID        map[string]*Signal
	scope       []string
	currentTime int
	headerSeen  bool
}

func (p *parser) run(lines []string) {
	inHeader := true
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if inHeader {
			switch {
			case strings.HasPrefix(line, "$timescale"):
				p.headerSeen = true
				i = p.parseTimescale(lines, i)
			case strings.HasPrefix(line, "$scope"):
				p.headerSeen = true
				if m := scopeRE.FindStringSubmatch(line); m != nil {
					p.scope = append(p.scope, m[2])
				}
			case strings.HasPrefix(line, "$upscope"):
				if len(p.scope) > 0 {
					p.scope = p.scope[:len(p.scope)-1]
				}
			case strings.HasPrefix(line, "$var"):
				p.headerSeen = true
				p.parseVar(line)
			case strings.HasPrefix(line, "$enddefinitions"):
				inHeader = false
			case strings.HasPrefix(line, "#") && p.headerSeen:
				// Missing $enddefinitions; degrade into the value phase.
				inHeader = false
				p.parseValueLine(line)
			}
			continue
		}

		p.parseValueLine(line)
	}
}

func (p *parser) parseValueLine(line string) {
	switch {
	case strings.HasPrefix(line, "#"):
		if t, err := strconv.Atoi(line[1:]); err == nil {
			p.currentTime = t
			if t > p.data.EndTime {
				p.data.EndTime = t
			}
		}
	case strings.HasPrefix(line, "$"):
		// Dump control commands carry no values.
	case strings.HasPrefix(line, "b") || strings.HasPrefix(line, "B"):
		if m := vectorRE.FindStringSubmatch(line); m != nil {
			p.record(m[2], m[1])
		}
	case len(line) >= 2 && strings.ContainsRune("01xXzZ", rune(line[0])):
		p.record(strings.TrimSpace(line[1:]), string(line[0]))
	}
}

func (p *parser) parseTimescale(lines []string, start int) int {
	i := start
	var parts []string
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		parts = append(parts, line)
		if strings.Contains(line, "$end") {
			break
		}
	}
	if m := timescaleRE.FindStringSubmatch(strings.Join(parts, " ")); m != nil {
		p.data.Timescale = strings.ReplaceAll(m[1], " ", "")
	}
	return i
}

func (p *parser) parseVar(line string) {
	m := varRE.FindStringSubmatch(line)
	if m == nil {
		return
	}
	width, err := strconv.Atoi(m[2])
	if err != nil {
		return
	}
	sig := &Signal{
		ID:    m[3],
		Name:  m[4],
		Width: width,
		Scope: strings.Join(p.scope, "."),
	}
	p.data.Signals = append(p.data.Signals, sig)
	p.data.ByName[sig.QualifiedName()] = sig
	p.byID[sig.ID] = sig
}

// record appends a change for the signal bound to the short id. Unbound ids
// are ignored; partial or foreign declarations are tolerated.
func (p *parser) record(id string, value string) {
	sig, ok := p.byID[id]
	if !ok {
		return
	}
	sig.Values = append(sig.Values, Change{Time: p.currentTime, Value: strings.ToLower(value)})
}
