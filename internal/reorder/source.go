// # internal/reorder/source.go
package reorder

import (
	"os"
	"regexp"
	"strings"

	"wavetrace/internal/verilog"
)

var (
	internalDeclRE  = regexp.MustCompile(`(?m)^\s*(reg|wire)\s*(?:\[[^\]]+\])?\s*([^;]+);`)
	trailingRangeRE = regexp.MustCompile(`\s*\[.*\]`)
	identRE         = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// LoadOrderFile reads a reference order file: one signal name per line,
// lines starting with # are comments.
func LoadOrderFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// DeclarationOrder derives a reference ordering from Verilog source:
// ports in header order first, then internal reg/wire declarations in the
// order they appear.
func DeclarationOrder(src string) ([]string, error) {
	module, err := verilog.Parse(src)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, p := range module.Ports {
		names = append(names, p.FullName())
	}
	names = append(names, internalSignalNames(src)...)
	return names, nil
}

func internalSignalNames(src string) []string {
	var names []string
	for _, m := range internalDeclRE.FindAllStringSubmatch(src, -1) {
		for _, name := range strings.Split(m[2], ",") {
			name = trailingRangeRE.ReplaceAllString(strings.TrimSpace(name), "")
			if identRE.MatchString(name) {
				names = append(names, name)
			}
		}
	}
	return names
}
