// # internal/output/writer.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"wavetrace/internal/wavedrom"
)

// WriteDocument writes a WaveDrom document as indented JSON to
// <dir>/<name>.json, creating the directory if needed.
func WriteDocument(dir, name string, doc *wavedrom.Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document %q: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document %q: %w", path, err)
	}
	return path, nil
}
