// # internal/wavedrom/document.go
package wavedrom

// Entry is one signal row: a run-length-encoded wave string plus the literal
// values paired with its '=' characters.
type Entry struct {
	Name string   `json:"name"`
	Wave string   `json:"wave"`
	Data []string `json:"data,omitempty"`
}

// Document is a complete WaveDrom description. Config, Head and Foot are
// opaque passthrough metadata.
type Document struct {
	Signal []Entry        `json:"signal"`
	Config map[string]any `json:"config"`
	Head   map[string]any `json:"head"`
	Foot   map[string]any `json:"foot"`
}

// DefaultConfig, DefaultHead and DefaultFoot are the passthrough blocks used
// when the caller supplies none.
func DefaultConfig() map[string]any {
	return map[string]any{"hscale": 2}
}

func DefaultHead() map[string]any {
	return map[string]any{"text": "Timing Diagram", "tick": 0}
}

func DefaultFoot() map[string]any {
	return map[string]any{"text": "Cycle numbers", "tick": 0}
}

func copyMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
