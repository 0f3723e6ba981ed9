// # internal/reorder/reorder.go
package reorder

import (
	"wavetrace/internal/wavedrom"
)

// matchThreshold is the minimum score a candidate must exceed to be
// assigned to a reference name.
const matchThreshold = 0.4

// Reorder produces a new document whose signal rows follow referenceOrder,
// matching noisy reference names to candidates by fuzzy score. Assignment is
// greedy, order-preserving and one-to-one: each reference name takes the
// best unused candidate above the threshold, or is skipped. Unmatched
// candidates are appended unless filterToReference is set. The input
// document is not mutated.
func Reorder(doc *wavedrom.Document, referenceOrder []string, filterToReference bool) *wavedrom.Document {
	out := &wavedrom.Document{
		Signal: doc.Signal,
		Config: doc.Config,
		Head:   doc.Head,
		Foot:   doc.Foot,
	}
	if len(doc.Signal) == 0 || len(referenceOrder) == 0 {
		return out
	}

	used := make([]bool, len(doc.Signal))
	reordered := make([]wavedrom.Entry, 0, len(doc.Signal))

	for _, refName := range referenceOrder {
		bestIdx := -1
		bestScore := matchThreshold
		for i, entry := range doc.Signal {
			if used[i] {
				continue
			}
			if s := Score(refName, entry.Name); s > bestScore {
				bestScore = s
				bestIdx = i
			}
		}
		if bestIdx >= 0 {
			reordered = append(reordered, doc.Signal[bestIdx])
			used[bestIdx] = true
		}
	}

	if !filterToReference {
		for i, entry := range doc.Signal {
			if !used[i] {
				reordered = append(reordered, entry)
			}
		}
	}

	out.Signal = reordered
	return out
}
