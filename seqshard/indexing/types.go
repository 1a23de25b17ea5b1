package indexing

// Position is the line number of an example in its corpus.
// Source and target corpora share positions.
type Position = int

// Reason records why an example did not reach any batch in an epoch.
type Reason uint8

const (
	// Filtered examples are longer than the configured max length.
	Filtered Reason = iota
	// Discarded examples do not fit an empty batch under the token budget.
	Discarded
)

func (r Reason) String() string {
	switch r {
	case Filtered:
		return "filtered"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}
