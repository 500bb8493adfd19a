package ports

// Segmenter splits text into comparison units. Implementations must be pure and
// deterministic, returning units in text order.
type Segmenter interface {
	// Characters returns user-perceived characters.
	Characters(text string) []string
	// Words returns word tokens.
	Words(text string) []string
}
