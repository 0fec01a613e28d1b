package mode

// Mode is the search strategy.
type Mode string

const (
	// Term matches one field against one literal value.
	Term Mode = "term"
	// Keywords parses free text across every non-ignored field.
	Keywords Mode = "keywords"
)

// Operation names the mode in logs and metrics, e.g. "search_term".
func (m Mode) Operation() string {
	return "search_" + string(m)
}
