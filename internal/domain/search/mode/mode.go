package mode

// Mode selects how search candidates are ranked.
type Mode string

// Search mode constants.
const (
	Semantic Mode = "semantic"
	Hybrid   Mode = "hybrid"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case Semantic, Hybrid:
		return true
	default:
		return false
	}
}
