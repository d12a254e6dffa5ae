package style

import "fmt"

// Mode is the rhetorical register requested for a generated post.
type Mode string

// Style mode constants.
const (
	Philosophical Mode = "philosophical"
	Ironic        Mode = "ironic"
	Analytical    Mode = "analytical"
	Provocative   Mode = "provocative"
)

var instructions = map[Mode]string{
	Philosophical: "Write reflectively. Move from the concrete event to general questions about " +
		"people, meaning and time. Allow long sentences and rhetorical questions.",
	Ironic: "Write with dry irony. Understate, juxtapose official claims with everyday reality, " +
		"never explain the joke.",
	Analytical: "Write as an analyst. State the thesis first, support it with facts and numbers, " +
		"weigh causes and consequences, end with a clear conclusion.",
	Provocative: "Write provocatively. Take a sharp contrarian position, challenge the reader directly " +
		"and end with an open question that invites debate.",
}

// Modes returns all supported modes in a stable order.
func Modes() []Mode {
	return []Mode{Philosophical, Ironic, Analytical, Provocative}
}

// ParseMode validates a mode string. Empty defaults to Analytical.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return Analytical, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid style mode %q", s)
	}
	return m, nil
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	_, ok := instructions[m]
	return ok
}

// Instruction returns the prompt instruction text for the mode.
func (m Mode) Instruction() string { return instructions[m] }
