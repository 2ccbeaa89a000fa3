package summary

import (
	"fmt"
	"strings"
)

// Level selects how much of each definition survives summarization.
type Level int

const (
	// LevelNone emits the source unchanged.
	LevelNone Level = iota
	// LevelInterface keeps signatures, docstrings and class fields.
	LevelInterface
	// LevelCore keeps the logic and elides common boilerplate.
	LevelCore
)

func (l Level) String() string {
	switch l {
	case LevelInterface:
		return "interface"
	case LevelCore:
		return "core"
	default:
		return "none"
	}
}

// ParseLevel accepts the names printed by Level.String. The empty string is
// treated as none.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return LevelNone, nil
	case "interface":
		return LevelInterface, nil
	case "core":
		return LevelCore, nil
	}
	return LevelNone, fmt.Errorf("unknown summary level %q (want none, interface or core)", s)
}
