package diffview

import "github.com/muesli/termenv"

// Role is the meaning of a piece of text, used to pick its colour
type Role int

const (
	RoleAdded Role = iota
	RoleRemoved
	RoleModified
	RoleLocal
)

// Colorizer decorates text for a role. It must not change the visible
// characters, only wrap them.
type Colorizer func(text string, role Role) string

// Plain is the identity Colorizer
func Plain(text string, _ Role) string {
	return text
}

var roleColors = map[Role]termenv.ANSIColor{
	RoleAdded:    termenv.ANSIGreen,
	RoleRemoved:  termenv.ANSIRed,
	RoleModified: termenv.ANSIYellow,
	RoleLocal:    termenv.ANSICyan,
}

// ANSI wraps text in basic 16-colour escape sequences. The profile is fixed
// so the output does not depend on the environment; callers decide whether
// the terminal can show colour.
func ANSI(text string, role Role) string {
	c, ok := roleColors[role]
	if !ok {
		return text
	}
	return termenv.ANSI.String(text).Foreground(c).String()
}
