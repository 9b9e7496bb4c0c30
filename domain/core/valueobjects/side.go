package valueobjects

import (
	"fmt"

	pkgerrors "flowcanvas/pkg/errors"
)

// Side identifies one of the four edges of a node's bounding box
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// ParseSide converts a string into a Side
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideTop, SideRight, SideBottom, SideLeft:
		return Side(s), nil
	default:
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown side %q", s))
	}
}

// Valid reports whether the side is one of the four known edges
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideRight, SideBottom, SideLeft:
		return true
	default:
		return false
	}
}

// Opposite returns the facing side
func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return s
	}
}

// Horizontal reports whether the side is left or right
func (s Side) Horizontal() bool {
	return s == SideLeft || s == SideRight
}

// String implements fmt.Stringer
func (s Side) String() string {
	return string(s)
}
