package valueobjects

// ConnectorStyle bundles the presentational attributes of a connector
type ConnectorStyle struct {
	Color       string    `json:"color"`
	Width       float64   `json:"width"`
	DashPattern []float64 `json:"dashPattern,omitempty"`
	ArrowStart  bool      `json:"arrowStart"`
	ArrowEnd    bool      `json:"arrowEnd"`
	Opacity     float64   `json:"opacity"`
}

// DefaultConnectorStyle returns the style applied when none is given
func DefaultConnectorStyle() ConnectorStyle {
	return ConnectorStyle{
		Color:    "#64748b",
		Width:    2,
		ArrowEnd: true,
		Opacity:  1,
	}
}

// Clone returns a deep copy of the style
func (s ConnectorStyle) Clone() ConnectorStyle {
	out := s
	if s.DashPattern != nil {
		out.DashPattern = make([]float64, len(s.DashPattern))
		copy(out.DashPattern, s.DashPattern)
	}
	return out
}

// Equals compares two styles value-wise
func (s ConnectorStyle) Equals(other ConnectorStyle) bool {
	if s.Color != other.Color || s.Width != other.Width ||
		s.ArrowStart != other.ArrowStart || s.ArrowEnd != other.ArrowEnd ||
		s.Opacity != other.Opacity {
		return false
	}
	if len(s.DashPattern) != len(other.DashPattern) {
		return false
	}
	for i := range s.DashPattern {
		if s.DashPattern[i] != other.DashPattern[i] {
			return false
		}
	}
	return true
}

// HighlightStyle is the overlay styling a log action projects onto an element
type HighlightStyle struct {
	Color     string     `json:"color"`
	Animation bool       `json:"animation"`
	Kind      ActionKind `json:"kind"`
}

// Highlight palette keywords mapped to their default colors
const (
	HighlightColorSuccess     = "#22c55e"
	HighlightColorError       = "#ef4444"
	HighlightColorWarning     = "#f59e0b"
	HighlightColorActive      = "#3b82f6"
	HighlightColorContext     = "#6b7280"
	HighlightColorDestination = "#8b5cf6"
	HighlightColorPath        = "#06b6d4"
	HighlightColorDefault     = "#3b82f6"
)

// HighlightColorForStyle resolves a style keyword to its default color.
// Unrecognized or absent keywords fall back to the default blue.
func HighlightColorForStyle(style string) string {
	switch style {
	case "success":
		return HighlightColorSuccess
	case "error":
		return HighlightColorError
	case "warning":
		return HighlightColorWarning
	case "active":
		return HighlightColorActive
	case "context":
		return HighlightColorContext
	case "destination":
		return HighlightColorDestination
	case "path":
		return HighlightColorPath
	default:
		return HighlightColorDefault
	}
}
