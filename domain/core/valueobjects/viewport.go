package valueobjects

// Viewport holds the presentation-only pan/zoom state of a canvas
type Viewport struct {
	Zoom    float64 `json:"zoom"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// DefaultViewport returns the viewport of a freshly created canvas
func DefaultViewport() Viewport {
	return Viewport{
		Zoom:   1,
		Width:  1600,
		Height: 900,
	}
}

// CanvasSettings holds presentation-only editor settings
type CanvasSettings struct {
	SnapToGrid      bool    `json:"snapToGrid"`
	GridSize        float64 `json:"gridSize"`
	ShowGrid        bool    `json:"showGrid"`
	DefaultNodeSize Size    `json:"defaultNodeSize"`
}

// DefaultCanvasSettings returns the settings of a freshly created canvas
func DefaultCanvasSettings() CanvasSettings {
	return CanvasSettings{
		SnapToGrid:      false,
		GridSize:        20,
		ShowGrid:        true,
		DefaultNodeSize: Size{Width: 120, Height: 60},
	}
}
