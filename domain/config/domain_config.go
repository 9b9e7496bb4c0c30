package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Canvas constraints
	MaxNodesPerCanvas      int
	MaxConnectorsPerCanvas int
	DefaultCanvasName      string

	// History
	HistoryLimit int

	// Gesture geometry
	EndpointHoverRadius float64
	SkirtPadding        float64
	ClickDragThreshold  float64

	// Node constraints
	MaxTitleLength       int
	MinTitleLength       int
	MaxDescriptionLength int
	DefaultNodeWidth     float64
	DefaultNodeHeight    float64

	// Connector constraints
	MaxLabelLength        int
	DefaultConnectorWidth float64
	MinConnectorWidth     float64
	MaxConnectorWidth     float64

	// Grid
	DefaultGridSize float64

	// Validation settings
	AllowSelfConnections bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Canvas constraints
		MaxNodesPerCanvas:      10000,
		MaxConnectorsPerCanvas: 50000,
		DefaultCanvasName:      "Untitled Canvas",

		// History
		HistoryLimit: 50,

		// Gesture geometry
		EndpointHoverRadius: 15,
		SkirtPadding:        16,
		ClickDragThreshold:  2,

		// Node constraints
		MaxTitleLength:       200,
		MinTitleLength:       1,
		MaxDescriptionLength: 2000,
		DefaultNodeWidth:     120,
		DefaultNodeHeight:    60,

		// Connector constraints
		MaxLabelLength:        200,
		DefaultConnectorWidth: 2,
		MinConnectorWidth:     0.5,
		MaxConnectorWidth:     20,

		// Grid
		DefaultGridSize: 20,

		// Validation settings
		AllowSelfConnections: true,
	}
}
