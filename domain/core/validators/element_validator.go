package validators

import (
	"fmt"
	"regexp"

	"flowcanvas/domain/config"
	"flowcanvas/pkg/errors"
)

// ElementValidator validates node- and connector-level domain rules
type ElementValidator struct {
	idMaxLength    int
	titleMaxLength int
	descMaxLength  int
	labelMaxLength int
	minWidth       float64
	maxWidth       float64
	hexPattern     *regexp.Regexp
}

// NewElementValidator creates an element validator with default rules
func NewElementValidator() *ElementValidator {
	return NewElementValidatorWithConfig(config.DefaultDomainConfig())
}

// NewElementValidatorWithConfig creates an element validator from domain configuration
func NewElementValidatorWithConfig(cfg *config.DomainConfig) *ElementValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ElementValidator{
		idMaxLength:    100,
		titleMaxLength: cfg.MaxTitleLength,
		descMaxLength:  cfg.MaxDescriptionLength,
		labelMaxLength: cfg.MaxLabelLength,
		minWidth:       cfg.MinConnectorWidth,
		maxWidth:       cfg.MaxConnectorWidth,
		hexPattern:     regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`),
	}
}

// ValidateElementID validates a caller-supplied element identifier
func (v *ElementValidator) ValidateElementID(id string) error {
	if id == "" {
		return errors.ErrElementIDRequired
	}

	if len(id) > v.idMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"ELEMENT_ID_TOO_LONG",
			fmt.Sprintf("Element id exceeds maximum length of %d characters", v.idMaxLength),
		).WithDetail("actual_length", len(id))
	}

	return nil
}

// ValidateNode aggregates validation of a node's presentation fields
func (v *ElementValidator) ValidateNode(title, description, color string, metadata map[string]interface{}) error {
	validationErrors := errors.NewValidationErrors()

	if err := v.ValidateTitle(title); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("title", err.Error())
		}
	}

	if err := v.ValidateDescription(description); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("description", err.Error())
		}
	}

	if err := v.ValidateColor(color); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("color", err.Error())
		}
	}

	if err := v.ValidateMetadata(metadata); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("metadata", err.Error())
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}

	return nil
}

// ValidateTitle validates a node title. Empty titles are allowed; diagram
// nodes are frequently unlabeled.
func (v *ElementValidator) ValidateTitle(title string) error {
	if len(title) > v.titleMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"NODE_TITLE_TOO_LONG",
			fmt.Sprintf("Node title exceeds maximum length of %d characters", v.titleMaxLength),
		).WithDetail("field", "title").WithDetail("actual_length", len(title))
	}
	return nil
}

// ValidateDescription validates a node description
func (v *ElementValidator) ValidateDescription(desc string) error {
	if len(desc) > v.descMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"NODE_DESCRIPTION_TOO_LONG",
			fmt.Sprintf("Node description exceeds maximum length of %d characters", v.descMaxLength),
		).WithDetail("field", "description").WithDetail("actual_length", len(desc))
	}
	return nil
}

// ValidateLabel validates a connector label
func (v *ElementValidator) ValidateLabel(label string) error {
	if len(label) > v.labelMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"CONNECTOR_LABEL_TOO_LONG",
			fmt.Sprintf("Connector label exceeds maximum length of %d characters", v.labelMaxLength),
		).WithDetail("field", "label").WithDetail("actual_length", len(label))
	}
	return nil
}

// ValidateColor validates a CSS color value. Values starting with '#' must
// be well-formed hex; anything else passes through to the renderer as a
// named color or functional notation.
func (v *ElementValidator) ValidateColor(color string) error {
	if color == "" {
		return nil // Color is optional
	}

	if color[0] == '#' && !v.hexPattern.MatchString(color) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_COLOR_FORMAT",
			"Hex colors must be 3, 6 or 8 hex digits",
		).WithDetail("field", "color").WithDetail("value", color)
	}

	if len(color) > 50 {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"COLOR_TOO_LONG",
			"Color value exceeds maximum length of 50 characters",
		).WithDetail("field", "color")
	}

	return nil
}

// ValidateConnectorWidth validates a stroke width
func (v *ElementValidator) ValidateConnectorWidth(width float64) error {
	if width < v.minWidth || width > v.maxWidth {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_CONNECTOR_WIDTH",
			fmt.Sprintf("Connector width must be between %g and %g", v.minWidth, v.maxWidth),
		).WithDetail("field", "width").WithDetail("value", width)
	}
	return nil
}

// ValidateOpacity validates an opacity value
func (v *ElementValidator) ValidateOpacity(opacity float64) error {
	if opacity < 0 || opacity > 1 {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_OPACITY",
			"Opacity must be between 0 and 1",
		).WithDetail("field", "opacity").WithDetail("value", opacity)
	}
	return nil
}

// ValidateDashPattern validates a stroke dash pattern
func (v *ElementValidator) ValidateDashPattern(pattern []float64) error {
	const maxSegments = 8

	if len(pattern) > maxSegments {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"DASH_PATTERN_TOO_LONG",
			fmt.Sprintf("Dash pattern cannot have more than %d segments", maxSegments),
		).WithDetail("field", "dashPattern").WithDetail("count", len(pattern))
	}

	for _, seg := range pattern {
		if seg < 0 {
			return errors.NewDomainError(
				errors.DomainValidationError,
				"INVALID_DASH_PATTERN",
				"Dash pattern segments must be non-negative",
			).WithDetail("field", "dashPattern")
		}
	}

	return nil
}

// ValidateOffset validates a connection point offset
func (v *ElementValidator) ValidateOffset(offset float64) error {
	if offset < 0 || offset > 1 {
		return errors.ErrInvalidOffset.WithDetail("value", offset)
	}
	return nil
}

// ValidateMetadata validates element metadata
func (v *ElementValidator) ValidateMetadata(metadata map[string]interface{}) error {
	const maxMetadataKeys = 50
	const maxKeyLength = 100
	const maxValueLength = 1000

	if len(metadata) > maxMetadataKeys {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TOO_MANY_METADATA_KEYS",
			fmt.Sprintf("Cannot have more than %d metadata keys", maxMetadataKeys),
		).WithDetail("field", "metadata").WithDetail("count", len(metadata))
	}

	for key, value := range metadata {
		if len(key) > maxKeyLength {
			return errors.NewDomainError(
				errors.DomainValidationError,
				"METADATA_KEY_TOO_LONG",
				fmt.Sprintf("Metadata key '%s' exceeds maximum length of %d", key, maxKeyLength),
			).WithDetail("field", "metadata").WithDetail("key", key)
		}

		switch val := value.(type) {
		case string:
			if len(val) > maxValueLength {
				return errors.NewDomainError(
					errors.DomainValidationError,
					"METADATA_VALUE_TOO_LONG",
					fmt.Sprintf("Metadata value for '%s' exceeds maximum length of %d", key, maxValueLength),
				).WithDetail("field", "metadata").WithDetail("key", key)
			}
		case []interface{}:
			if len(val) > 100 {
				return errors.NewDomainError(
					errors.DomainValidationError,
					"METADATA_ARRAY_TOO_LARGE",
					fmt.Sprintf("Metadata array for '%s' exceeds maximum size of 100", key),
				).WithDetail("field", "metadata").WithDetail("key", key)
			}
		case map[string]interface{}:
			if len(val) > 50 {
				return errors.NewDomainError(
					errors.DomainValidationError,
					"METADATA_OBJECT_TOO_LARGE",
					fmt.Sprintf("Metadata object for '%s' exceeds maximum size of 50 properties", key),
				).WithDetail("field", "metadata").WithDetail("key", key)
			}
		}
	}

	return nil
}

// CanvasValidator validates canvas-level domain rules
type CanvasValidator struct {
	nameMaxLength          int
	maxNodesPerCanvas      int
	maxConnectorsPerCanvas int
}

// NewCanvasValidator creates a canvas validator with default rules
func NewCanvasValidator() *CanvasValidator {
	return NewCanvasValidatorWithConfig(config.DefaultDomainConfig())
}

// NewCanvasValidatorWithConfig creates a canvas validator from domain configuration
func NewCanvasValidatorWithConfig(cfg *config.DomainConfig) *CanvasValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &CanvasValidator{
		nameMaxLength:          255,
		maxNodesPerCanvas:      cfg.MaxNodesPerCanvas,
		maxConnectorsPerCanvas: cfg.MaxConnectorsPerCanvas,
	}
}

// ValidateCanvasName validates the canvas name
func (v *CanvasValidator) ValidateCanvasName(name string) error {
	if len(name) > v.nameMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"CANVAS_NAME_TOO_LONG",
			"Canvas name exceeds maximum length",
		).WithDetail("max_length", v.nameMaxLength)
	}
	return nil
}

// ValidateNodeCount validates the number of nodes on a canvas
func (v *CanvasValidator) ValidateNodeCount(count int) error {
	if count > v.maxNodesPerCanvas {
		return errors.ErrNodeLimitExceeded.
			WithDetail("current", count).
			WithDetail("limit", v.maxNodesPerCanvas)
	}
	return nil
}

// ValidateConnectorCount validates the number of connectors on a canvas
func (v *CanvasValidator) ValidateConnectorCount(count int) error {
	if count > v.maxConnectorsPerCanvas {
		return errors.ErrConnectorLimitExceeded.
			WithDetail("current", count).
			WithDetail("limit", v.maxConnectorsPerCanvas)
	}
	return nil
}
