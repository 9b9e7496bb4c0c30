package aggregates

import (
	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/domain/events"
)

// ApplyLogActions projects parsed log actions onto the canvas. Prior
// highlights and annotations are cleared first, then every resolved target
// id receives a highlight style derived from the action kind and optional
// style keyword; annotate actions additionally record their literal text.
// Target ids are not checked against the element maps; entries for unknown
// ids simply never render.
func (c *Canvas) ApplyLogActions(actions []valueobjects.LogAction) {
	c.highlights = make(map[string]valueobjects.HighlightStyle)
	c.annotations = make(map[string]string)

	targets := 0
	for _, action := range actions {
		style := action.HighlightStyle()
		for _, target := range action.Targets() {
			c.highlights[target] = style
			if action.Kind() == valueobjects.ActionAnnotate {
				c.annotations[target] = action.Annotation()
			}
			targets++
		}
	}

	c.touch()
	c.addEvent(events.NewLogOverlayApplied(c.id.String(), len(actions), targets, c.updatedAt))
}

// ClearLogHighlights removes every highlight entry
func (c *Canvas) ClearLogHighlights() {
	if len(c.highlights) == 0 {
		return
	}
	c.highlights = make(map[string]valueobjects.HighlightStyle)
	c.touch()
}

// ClearLogAnnotations removes every annotation entry
func (c *Canvas) ClearLogAnnotations() {
	if len(c.annotations) == 0 {
		return
	}
	c.annotations = make(map[string]string)
	c.touch()
}

// ClearOverlays removes all highlights and annotations
func (c *Canvas) ClearOverlays() {
	if len(c.highlights) == 0 && len(c.annotations) == 0 {
		return
	}
	c.highlights = make(map[string]valueobjects.HighlightStyle)
	c.annotations = make(map[string]string)
	c.touch()
	c.addEvent(events.NewOverlaysCleared(c.id.String(), c.updatedAt))
}

// LogHighlights returns a copy of the highlight map. Callers may not
// mutate canvas state through it.
func (c *Canvas) LogHighlights() map[string]valueobjects.HighlightStyle {
	out := make(map[string]valueobjects.HighlightStyle, len(c.highlights))
	for id, style := range c.highlights {
		out[id] = style
	}
	return out
}

// LogAnnotations returns a copy of the annotation map
func (c *Canvas) LogAnnotations() map[string]string {
	out := make(map[string]string, len(c.annotations))
	for id, text := range c.annotations {
		out[id] = text
	}
	return out
}

// HighlightFor returns the highlight style for an element, if any
func (c *Canvas) HighlightFor(id string) (valueobjects.HighlightStyle, bool) {
	style, ok := c.highlights[id]
	return style, ok
}

// AnnotationFor returns the annotation text for an element, if any
func (c *Canvas) AnnotationFor(id string) (string, bool) {
	text, ok := c.annotations[id]
	return text, ok
}
