package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/domain/core/valueobjects"
)

func mustLogAction(t *testing.T, targets []string, kind valueobjects.ActionKind, style, color, annotation string) valueobjects.LogAction {
	t.Helper()
	action, err := valueobjects.NewLogAction(targets, kind, style, color, annotation)
	require.NoError(t, err)
	return action
}

func TestCanvas_ApplyLogActions(t *testing.T) {
	t.Run("success style maps to green without animation", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)
		mustCreateNode(t, canvas, "n2", 50, 0, 10, 10)

		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"n1", "n2"}, valueobjects.ActionHighlight, "success", "", ""),
		})

		highlights := canvas.LogHighlights()
		require.Len(t, highlights, 2)
		for _, id := range []string{"n1", "n2"} {
			style, ok := canvas.HighlightFor(id)
			require.True(t, ok, id)
			assert.Equal(t, "#22c55e", style.Color)
			assert.False(t, style.Animation)
		}
	})

	t.Run("explicit color wins over the style keyword", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)

		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"n1"}, valueobjects.ActionHighlight, "error", "#123456", ""),
		})

		style, ok := canvas.HighlightFor("n1")
		require.True(t, ok)
		assert.Equal(t, "#123456", style.Color)
	})

	t.Run("pulse and trace animate", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)
		mustCreateNode(t, canvas, "n2", 50, 0, 10, 10)

		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"n1"}, valueobjects.ActionPulse, "active", "", ""),
			mustLogAction(t, []string{"n2"}, valueobjects.ActionTrace, "path", "", ""),
		})

		pulse, _ := canvas.HighlightFor("n1")
		trace, _ := canvas.HighlightFor("n2")
		assert.True(t, pulse.Animation)
		assert.True(t, trace.Animation)
		assert.Equal(t, "#3b82f6", pulse.Color)
		assert.Equal(t, "#06b6d4", trace.Color)
	})

	t.Run("annotate records the text alongside the highlight", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)

		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"n1"}, valueobjects.ActionAnnotate, "", "", "retry 3/5"),
		})

		text, ok := canvas.AnnotationFor("n1")
		require.True(t, ok)
		assert.Equal(t, "retry 3/5", text)
		_, ok = canvas.HighlightFor("n1")
		assert.True(t, ok)
	})

	t.Run("each application replaces the previous overlay", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)
		mustCreateNode(t, canvas, "n2", 50, 0, 10, 10)

		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"n1"}, valueobjects.ActionAnnotate, "", "", "old"),
		})
		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"n2"}, valueobjects.ActionHighlight, "warning", "", ""),
		})

		assert.NotContains(t, canvas.LogHighlights(), "n1")
		assert.Contains(t, canvas.LogHighlights(), "n2")
		assert.Empty(t, canvas.LogAnnotations())
	})

	t.Run("unknown target ids are tolerated", func(t *testing.T) {
		canvas := newTestCanvas(t)

		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"no-such-node"}, valueobjects.ActionHighlight, "error", "", ""),
		})

		assert.Contains(t, canvas.LogHighlights(), "no-such-node")
	})

	t.Run("later action wins for a repeated target", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)

		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"n1"}, valueobjects.ActionHighlight, "success", "", ""),
			mustLogAction(t, []string{"n1"}, valueobjects.ActionHighlight, "error", "", ""),
		})

		style, _ := canvas.HighlightFor("n1")
		assert.Equal(t, "#ef4444", style.Color)
	})
}

func TestCanvas_ClearOverlays(t *testing.T) {
	canvas := newTestCanvas(t)
	mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)
	canvas.ApplyLogActions([]valueobjects.LogAction{
		mustLogAction(t, []string{"n1"}, valueobjects.ActionAnnotate, "active", "", "note"),
	})

	canvas.ClearOverlays()
	assert.Empty(t, canvas.LogHighlights())
	assert.Empty(t, canvas.LogAnnotations())
}

func TestCanvas_OverlayAccessorsCopy(t *testing.T) {
	canvas := newTestCanvas(t)
	mustCreateNode(t, canvas, "n1", 0, 0, 10, 10)
	canvas.ApplyLogActions([]valueobjects.LogAction{
		mustLogAction(t, []string{"n1"}, valueobjects.ActionHighlight, "success", "", ""),
	})

	leaked := canvas.LogHighlights()
	delete(leaked, "n1")

	_, ok := canvas.HighlightFor("n1")
	assert.True(t, ok)
}
