package gestures

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
)

func newCanvas(t *testing.T) *aggregates.Canvas {
	t.Helper()
	canvas, err := aggregates.NewCanvas("Gesture Test")
	require.NoError(t, err)
	return canvas
}

func addNode(t *testing.T, c *aggregates.Canvas, id string, x, y float64) *entities.Node {
	t.Helper()
	node, err := c.CreateNode(
		id,
		valueobjects.NodeKindRectangle,
		valueobjects.Position{X: x, Y: y},
		valueobjects.Size{Width: 120, Height: 60},
		id,
	)
	require.NoError(t, err)
	return node
}

func addConnector(t *testing.T, c *aggregates.Canvas, startID, endID string) *entities.Connector {
	t.Helper()
	connector, err := c.CreateConnector("", startID, endID, aggregates.ConnectorOptions{})
	require.NoError(t, err)
	return connector
}

func pt(x, y float64) valueobjects.Position {
	return valueobjects.Position{X: x, Y: y}
}
