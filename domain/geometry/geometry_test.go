package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flowcanvas/domain/core/valueobjects"
)

func pos(x, y float64) valueobjects.Position {
	return valueobjects.Position{X: x, Y: y}
}

func size(w, h float64) valueobjects.Size {
	return valueobjects.Size{Width: w, Height: h}
}

func TestConnectionPointPosition(t *testing.T) {
	nodePos := pos(100, 100)
	nodeSize := size(120, 60)

	tests := []struct {
		name   string
		side   valueobjects.Side
		offset float64
		want   valueobjects.Position
	}{
		{"top midpoint", valueobjects.SideTop, 0.5, pos(160, 100)},
		{"top start", valueobjects.SideTop, 0, pos(100, 100)},
		{"top end", valueobjects.SideTop, 1, pos(220, 100)},
		{"bottom midpoint", valueobjects.SideBottom, 0.5, pos(160, 160)},
		{"left midpoint", valueobjects.SideLeft, 0.5, pos(100, 130)},
		{"left quarter", valueobjects.SideLeft, 0.25, pos(100, 115)},
		{"right midpoint", valueobjects.SideRight, 0.5, pos(220, 130)},
		{"right end", valueobjects.SideRight, 1, pos(220, 160)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConnectionPointPosition(nodePos, nodeSize, tt.side, tt.offset)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestConnectionPointPosition_DoesNotClampOffset(t *testing.T) {
	got := ConnectionPointPosition(pos(0, 0), size(100, 50), valueobjects.SideTop, 1.5)
	assert.InDelta(t, 150.0, got.X, 1e-9)
	assert.InDelta(t, 0.0, got.Y, 1e-9)
}

func TestCenter(t *testing.T) {
	c := Center(pos(100, 100), size(120, 60))
	assert.InDelta(t, 160.0, c.X, 1e-9)
	assert.InDelta(t, 130.0, c.Y, 1e-9)
}

func TestClosestSide(t *testing.T) {
	nodePos := pos(100, 100)
	nodeSize := size(120, 60)
	// center is (160, 130)

	tests := []struct {
		name string
		from valueobjects.Position
		want valueobjects.Side
	}{
		{"reference to the right picks the far left side", pos(400, 130), valueobjects.SideLeft},
		{"reference to the left picks the far right side", pos(-200, 130), valueobjects.SideRight},
		{"reference below picks the far top side", pos(160, 500), valueobjects.SideTop},
		{"reference above picks the far bottom side", pos(160, -300), valueobjects.SideBottom},
		{"horizontal dominates on shallow diagonals", pos(400, 200), valueobjects.SideLeft},
		{"vertical dominates on steep diagonals", pos(200, 500), valueobjects.SideTop},
		{"exact diagonal tie falls to the horizontal branch", pos(260, 230), valueobjects.SideLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClosestSide(tt.from, nodePos, nodeSize))
		})
	}
}

func TestClosestSide_TranslationInvariant(t *testing.T) {
	nodePos := pos(100, 100)
	nodeSize := size(120, 60)
	from := pos(400, 250)

	base := ClosestSide(from, nodePos, nodeSize)

	for _, d := range []valueobjects.Position{pos(50, -30), pos(-1000, 1000), pos(0.5, 0.25)} {
		shifted := ClosestSide(
			pos(from.X+d.X, from.Y+d.Y),
			pos(nodePos.X+d.X, nodePos.Y+d.Y),
			nodeSize,
		)
		assert.Equal(t, base, shifted, "side must not change when both points translate together")
	}
}

func TestAnchorFromPoint(t *testing.T) {
	nodePos := pos(100, 100)
	nodeSize := size(120, 60)

	tests := []struct {
		name       string
		point      valueobjects.Position
		wantSide   valueobjects.Side
		wantOffset float64
	}{
		{"right of center", pos(260, 130), valueobjects.SideRight, 0.5},
		{"left of center", pos(60, 115), valueobjects.SideLeft, 0.25},
		{"below center", pos(160, 200), valueobjects.SideBottom, 0.5},
		{"above center", pos(130, 50), valueobjects.SideTop, 0.25},
		{"offset clamped low", pos(300, 80), valueobjects.SideRight, 0},
		{"offset clamped high", pos(300, 200), valueobjects.SideRight, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			side, offset := AnchorFromPoint(nodePos, nodeSize, tt.point)
			assert.Equal(t, tt.wantSide, side)
			assert.InDelta(t, tt.wantOffset, offset, 1e-9)
		})
	}
}

// Dropping exactly on a side's midpoint must round-trip through the anchor
// mapping back to the same point.
func TestAnchorFromPoint_InvertsMidpoints(t *testing.T) {
	nodePos := pos(100, 100)
	nodeSize := size(120, 60)

	for _, s := range []valueobjects.Side{
		valueobjects.SideTop,
		valueobjects.SideRight,
		valueobjects.SideBottom,
		valueobjects.SideLeft,
	} {
		point := ConnectionPointPosition(nodePos, nodeSize, s, 0.5)
		side, offset := AnchorFromPoint(nodePos, nodeSize, point)
		assert.Equal(t, s, side, "side %s", s)
		assert.InDelta(t, 0.5, offset, 1e-9, "side %s", s)

		back := ConnectionPointPosition(nodePos, nodeSize, side, offset)
		assert.InDelta(t, point.X, back.X, 1e-9)
		assert.InDelta(t, point.Y, back.Y, 1e-9)
	}
}

func TestPointInBounds(t *testing.T) {
	nodePos := pos(100, 100)
	nodeSize := size(120, 60)

	tests := []struct {
		name  string
		point valueobjects.Position
		want  bool
	}{
		{"inside", pos(150, 120), true},
		{"on top-left corner", pos(100, 100), true},
		{"on bottom-right corner", pos(220, 160), true},
		{"on right edge", pos(220, 130), true},
		{"just outside right", pos(220.01, 130), false},
		{"above", pos(150, 99), false},
		{"far away", pos(-50, -50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointInBounds(tt.point, nodePos, nodeSize))
		})
	}
}

func TestPointInPaddedBounds(t *testing.T) {
	nodePos := pos(100, 100)
	nodeSize := size(120, 60)
	pad := 16.0

	assert.True(t, PointInPaddedBounds(pos(90, 95), nodePos, nodeSize, pad))
	assert.True(t, PointInPaddedBounds(pos(236, 176), nodePos, nodeSize, pad))
	assert.False(t, PointInPaddedBounds(pos(236.5, 130), nodePos, nodeSize, pad))
	assert.False(t, PointInPaddedBounds(pos(160, 60), nodePos, nodeSize, pad))
}

func TestPointNear(t *testing.T) {
	assert.True(t, PointNear(pos(0, 0), pos(9, 12), 15))
	assert.True(t, PointNear(pos(0, 0), pos(15, 0), 15))
	assert.False(t, PointNear(pos(0, 0), pos(9, 12.01), 15))
	assert.False(t, PointNear(pos(0, 0), pos(16, 0), 15))
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name string
		in   valueobjects.Position
		grid float64
		want valueobjects.Position
	}{
		{"rounds down", pos(108, 109), 20, pos(100, 100)},
		{"rounds up", pos(111, 112), 20, pos(120, 120)},
		{"already aligned", pos(140, 160), 20, pos(140, 160)},
		{"zero grid is identity", pos(107, 113), 0, pos(107, 113)},
		{"negative grid is identity", pos(107, 113), -5, pos(107, 113)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Snap(tt.in, tt.grid)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}
