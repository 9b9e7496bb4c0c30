// Package geometry maps symbolic connection descriptors onto canvas
// coordinates and answers the hit-testing questions the interaction layer
// asks. Everything here is a pure function of its arguments.
package geometry

import (
	"math"

	"flowcanvas/domain/core/valueobjects"
)

// ConnectionPointPosition resolves a (side, offset) descriptor against a
// node's bounds. For top/bottom the offset runs along the width, for
// left/right along the height. The offset is not clamped here; callers are
// responsible for keeping it within [0,1].
func ConnectionPointPosition(nodePos valueobjects.Position, nodeSize valueobjects.Size, side valueobjects.Side, offset float64) valueobjects.Position {
	switch side {
	case valueobjects.SideTop:
		return valueobjects.Position{X: nodePos.X + nodeSize.Width*offset, Y: nodePos.Y}
	case valueobjects.SideBottom:
		return valueobjects.Position{X: nodePos.X + nodeSize.Width*offset, Y: nodePos.Y + nodeSize.Height}
	case valueobjects.SideLeft:
		return valueobjects.Position{X: nodePos.X, Y: nodePos.Y + nodeSize.Height*offset}
	case valueobjects.SideRight:
		return valueobjects.Position{X: nodePos.X + nodeSize.Width, Y: nodePos.Y + nodeSize.Height*offset}
	default:
		return nodePos
	}
}

// Center returns the midpoint of a node's bounds
func Center(nodePos valueobjects.Position, nodeSize valueobjects.Size) valueobjects.Position {
	return valueobjects.Position{
		X: nodePos.X + nodeSize.Width/2,
		Y: nodePos.Y + nodeSize.Height/2,
	}
}

// ClosestSide picks which side of a node to attach an automatically created
// connector to, given a reference point. The side FACING AWAY from the
// reference is chosen: from the target's point of view the connector then
// points back toward the source. A |dx| == |dy| tie falls into the
// horizontal branch.
func ClosestSide(from valueobjects.Position, nodePos valueobjects.Position, nodeSize valueobjects.Size) valueobjects.Side {
	center := Center(nodePos, nodeSize)
	dx := from.X - center.X
	dy := from.Y - center.Y

	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return valueobjects.SideLeft
		}
		return valueobjects.SideRight
	}
	if dy > 0 {
		return valueobjects.SideTop
	}
	return valueobjects.SideBottom
}

// AnchorFromPoint converts an arbitrary drop point into a (side, offset)
// pair proportional to where on the node the drop occurred. Unlike
// ClosestSide this picks the side TOWARD the point, and it is the rule used
// by the manual drag-drop gestures. The returned offset is clamped to [0,1].
func AnchorFromPoint(nodePos valueobjects.Position, nodeSize valueobjects.Size, point valueobjects.Position) (valueobjects.Side, float64) {
	center := Center(nodePos, nodeSize)
	dx := point.X - center.X
	dy := point.Y - center.Y

	if math.Abs(dx) > math.Abs(dy) {
		offset := clamp01((point.Y - nodePos.Y) / nodeSize.Height)
		if dx > 0 {
			return valueobjects.SideRight, offset
		}
		return valueobjects.SideLeft, offset
	}

	offset := clamp01((point.X - nodePos.X) / nodeSize.Width)
	if dy > 0 {
		return valueobjects.SideBottom, offset
	}
	return valueobjects.SideTop, offset
}

// PointInBounds reports whether a point lies within a node's rectangular
// bounds. Hit testing always uses the bounding box, regardless of the
// node's visual shape.
func PointInBounds(point valueobjects.Position, nodePos valueobjects.Position, nodeSize valueobjects.Size) bool {
	return point.X >= nodePos.X && point.X <= nodePos.X+nodeSize.Width &&
		point.Y >= nodePos.Y && point.Y <= nodePos.Y+nodeSize.Height
}

// PointInPaddedBounds reports whether a point lies within a node's bounds
// expanded by pad on every side (the node's skirt).
func PointInPaddedBounds(point valueobjects.Position, nodePos valueobjects.Position, nodeSize valueobjects.Size, pad float64) bool {
	return point.X >= nodePos.X-pad && point.X <= nodePos.X+nodeSize.Width+pad &&
		point.Y >= nodePos.Y-pad && point.Y <= nodePos.Y+nodeSize.Height+pad
}

// PointNear reports whether two points lie within radius of each other
func PointNear(a, b valueobjects.Position, radius float64) bool {
	return a.DistanceTo(b) <= radius
}

// Snap rounds a position onto a grid of the given spacing. A non-positive
// spacing returns the position unchanged.
func Snap(p valueobjects.Position, gridSize float64) valueobjects.Position {
	if gridSize <= 0 {
		return p
	}
	return valueobjects.Position{
		X: math.Round(p.X/gridSize) * gridSize,
		Y: math.Round(p.Y/gridSize) * gridSize,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
