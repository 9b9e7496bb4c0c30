// Package gestures implements the three pointer-gesture protocols of the
// editor: node drag, connector-endpoint drag, and connection creation.
// Each machine owns its transient state and mutates the canvas only at
// committed points, so the aggregate never observes an in-progress
// gesture. Machines are not safe for concurrent use; the caller
// serializes start/move/end sequences and keeps at most one gesture
// active at a time.
package gestures
