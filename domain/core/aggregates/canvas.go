package aggregates

import (
	"time"

	"github.com/google/uuid"

	"flowcanvas/domain/config"
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/domain/events"
	"flowcanvas/domain/geometry"
	pkgerrors "flowcanvas/pkg/errors"
)

// CanvasID represents a unique canvas identifier
type CanvasID string

// NewCanvasID creates a new random CanvasID
func NewCanvasID() CanvasID {
	return CanvasID(uuid.New().String())
}

// String returns the string representation
func (id CanvasID) String() string {
	return string(id)
}

// Canvas is the aggregate root for a diagram. It owns all nodes and
// connectors, the selection, the undo/redo history, and the log overlay
// maps, and it is the only place structural mutation happens. The aggregate
// is not safe for concurrent use; the hosting layer serializes access.
type Canvas struct {
	id   CanvasID
	name string

	nodes          map[string]*entities.Node
	connectors     map[string]*entities.Connector
	nodeOrder      []string
	connectorOrder []string

	selectedNodes      map[string]bool
	selectedConnectors map[string]bool

	highlights  map[string]valueobjects.HighlightStyle
	annotations map[string]string

	viewport valueobjects.Viewport
	settings valueobjects.CanvasSettings

	history *history

	cfg *config.DomainConfig

	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent
}

// NewCanvas creates a new empty canvas with a baseline history entry
func NewCanvas(name string) (*Canvas, error) {
	return NewCanvasWithConfig(name, config.DefaultDomainConfig())
}

// NewCanvasWithConfig creates a new empty canvas with domain configuration
func NewCanvasWithConfig(name string, cfg *config.DomainConfig) (*Canvas, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if name == "" {
		name = cfg.DefaultCanvasName
	}

	now := time.Now()
	canvas := &Canvas{
		id:                 NewCanvasID(),
		name:               name,
		nodes:              make(map[string]*entities.Node),
		connectors:         make(map[string]*entities.Connector),
		nodeOrder:          []string{},
		connectorOrder:     []string{},
		selectedNodes:      make(map[string]bool),
		selectedConnectors: make(map[string]bool),
		highlights:         make(map[string]valueobjects.HighlightStyle),
		annotations:        make(map[string]string),
		viewport:           valueobjects.DefaultViewport(),
		settings:           valueobjects.DefaultCanvasSettings(),
		history:            newHistory(cfg.HistoryLimit),
		cfg:                cfg,
		createdAt:          now,
		updatedAt:          now,
		version:            1,
		events:             []events.DomainEvent{},
	}

	canvas.addEvent(events.NewCanvasCreated(canvas.id.String(), name, now))

	// Baseline snapshot so the first mutation is undoable back to empty
	canvas.pushSnapshot()

	return canvas, nil
}

// ID returns the canvas identifier
func (c *Canvas) ID() CanvasID {
	return c.id
}

// Name returns the canvas name
func (c *Canvas) Name() string {
	return c.name
}

// UpdateName replaces the canvas name
func (c *Canvas) UpdateName(name string) error {
	if name == "" {
		name = c.cfg.DefaultCanvasName
	}
	if len(name) > 255 {
		return pkgerrors.NewValidationError("canvas name exceeds maximum length of 255 characters")
	}
	if name == c.name {
		return nil
	}
	c.name = name
	c.touch()
	return nil
}

// Viewport returns the current viewport
func (c *Canvas) Viewport() valueobjects.Viewport {
	return c.viewport
}

// SetViewport replaces the viewport. Presentation state only: it is not
// snapshotted into history.
func (c *Canvas) SetViewport(v valueobjects.Viewport) error {
	if v.Zoom <= 0 {
		return pkgerrors.NewValidationError("viewport zoom must be positive")
	}
	c.viewport = v
	c.touch()
	return nil
}

// Settings returns the current canvas settings
func (c *Canvas) Settings() valueobjects.CanvasSettings {
	return c.settings
}

// Config returns the domain configuration the canvas was built with
func (c *Canvas) Config() *config.DomainConfig {
	return c.cfg
}

// UpdateSettings replaces the canvas settings
func (c *Canvas) UpdateSettings(s valueobjects.CanvasSettings) error {
	if s.GridSize <= 0 {
		return pkgerrors.NewValidationError("grid size must be positive")
	}
	if !s.DefaultNodeSize.Valid() {
		return pkgerrors.ErrInvalidNodeSize
	}
	c.settings = s
	c.touch()
	return nil
}

// CreatedAt returns when the canvas was created
func (c *Canvas) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the canvas was last updated
func (c *Canvas) UpdatedAt() time.Time {
	return c.updatedAt
}

// Version returns the canvas mutation counter
func (c *Canvas) Version() int {
	return c.version
}

// NodeCount returns the number of nodes on the canvas
func (c *Canvas) NodeCount() int {
	return len(c.nodes)
}

// ConnectorCount returns the number of connectors on the canvas
func (c *Canvas) ConnectorCount() int {
	return len(c.connectors)
}

// GetNode retrieves a node by id
func (c *Canvas) GetNode(id string) (*entities.Node, error) {
	node, exists := c.nodes[id]
	if !exists {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("id", id)
	}
	return node, nil
}

// HasNode reports whether a node exists without error
func (c *Canvas) HasNode(id string) bool {
	_, exists := c.nodes[id]
	return exists
}

// GetConnector retrieves a connector by id
func (c *Canvas) GetConnector(id string) (*entities.Connector, error) {
	conn, exists := c.connectors[id]
	if !exists {
		return nil, pkgerrors.ErrConnectorNotFound.WithDetail("id", id)
	}
	return conn, nil
}

// HasConnector reports whether a connector exists without error
func (c *Canvas) HasConnector(id string) bool {
	_, exists := c.connectors[id]
	return exists
}

// GetAllNodes returns all nodes in insertion order
func (c *Canvas) GetAllNodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(c.nodeOrder))
	for _, id := range c.nodeOrder {
		if node, ok := c.nodes[id]; ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// GetAllConnectors returns all connectors in insertion order
func (c *Canvas) GetAllConnectors() []*entities.Connector {
	conns := make([]*entities.Connector, 0, len(c.connectorOrder))
	for _, id := range c.connectorOrder {
		if conn, ok := c.connectors[id]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// Node operations

// AddNode places a constructed node on the canvas
func (c *Canvas) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if _, exists := c.nodes[node.ID()]; exists {
		return pkgerrors.ErrElementIDTaken.WithDetail("id", node.ID())
	}
	if len(c.nodes) >= c.cfg.MaxNodesPerCanvas {
		return pkgerrors.ErrNodeLimitExceeded.WithDetail("limit", c.cfg.MaxNodesPerCanvas)
	}

	c.nodes[node.ID()] = node
	c.nodeOrder = append(c.nodeOrder, node.ID())
	c.touch()
	c.addEvent(events.NewNodeAdded(c.id.String(), node.ID(), string(node.Kind()), node.Position(), c.updatedAt))
	c.pushSnapshot()

	return nil
}

// CreateNode builds a node with canvas defaults applied and places it
func (c *Canvas) CreateNode(id string, kind valueobjects.NodeKind, position valueobjects.Position, size valueobjects.Size, title string) (*entities.Node, error) {
	if size == (valueobjects.Size{}) {
		size = c.settings.DefaultNodeSize
	}

	node, err := entities.NewNode(id, kind, position, size, title)
	if err != nil {
		return nil, err
	}

	if err := c.AddNode(node); err != nil {
		return nil, err
	}
	return node, nil
}

// RemoveNode deletes a node, cascading to every connector attached to it,
// then deselects it and snapshots.
func (c *Canvas) RemoveNode(id string) error {
	if _, exists := c.nodes[id]; !exists {
		return pkgerrors.ErrNodeNotFound.WithDetail("id", id)
	}

	cascaded := []string{}
	for _, connID := range c.connectorOrder {
		if conn, ok := c.connectors[connID]; ok && conn.IsConnectedToNode(id) {
			cascaded = append(cascaded, connID)
		}
	}
	for _, connID := range cascaded {
		delete(c.connectors, connID)
		c.connectorOrder = removeFromOrder(c.connectorOrder, connID)
		delete(c.selectedConnectors, connID)
	}

	delete(c.nodes, id)
	c.nodeOrder = removeFromOrder(c.nodeOrder, id)
	delete(c.selectedNodes, id)

	c.touch()
	c.addEvent(events.NewNodeRemoved(c.id.String(), id, cascaded, c.updatedAt))
	c.pushSnapshot()

	return nil
}

// MoveNode relocates a node, snapping to the grid when enabled, and
// refreshes the cached absolute position of every connection point attached
// to it. A zero-distance move still refreshes those caches; the gesture
// layer relies on that to force recomputation. Moves do not snapshot;
// commit points in the gesture layer push history explicitly.
func (c *Canvas) MoveNode(id string, position valueobjects.Position) error {
	node, exists := c.nodes[id]
	if !exists {
		return pkgerrors.ErrNodeNotFound.WithDetail("id", id)
	}

	if c.settings.SnapToGrid {
		position = geometry.Snap(position, c.settings.GridSize)
	}

	oldPos := node.Position()
	if err := node.MoveTo(position); err != nil {
		return err
	}

	c.recomputeEndpointsFor(id)

	if !oldPos.Equals(node.Position()) {
		c.touch()
		c.addEvent(events.NewNodeMoved(c.id.String(), id, oldPos, node.Position(), c.updatedAt))
	}

	return nil
}

// NodeChanges carries optional node field updates; nil fields are untouched
type NodeChanges struct {
	Title       *string
	Description *string
	Color       *string
	Kind        *valueobjects.NodeKind
	Size        *valueobjects.Size
	Metadata    map[string]interface{}
}

// UpdateNode applies presentation changes to a node and snapshots once
func (c *Canvas) UpdateNode(id string, changes NodeChanges) error {
	node, exists := c.nodes[id]
	if !exists {
		return pkgerrors.ErrNodeNotFound.WithDetail("id", id)
	}

	changed := []string{}

	if changes.Title != nil && *changes.Title != node.Title() {
		node.UpdateTitle(*changes.Title)
		changed = append(changed, "title")
	}
	if changes.Description != nil && *changes.Description != node.Description() {
		node.UpdateDescription(*changes.Description)
		changed = append(changed, "description")
	}
	if changes.Color != nil && *changes.Color != node.Color() {
		node.UpdateColor(*changes.Color)
		changed = append(changed, "color")
	}
	if changes.Kind != nil && *changes.Kind != node.Kind() {
		if err := node.UpdateKind(*changes.Kind); err != nil {
			return err
		}
		changed = append(changed, "kind")
	}
	if changes.Size != nil && !changes.Size.Equals(node.Size()) {
		if err := node.Resize(*changes.Size); err != nil {
			return err
		}
		c.recomputeEndpointsFor(id)
		changed = append(changed, "size")
	}
	for key, value := range changes.Metadata {
		if err := node.SetMetadata(key, value); err != nil {
			return err
		}
		changed = append(changed, "metadata."+key)
	}

	if len(changed) == 0 {
		return nil
	}

	c.touch()
	c.addEvent(events.NewNodeUpdated(c.id.String(), id, changed, c.updatedAt))
	c.pushSnapshot()

	return nil
}

// UpdateNodeID migrates a node's identifier. The rename rekeys the node
// map in place, rewrites every connector endpoint referencing the old id,
// and migrates selection and overlay entries. Fails without mutation when
// the new id is already taken.
func (c *Canvas) UpdateNodeID(oldID, newID string) error {
	node, exists := c.nodes[oldID]
	if !exists {
		return pkgerrors.ErrNodeNotFound.WithDetail("id", oldID)
	}
	if newID == "" {
		return pkgerrors.ErrElementIDRequired
	}
	if oldID == newID {
		return nil
	}
	if _, taken := c.nodes[newID]; taken {
		return pkgerrors.ErrElementIDTaken.WithDetail("id", newID)
	}

	delete(c.nodes, oldID)
	if err := node.Rename(newID); err != nil {
		c.nodes[oldID] = node
		return err
	}
	c.nodes[newID] = node
	replaceInOrder(c.nodeOrder, oldID, newID)

	for _, connID := range c.connectorOrder {
		if conn, ok := c.connectors[connID]; ok {
			conn.RetargetEndpoint(oldID, newID)
		}
	}

	c.migrateAuxiliaryKeys(oldID, newID, c.selectedNodes)

	c.touch()
	c.addEvent(events.NewNodeRenamed(c.id.String(), oldID, newID, c.updatedAt))
	c.pushSnapshot()

	return nil
}

// Connector operations

// ConnectorOptions tunes connector creation; zero values fall back to
// inferred sides, midpoint offsets, and the default style.
type ConnectorOptions struct {
	Kind        valueobjects.ConnectorKind
	StartSide   valueobjects.Side
	EndSide     valueobjects.Side
	StartOffset *float64
	EndOffset   *float64
	Label       string
	Style       *valueobjects.ConnectorStyle
}

// CreateConnector wires two nodes together. Omitted sides are inferred via
// the closest-side heuristic using the other node's center as the
// reference point; omitted offsets default to the side midpoint. An empty
// id gets a generated one.
func (c *Canvas) CreateConnector(id, startNodeID, endNodeID string, opts ConnectorOptions) (*entities.Connector, error) {
	startNode, exists := c.nodes[startNodeID]
	if !exists {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("id", startNodeID)
	}
	endNode, exists := c.nodes[endNodeID]
	if !exists {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("id", endNodeID)
	}

	if !c.cfg.AllowSelfConnections && startNodeID == endNodeID {
		return nil, pkgerrors.NewValidationError("cannot connect a node to itself")
	}
	if len(c.connectors) >= c.cfg.MaxConnectorsPerCanvas {
		return nil, pkgerrors.ErrConnectorLimitExceeded.WithDetail("limit", c.cfg.MaxConnectorsPerCanvas)
	}

	if id == "" {
		id = uuid.New().String()
	}
	if _, taken := c.connectors[id]; taken {
		return nil, pkgerrors.ErrElementIDTaken.WithDetail("id", id)
	}

	startSide := opts.StartSide
	if startSide == "" {
		startPos, startSize := startNode.Bounds()
		startSide = geometry.ClosestSide(endNode.Center(), startPos, startSize)
	}
	endSide := opts.EndSide
	if endSide == "" {
		endPos, endSize := endNode.Bounds()
		endSide = geometry.ClosestSide(startNode.Center(), endPos, endSize)
	}

	startOffset := 0.5
	if opts.StartOffset != nil {
		startOffset = *opts.StartOffset
	}
	endOffset := 0.5
	if opts.EndOffset != nil {
		endOffset = *opts.EndOffset
	}

	start, err := valueobjects.NewConnectionPoint(startNodeID, startSide, startOffset)
	if err != nil {
		return nil, err
	}
	end, err := valueobjects.NewConnectionPoint(endNodeID, endSide, endOffset)
	if err != nil {
		return nil, err
	}

	conn, err := entities.NewConnector(id, opts.Kind, start, end)
	if err != nil {
		return nil, err
	}
	if opts.Label != "" {
		conn.UpdateLabel(opts.Label)
	}
	if opts.Style != nil {
		conn.UpdateStyle(*opts.Style)
	}

	c.connectors[id] = conn
	c.connectorOrder = append(c.connectorOrder, id)
	c.refreshConnectorEndpoints(conn)

	c.touch()
	c.addEvent(events.NewConnectorAdded(
		c.id.String(), id, startNodeID, endNodeID,
		string(startSide), string(endSide), c.updatedAt,
	))
	c.pushSnapshot()

	return conn, nil
}

// AddConnector places a constructed connector on the canvas
func (c *Canvas) AddConnector(conn *entities.Connector) error {
	if conn == nil {
		return pkgerrors.NewValidationError("connector cannot be nil")
	}
	if _, exists := c.connectors[conn.ID()]; exists {
		return pkgerrors.ErrElementIDTaken.WithDetail("id", conn.ID())
	}
	if !c.HasNode(conn.StartPoint().NodeID()) || !c.HasNode(conn.EndPoint().NodeID()) {
		return pkgerrors.ErrDanglingEndpoint.WithDetail("id", conn.ID())
	}
	if len(c.connectors) >= c.cfg.MaxConnectorsPerCanvas {
		return pkgerrors.ErrConnectorLimitExceeded.WithDetail("limit", c.cfg.MaxConnectorsPerCanvas)
	}

	c.connectors[conn.ID()] = conn
	c.connectorOrder = append(c.connectorOrder, conn.ID())
	c.refreshConnectorEndpoints(conn)

	c.touch()
	c.addEvent(events.NewConnectorAdded(
		c.id.String(), conn.ID(),
		conn.StartPoint().NodeID(), conn.EndPoint().NodeID(),
		string(conn.StartPoint().Side()), string(conn.EndPoint().Side()),
		c.updatedAt,
	))
	c.pushSnapshot()

	return nil
}

// RemoveConnector deletes a connector and deselects it
func (c *Canvas) RemoveConnector(id string) error {
	conn, exists := c.connectors[id]
	if !exists {
		return pkgerrors.ErrConnectorNotFound.WithDetail("id", id)
	}

	delete(c.connectors, id)
	c.connectorOrder = removeFromOrder(c.connectorOrder, id)
	delete(c.selectedConnectors, id)

	c.touch()
	c.addEvent(events.NewConnectorRemoved(
		c.id.String(), id,
		conn.StartPoint().NodeID(), conn.EndPoint().NodeID(),
		c.updatedAt,
	))
	c.pushSnapshot()

	return nil
}

// ConnectorChanges carries optional connector field updates
type ConnectorChanges struct {
	Label *string
	Kind  *valueobjects.ConnectorKind
	Style *valueobjects.ConnectorStyle
}

// UpdateConnector applies presentation changes to a connector and
// snapshots once
func (c *Canvas) UpdateConnector(id string, changes ConnectorChanges) error {
	conn, exists := c.connectors[id]
	if !exists {
		return pkgerrors.ErrConnectorNotFound.WithDetail("id", id)
	}

	changed := []string{}

	if changes.Label != nil && *changes.Label != conn.Label() {
		conn.UpdateLabel(*changes.Label)
		changed = append(changed, "label")
	}
	if changes.Kind != nil && *changes.Kind != conn.Kind() {
		if err := conn.UpdateKind(*changes.Kind); err != nil {
			return err
		}
		changed = append(changed, "kind")
	}
	if changes.Style != nil && !changes.Style.Equals(conn.Style()) {
		conn.UpdateStyle(*changes.Style)
		changed = append(changed, "style")
	}

	if len(changed) == 0 {
		return nil
	}

	c.touch()
	c.addEvent(events.NewConnectorUpdated(c.id.String(), id, changed, c.updatedAt))
	c.pushSnapshot()

	return nil
}

// UpdateConnectorEndpoint reattaches one end of a connector to a new
// anchor. It refreshes the cached absolute position but does not snapshot;
// the gesture layer pushes history at its commit point.
func (c *Canvas) UpdateConnectorEndpoint(connectorID string, end entities.ConnectorEnd, nodeID string, side valueobjects.Side, offset float64) error {
	conn, exists := c.connectors[connectorID]
	if !exists {
		return pkgerrors.ErrConnectorNotFound.WithDetail("id", connectorID)
	}
	if _, exists := c.nodes[nodeID]; !exists {
		return pkgerrors.ErrNodeNotFound.WithDetail("id", nodeID)
	}

	point, err := valueobjects.NewConnectionPoint(nodeID, side, offset)
	if err != nil {
		return err
	}

	oldNodeID := conn.Endpoint(end).NodeID()
	if err := conn.UpdateEndpoint(end, point); err != nil {
		return err
	}
	c.refreshConnectorEndpoints(conn)

	c.touch()
	c.addEvent(events.NewConnectorRerouted(
		c.id.String(), connectorID, string(end),
		oldNodeID, nodeID, string(side), c.updatedAt,
	))

	return nil
}

// UpdateConnectorID migrates a connector's identifier, including its
// selection and overlay entries. Fails without mutation when the new id is
// already taken.
func (c *Canvas) UpdateConnectorID(oldID, newID string) error {
	conn, exists := c.connectors[oldID]
	if !exists {
		return pkgerrors.ErrConnectorNotFound.WithDetail("id", oldID)
	}
	if newID == "" {
		return pkgerrors.ErrElementIDRequired
	}
	if oldID == newID {
		return nil
	}
	if _, taken := c.connectors[newID]; taken {
		return pkgerrors.ErrElementIDTaken.WithDetail("id", newID)
	}

	delete(c.connectors, oldID)
	if err := conn.Rename(newID); err != nil {
		c.connectors[oldID] = conn
		return err
	}
	c.connectors[newID] = conn
	replaceInOrder(c.connectorOrder, oldID, newID)

	c.migrateAuxiliaryKeys(oldID, newID, c.selectedConnectors)

	c.touch()
	c.addEvent(events.NewConnectorRenamed(c.id.String(), oldID, newID, c.updatedAt))
	c.pushSnapshot()

	return nil
}

// Hit testing

// NodeAtPoint returns the first node in insertion order whose bounds
// contain the point
func (c *Canvas) NodeAtPoint(point valueobjects.Position) (*entities.Node, bool) {
	for _, id := range c.nodeOrder {
		node := c.nodes[id]
		if node == nil {
			continue
		}
		pos, size := node.Bounds()
		if geometry.PointInBounds(point, pos, size) {
			return node, true
		}
	}
	return nil, false
}

// NodeAtPointPadded returns the first node in insertion order whose padded
// bounds (the skirt) contain the point
func (c *Canvas) NodeAtPointPadded(point valueobjects.Position, pad float64) (*entities.Node, bool) {
	for _, id := range c.nodeOrder {
		node := c.nodes[id]
		if node == nil {
			continue
		}
		pos, size := node.Bounds()
		if geometry.PointInPaddedBounds(point, pos, size, pad) {
			return node, true
		}
	}
	return nil, false
}

// ConnectorEndpointNear returns the first connector endpoint within radius
// of the point, in insertion order
func (c *Canvas) ConnectorEndpointNear(point valueobjects.Position, radius float64) (*entities.Connector, entities.ConnectorEnd, bool) {
	for _, id := range c.connectorOrder {
		conn := c.connectors[id]
		if conn == nil {
			continue
		}
		if geometry.PointNear(point, conn.StartPoint().AbsolutePosition(), radius) {
			return conn, entities.EndStart, true
		}
		if geometry.PointNear(point, conn.EndPoint().AbsolutePosition(), radius) {
			return conn, entities.EndEnd, true
		}
	}
	return nil, "", false
}

// Event plumbing

// GetUncommittedEvents returns all uncommitted domain events
func (c *Canvas) GetUncommittedEvents() []events.DomainEvent {
	all := make([]events.DomainEvent, len(c.events))
	copy(all, c.events)
	return all
}

// MarkEventsAsCommitted clears the uncommitted events
func (c *Canvas) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
}

// Private helpers

func (c *Canvas) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

func (c *Canvas) touch() {
	c.updatedAt = time.Now()
	c.version++
}

// recomputeEndpointsFor refreshes the cached absolute position of every
// connection point attached to the given node
func (c *Canvas) recomputeEndpointsFor(nodeID string) {
	node, ok := c.nodes[nodeID]
	if !ok {
		return
	}
	pos, size := node.Bounds()

	for _, connID := range c.connectorOrder {
		conn := c.connectors[connID]
		if conn == nil {
			continue
		}
		if conn.StartPoint().NodeID() == nodeID {
			p := conn.StartPoint()
			conn.SetEndpointAbsolute(entities.EndStart, geometry.ConnectionPointPosition(pos, size, p.Side(), p.Offset()))
		}
		if conn.EndPoint().NodeID() == nodeID {
			p := conn.EndPoint()
			conn.SetEndpointAbsolute(entities.EndEnd, geometry.ConnectionPointPosition(pos, size, p.Side(), p.Offset()))
		}
	}
}

// refreshConnectorEndpoints recomputes both cached endpoint positions of a
// single connector from the current node geometry
func (c *Canvas) refreshConnectorEndpoints(conn *entities.Connector) {
	if startNode, ok := c.nodes[conn.StartPoint().NodeID()]; ok {
		pos, size := startNode.Bounds()
		p := conn.StartPoint()
		conn.SetEndpointAbsolute(entities.EndStart, geometry.ConnectionPointPosition(pos, size, p.Side(), p.Offset()))
	}
	if endNode, ok := c.nodes[conn.EndPoint().NodeID()]; ok {
		pos, size := endNode.Bounds()
		p := conn.EndPoint()
		conn.SetEndpointAbsolute(entities.EndEnd, geometry.ConnectionPointPosition(pos, size, p.Side(), p.Offset()))
	}
}

// migrateAuxiliaryKeys moves selection and overlay entries from an old
// element id to its replacement
func (c *Canvas) migrateAuxiliaryKeys(oldID, newID string, selection map[string]bool) {
	if selection[oldID] {
		delete(selection, oldID)
		selection[newID] = true
	}
	if hl, ok := c.highlights[oldID]; ok {
		delete(c.highlights, oldID)
		c.highlights[newID] = hl
	}
	if an, ok := c.annotations[oldID]; ok {
		delete(c.annotations, oldID)
		c.annotations[newID] = an
	}
}

func removeFromOrder(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

func replaceInOrder(order []string, oldID, newID string) {
	for i, v := range order {
		if v == oldID {
			order[i] = newID
			return
		}
	}
}
