package aggregates

import (
	"encoding/json"

	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/domain/events"
	pkgerrors "flowcanvas/pkg/errors"
)

// canvasDocument is the export shape: nodes and connectors as ordered
// [id, entityData] pairs plus viewport and settings. Intended for
// process-local clone/export use, not as a versioned persistence format.
type canvasDocument struct {
	Nodes      [][]json.RawMessage          `json:"nodes"`
	Connectors [][]json.RawMessage          `json:"connectors"`
	Viewport   *valueobjects.Viewport       `json:"viewport,omitempty"`
	Settings   *valueobjects.CanvasSettings `json:"settings,omitempty"`
}

// ToJSON exports the full canvas state. Pair order follows insertion order.
func (c *Canvas) ToJSON() ([]byte, error) {
	doc := canvasDocument{
		Nodes:      make([][]json.RawMessage, 0, len(c.nodeOrder)),
		Connectors: make([][]json.RawMessage, 0, len(c.connectorOrder)),
	}

	for _, id := range c.nodeOrder {
		node, ok := c.nodes[id]
		if !ok {
			continue
		}
		pair, err := marshalPair(id, node)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "marshal node %q", id)
		}
		doc.Nodes = append(doc.Nodes, pair)
	}

	for _, id := range c.connectorOrder {
		conn, ok := c.connectors[id]
		if !ok {
			continue
		}
		pair, err := marshalPair(id, conn)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "marshal connector %q", id)
		}
		doc.Connectors = append(doc.Connectors, pair)
	}

	viewport := c.viewport
	settings := c.settings
	doc.Viewport = &viewport
	doc.Settings = &settings

	return json.Marshal(doc)
}

// FromJSON replaces the live canvas state with the document's contents.
// The import is all-or-nothing: any malformed pair or dangling connector
// endpoint fails the whole import and leaves current state untouched. On
// success the selection is cleared and one fresh history snapshot is
// pushed as the new baseline. Overlays are outside the document format and
// survive an import; stale entries are tolerated.
func (c *Canvas) FromJSON(data []byte) error {
	var doc canvasDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return pkgerrors.NewValidationError("malformed canvas document: " + err.Error())
	}

	nodes := make(map[string]*entities.Node, len(doc.Nodes))
	nodeOrder := make([]string, 0, len(doc.Nodes))
	for _, pair := range doc.Nodes {
		id, raw, err := splitPair(pair)
		if err != nil {
			return err
		}
		var node entities.Node
		if err := json.Unmarshal(raw, &node); err != nil {
			return pkgerrors.NewValidationError("malformed node entry " + id + ": " + err.Error())
		}
		if node.ID() != id {
			// The pair key is authoritative
			if err := node.Rename(id); err != nil {
				return err
			}
		}
		if _, dup := nodes[id]; !dup {
			nodeOrder = append(nodeOrder, id)
		}
		nodes[id] = &node
	}

	connectors := make(map[string]*entities.Connector, len(doc.Connectors))
	connectorOrder := make([]string, 0, len(doc.Connectors))
	for _, pair := range doc.Connectors {
		id, raw, err := splitPair(pair)
		if err != nil {
			return err
		}
		var conn entities.Connector
		if err := json.Unmarshal(raw, &conn); err != nil {
			return pkgerrors.NewValidationError("malformed connector entry " + id + ": " + err.Error())
		}
		if conn.ID() != id {
			if err := conn.Rename(id); err != nil {
				return err
			}
		}
		if _, ok := nodes[conn.StartPoint().NodeID()]; !ok {
			return pkgerrors.ErrDanglingEndpoint.WithDetail("connector", id).WithDetail("node", conn.StartPoint().NodeID())
		}
		if _, ok := nodes[conn.EndPoint().NodeID()]; !ok {
			return pkgerrors.ErrDanglingEndpoint.WithDetail("connector", id).WithDetail("node", conn.EndPoint().NodeID())
		}
		if _, dup := connectors[id]; !dup {
			connectorOrder = append(connectorOrder, id)
		}
		connectors[id] = &conn
	}

	c.nodes = nodes
	c.connectors = connectors
	c.nodeOrder = nodeOrder
	c.connectorOrder = connectorOrder

	if doc.Viewport != nil {
		c.viewport = *doc.Viewport
	} else {
		c.viewport = valueobjects.DefaultViewport()
	}
	if doc.Settings != nil {
		c.settings = *doc.Settings
	} else {
		c.settings = valueobjects.DefaultCanvasSettings()
	}

	c.selectedNodes = make(map[string]bool)
	c.selectedConnectors = make(map[string]bool)
	for _, node := range c.nodes {
		node.Deselect()
	}
	for _, conn := range c.connectors {
		conn.Deselect()
	}

	for _, conn := range c.connectors {
		c.refreshConnectorEndpoints(conn)
	}

	c.touch()
	c.addEvent(events.NewCanvasImported(c.id.String(), len(c.nodes), len(c.connectors), c.updatedAt))
	c.pushSnapshot()

	return nil
}

func marshalPair(id string, entity interface{}) ([]json.RawMessage, error) {
	idRaw, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	entityRaw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	return []json.RawMessage{idRaw, entityRaw}, nil
}

func splitPair(pair []json.RawMessage) (string, json.RawMessage, error) {
	if len(pair) != 2 {
		return "", nil, pkgerrors.NewValidationError("entity entries must be [id, data] pairs")
	}
	var id string
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return "", nil, pkgerrors.NewValidationError("entity pair id must be a string")
	}
	if id == "" {
		return "", nil, pkgerrors.ErrElementIDRequired
	}
	return id, pair[1], nil
}
