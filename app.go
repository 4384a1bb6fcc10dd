package main

import (
	"context"
	"log/slog"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/patchboard/pkg/catalog"
	"github.com/chazu/patchboard/pkg/engine"
	"github.com/chazu/patchboard/pkg/graph"
	"github.com/chazu/patchboard/pkg/reducer"
	"github.com/chazu/patchboard/pkg/store"
)

// changeEvent is the Wails event name for committed document changes.
const changeEvent = "document:changed"

// App is the Wails backend. It exposes document operations to the
// frontend via bindings and relays committed changes as events.
type App struct {
	ctx    context.Context
	store  *store.Store
	engine *engine.Engine
}

// NodeData is the JSON-serializable node format sent to the frontend.
type NodeData struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    *float64       `json:"width,omitempty"`
	Height   *float64       `json:"height,omitempty"`
	ParentID string         `json:"parentId,omitempty"`
	Visible  bool           `json:"visible"`
	Locked   bool           `json:"locked"`
	Data     map[string]any `json:"data,omitempty"`
}

// ConnectionData is the JSON-serializable connection format.
type ConnectionData struct {
	ID       string `json:"id"`
	FromNode string `json:"fromNode"`
	FromPort string `json:"fromPort"`
	ToNode   string `json:"toNode"`
	ToPort   string `json:"toPort"`
}

// DocumentData is a full document snapshot for the frontend.
type DocumentData struct {
	Nodes       []NodeData       `json:"nodes"`
	Connections []ConnectionData `json:"connections"`
	SortedIDs   []string         `json:"sortedIds"`
}

// PortData is a JSON-serializable resolved port.
type PortData struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	DataType  string `json:"dataType"`
	Label     string `json:"label"`
	Connected bool   `json:"connected"`
}

// ChangeData is the event payload emitted after each committed change.
type ChangeData struct {
	FullResync         bool     `json:"fullResync"`
	AffectsGeometry    bool     `json:"affectsGeometry"`
	AffectsPorts       bool     `json:"affectsPorts"`
	AffectsNodeOrder   bool     `json:"affectsNodeOrder"`
	AffectsConnections bool     `json:"affectsConnections"`
	ChangedNodeIDs     []string `json:"changedNodeIds"`
	RemovedNodeIDs     []string `json:"removedNodeIds"`
}

// EvalErrorData is a JSON-serializable script error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ScriptResult is returned by RunScript.
type ScriptResult struct {
	Applied  bool            `json:"applied"`
	Errors   []EvalErrorData `json:"errors"`
	Findings []string        `json:"findings"`
}

// NewApp creates the backend over the built-in type catalog.
func NewApp() *App {
	cat := catalog.Default()
	a := &App{
		engine: engine.NewEngine(cat),
		store:  store.New(cat, store.WithLogger(slog.Default())),
	}
	a.store.SubscribeToChanges(a.emitChange)
	return a
}

// startup is called by Wails on app startup. The context is saved so
// change events can reach the frontend.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func (a *App) emitChange(sum reducer.ChangeSummary) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, changeEvent, ChangeData{
		FullResync:         sum.FullResync,
		AffectsGeometry:    sum.AffectsGeometry,
		AffectsPorts:       sum.AffectsPorts,
		AffectsNodeOrder:   sum.AffectsNodeOrder,
		AffectsConnections: sum.AffectsConnections,
		ChangedNodeIDs:     idStrings(sum.ChangedNodeIDs),
		RemovedNodeIDs:     idStrings(sum.RemovedNodeIDs),
	})
}

// Document returns a full snapshot for initial render and resyncs.
func (a *App) Document() DocumentData {
	rev := a.store.State()
	doc := DocumentData{
		Nodes:       []NodeData{},
		Connections: []ConnectionData{},
		SortedIDs:   idStrings(a.store.SortedNodeIDs()),
	}
	for _, id := range a.store.SortedNodeIDs() {
		if n := rev.Node(id); n != nil {
			doc.Nodes = append(doc.Nodes, nodeData(n))
		}
	}
	for _, c := range rev.Connections {
		doc.Connections = append(doc.Connections, ConnectionData{
			ID:       c.ID.String(),
			FromNode: c.FromNode.String(),
			FromPort: c.FromPort.String(),
			ToNode:   c.ToNode.String(),
			ToPort:   c.ToPort.String(),
		})
	}
	return doc
}

// NodePorts resolves the ports of one node, flagged with connectivity.
func (a *App) NodePorts(id string) ([]PortData, error) {
	resolved, err := a.store.NodePorts(graph.NodeID(id))
	if err != nil {
		return nil, err
	}
	connected := a.store.ConnectedPortIDsByNode()[graph.NodeID(id)]
	out := make([]PortData, 0, len(resolved))
	for _, p := range resolved {
		_, isConn := connected[p.ID]
		out = append(out, PortData{
			ID:        p.ID.String(),
			Role:      p.Role.String(),
			DataType:  p.DataType,
			Label:     p.Label,
			Connected: isConn,
		})
	}
	return out, nil
}

// AddNode creates a node of the given type at a position.
func (a *App) AddNode(typeTag string, x, y float64) {
	a.store.AddNode(typeTag, graph.Vec2{X: x, Y: y})
}

// MoveNode repositions one node.
func (a *App) MoveNode(id string, x, y float64) {
	a.store.MoveNode(graph.NodeID(id), graph.Vec2{X: x, Y: y})
}

// SetNodeTitle renames one node.
func (a *App) SetNodeTitle(id, title string) {
	a.store.UpdateNode(graph.NodeID(id), reducer.NodePatch{Title: &title})
}

// DeleteNode removes one node and its connections.
func (a *App) DeleteNode(id string) {
	a.store.DeleteNode(graph.NodeID(id))
}

// Connect wires two ports.
func (a *App) Connect(fromNode, fromPort, toNode, toPort string) {
	a.store.Connect(graph.NodeID(fromNode), graph.PortID(fromPort), graph.NodeID(toNode), graph.PortID(toPort))
}

// Disconnect removes one connection.
func (a *App) Disconnect(id string) {
	a.store.Disconnect(graph.ConnectionID(id))
}

// DuplicateNodes clones the named nodes.
func (a *App) DuplicateNodes(ids []string) {
	a.store.DuplicateNodes(nodeIDs(ids)...)
}

// GroupNodes wraps the named nodes in a new group.
func (a *App) GroupNodes(ids []string) {
	a.store.GroupNodes(nodeIDs(ids)...)
}

// UngroupNode dissolves a group.
func (a *App) UngroupNode(id string) {
	a.store.UngroupNode(graph.NodeID(id))
}

// CopyNodes snapshots the named nodes into the clipboard.
func (a *App) CopyNodes(ids []string) {
	a.store.CopyNodes(nodeIDs(ids)...)
}

// PasteNodes materializes the clipboard at an offset.
func (a *App) PasteNodes(dx, dy float64) {
	a.store.PasteNodes(graph.Vec2{X: dx, Y: dy})
}

// PruneConnections drops connections whose endpoints no longer resolve.
func (a *App) PruneConnections() {
	a.store.PruneInvalidConnections()
}

// RunScript evaluates DSL source and, when it parses cleanly, replaces
// the document with the result.
func (a *App) RunScript(source string) ScriptResult {
	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		slog.Error("script evaluation failed", "error", err)
		return ScriptResult{
			Errors:   []EvalErrorData{{Message: err.Error()}},
			Findings: []string{},
		}
	}
	out := ScriptResult{Errors: []EvalErrorData{}, Findings: []string{}}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	for _, f := range res.Findings {
		out.Findings = append(out.Findings, f.Error())
	}
	if len(res.Errors) == 0 && res.Revision != nil {
		a.store.SetDocument(res.Revision)
		out.Applied = true
	}
	return out
}

func nodeData(n *graph.Node) NodeData {
	d := NodeData{
		ID:       n.ID.String(),
		Type:     n.Type,
		Title:    n.Title,
		X:        n.Position.X,
		Y:        n.Position.Y,
		ParentID: n.ParentID.String(),
		Visible:  n.Visible,
		Locked:   n.Locked,
		Data:     n.Data,
	}
	if n.Size != nil {
		d.Width = &n.Size.W
		d.Height = &n.Size.H
	}
	return d
}

func idStrings(ids []graph.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nodeIDs(ids []string) []graph.NodeID {
	out := make([]graph.NodeID, len(ids))
	for i, id := range ids {
		out[i] = graph.NodeID(id)
	}
	return out
}
