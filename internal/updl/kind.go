package updl

import "strings"

// NodeKind is the closed set of UPDL node roles.
type NodeKind string

const (
	KindSpace     NodeKind = "space"
	KindObject    NodeKind = "object"
	KindCamera    NodeKind = "camera"
	KindLight     NodeKind = "light"
	KindData      NodeKind = "data"
	KindEntity    NodeKind = "entity"
	KindComponent NodeKind = "component"
	KindEvent     NodeKind = "event"
	KindAction    NodeKind = "action"
	KindUniverso  NodeKind = "universo"
	KindUnknown   NodeKind = "unknown"
)

var kindByName = map[string]NodeKind{
	"space":     KindSpace,
	"object":    KindObject,
	"camera":    KindCamera,
	"light":     KindLight,
	"data":      KindData,
	"entity":    KindEntity,
	"component": KindComponent,
	"event":     KindEvent,
	"action":    KindAction,
	"universo":  KindUniverso,
}

// ClassifyNode determines the UPDL role of a flow node. A node is a UPDL
// node when its category is "UPDL" or its name (case-insensitively) is one
// of the recognized kind names. Anything else is KindUnknown.
func ClassifyNode(n FlowNode) NodeKind {
	name := strings.ToLower(strings.TrimSpace(n.Data.Name))
	if kind, ok := kindByName[name]; ok {
		return kind
	}
	if n.Data.Category == "UPDL" {
		// Category marks the node family, but the role still comes from
		// the name; an unrecognized name stays unknown.
		if kind, ok := kindByName[strings.ToLower(strings.TrimSpace(n.Data.Label))]; ok {
			return kind
		}
	}
	return KindUnknown
}
