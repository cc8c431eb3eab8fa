package updl

import (
	"encoding/json"
	"fmt"
	"os"
)

// FlowGraph is the raw node graph exported by the visual editor.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

// FlowNode is one editor node. It is read-only input; every resolved
// entity downstream is derived from it.
type FlowNode struct {
	ID   string       `json:"id"`
	Data FlowNodeData `json:"data"`
}

// FlowNodeData carries the editor-assigned identity and the free-form
// inputs map filled in by the node's property panel.
type FlowNodeData struct {
	Name     string                 `json:"name"`
	Label    string                 `json:"label"`
	Category string                 `json:"category"`
	Inputs   map[string]interface{} `json:"inputs"`
}

// FlowEdge is a directed relation between two nodes. Only direction is
// semantically typed.
type FlowEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ParseFlow parses a raw flow JSON document.
func ParseFlow(data []byte) (*FlowGraph, error) {
	var fg FlowGraph
	if err := json.Unmarshal(data, &fg); err != nil {
		return nil, fmt.Errorf("failed to parse flow JSON: %w", err)
	}
	return &fg, nil
}

// LoadFlow loads a flow graph from a JSON file.
func LoadFlow(path string) (*FlowGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}
	return ParseFlow(data)
}
