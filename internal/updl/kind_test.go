package updl

import "testing"

func TestClassifyNodeByName(t *testing.T) {
	cases := []struct {
		name string
		want NodeKind
	}{
		{"Space", KindSpace},
		{"object", KindObject},
		{"CAMERA", KindCamera},
		{"light", KindLight},
		{"Data", KindData},
		{"entity", KindEntity},
		{"Component", KindComponent},
		{"event", KindEvent},
		{"Action", KindAction},
		{"universo", KindUniverso},
		{"  space  ", KindSpace},
	}
	for _, c := range cases {
		n := FlowNode{ID: "n1", Data: FlowNodeData{Name: c.name}}
		if got := ClassifyNode(n); got != c.want {
			t.Errorf("ClassifyNode(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestClassifyNodeFallsBackToLabel(t *testing.T) {
	n := FlowNode{ID: "n1", Data: FlowNodeData{
		Name:     "spaceNode_v2",
		Label:    "Space",
		Category: "UPDL",
	}}
	if got := ClassifyNode(n); got != KindSpace {
		t.Errorf("ClassifyNode = %q, want %q", got, KindSpace)
	}
}

func TestClassifyNodeUnknown(t *testing.T) {
	cases := []FlowNode{
		{ID: "a", Data: FlowNodeData{Name: "llmChain", Category: "Chains"}},
		{ID: "b", Data: FlowNodeData{Name: "custom", Label: "Custom", Category: "UPDL"}},
		{ID: "c"},
	}
	for _, n := range cases {
		if got := ClassifyNode(n); got != KindUnknown {
			t.Errorf("ClassifyNode(%s) = %q, want %q", n.ID, got, KindUnknown)
		}
	}
}
