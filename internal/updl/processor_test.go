package updl

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func testProcessor() *Processor {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewProcessor(logger)
}

func updlNode(id, name string, inputs map[string]interface{}) FlowNode {
	return FlowNode{ID: id, Data: FlowNodeData{Name: name, Category: "UPDL", Inputs: inputs}}
}

func TestProcessNoSpace(t *testing.T) {
	p := testProcessor()
	_, err := p.Process([]FlowNode{updlNode("obj1", "object", nil)}, nil)
	if !errors.Is(err, ErrNoSpace) {
		t.Fatalf("expected ErrNoSpace, got %v", err)
	}
}

func TestProcessEmptySpace(t *testing.T) {
	p := testProcessor()
	result, err := p.Process([]FlowNode{updlNode("s1", "space", nil)}, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Space == nil {
		t.Fatal("expected single-space result")
	}
	if result.MultiScene != nil {
		t.Error("single space must not produce a multi-scene result")
	}
	if len(result.Space.Objects) != 0 {
		t.Errorf("empty space resolved %d objects, want 0", len(result.Space.Objects))
	}
}

func TestProcessObjectDefaults(t *testing.T) {
	p := testProcessor()
	result, err := p.Process([]FlowNode{
		updlNode("s1", "space", nil),
		updlNode("obj1", "object", nil),
	}, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Space.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(result.Space.Objects))
	}
	obj := result.Space.Objects[0]
	if obj.Type != ObjectBox {
		t.Errorf("default type = %q, want box", obj.Type)
	}
	if want := (Vec3{X: 0, Y: 0.5, Z: 0}); obj.Position != want {
		t.Errorf("default position = %+v, want %+v", obj.Position, want)
	}
	if want := (Vec3{X: 1, Y: 1, Z: 1}); obj.Scale != want {
		t.Errorf("default scale = %+v, want %+v", obj.Scale, want)
	}
	if obj.Color != DefaultObjectColor {
		t.Errorf("default color = %q, want %q", obj.Color, DefaultObjectColor)
	}
	if obj.Width != 1 || obj.Height != 1 || obj.Depth != 1 || obj.Radius != 1 {
		t.Errorf("default dimensions = %v/%v/%v/%v, want 1 each", obj.Width, obj.Height, obj.Depth, obj.Radius)
	}
}

func TestProcessDeterministic(t *testing.T) {
	nodes := []FlowNode{
		updlNode("s1", "space", map[string]interface{}{"showPoints": true}),
		updlNode("obj1", "object", map[string]interface{}{"objectType": "sphere", "color": "#00ff00"}),
		updlNode("q1", "data", map[string]interface{}{"dataType": "question", "content": "Which planet is red?"}),
		updlNode("a1", "data", map[string]interface{}{"dataType": "answer", "content": "Mars", "isCorrect": true}),
		updlNode("cam1", "camera", nil),
		updlNode("l1", "light", map[string]interface{}{"lightType": "directional"}),
	}
	edges := []FlowEdge{
		{Source: "q1", Target: "s1"},
		{Source: "a1", Target: "q1"},
		{Source: "a1", Target: "obj1"},
	}

	p := testProcessor()
	first, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	second, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input resolved to different results")
	}
}

func TestConvertDataAnswerPromotion(t *testing.T) {
	p := testProcessor()
	result, err := p.Process([]FlowNode{
		updlNode("s1", "space", nil),
		updlNode("d1", "data", map[string]interface{}{"content": "Mars"}),
		updlNode("d2", "data", map[string]interface{}{"content": "Which planet?"}),
		updlNode("obj1", "object", nil),
	}, []FlowEdge{
		{Source: "d1", Target: "obj1"},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	byID := make(map[string]DataNode)
	for _, d := range result.Space.Datas {
		byID[d.ID] = d
	}
	if got := byID["d1"]; got.DataType != DataAnswer {
		t.Errorf("d1 type = %q, want answer (has linked object)", got.DataType)
	}
	if got := byID["d1"]; len(got.Objects) != 1 || got.Objects[0] != "obj1" {
		t.Errorf("d1 objects = %v, want [obj1]", got.Objects)
	}
	if got := byID["d2"]; got.DataType != DataQuestion {
		t.Errorf("d2 type = %q, want question (no linked objects)", got.DataType)
	}
}

func TestMultiSceneChain(t *testing.T) {
	nodes := []FlowNode{
		updlNode("s1", "space", nil),
		updlNode("s2", "space", nil),
		updlNode("s3", "space", map[string]interface{}{"showPoints": true}),
		updlNode("q1", "data", map[string]interface{}{"dataType": "question", "content": "Q1"}),
		updlNode("a1", "data", map[string]interface{}{"dataType": "answer", "content": "A1", "isCorrect": true}),
		updlNode("q2", "data", map[string]interface{}{"dataType": "question", "content": "Q2"}),
	}
	edges := []FlowEdge{
		{Source: "s1", Target: "s2"},
		{Source: "s2", Target: "s3"},
		{Source: "q1", Target: "s1"},
		{Source: "a1", Target: "q1"},
		{Source: "q2", Target: "s2"},
	}

	p := testProcessor()
	result, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	ms := result.MultiScene
	if ms == nil {
		t.Fatal("expected multi-scene result")
	}
	if result.Space != nil {
		t.Error("multi-scene result must not carry a single space")
	}
	if ms.TotalScenes != 3 || len(ms.Scenes) != 3 {
		t.Fatalf("TotalScenes = %d (len %d), want 3", ms.TotalScenes, len(ms.Scenes))
	}

	for i, sc := range ms.Scenes {
		if sc.Order != i {
			t.Errorf("scene %d Order = %d", i, sc.Order)
		}
	}
	if ms.Scenes[0].SpaceID != "s1" || ms.Scenes[1].SpaceID != "s2" || ms.Scenes[2].SpaceID != "s3" {
		t.Errorf("chain order = %s,%s,%s", ms.Scenes[0].SpaceID, ms.Scenes[1].SpaceID, ms.Scenes[2].SpaceID)
	}
	if ms.Scenes[0].NextSceneID != "s2" || ms.Scenes[1].NextSceneID != "s3" {
		t.Error("NextSceneID links broken")
	}
	if ms.Scenes[0].IsLast || ms.Scenes[1].IsLast || !ms.Scenes[2].IsLast {
		t.Error("IsLast must be set on the final scene only")
	}

	// Scene 1 carries the directly wired question plus its one-hop answer.
	if got := len(ms.Scenes[0].DataNodes); got != 2 {
		t.Errorf("scene 0 data nodes = %d, want 2", got)
	}
	if got := len(ms.Scenes[1].DataNodes); got != 1 {
		t.Errorf("scene 1 data nodes = %d, want 1", got)
	}

	// Final scene shows points and has no questions: a results scene.
	if !ms.Scenes[2].IsResultsScene {
		t.Error("final scene should be the results scene")
	}
	if ms.Scenes[0].IsResultsScene || ms.Scenes[1].IsResultsScene {
		t.Error("only the final scene may be the results scene")
	}
}

func TestMultiSceneExpansionIsOneHop(t *testing.T) {
	nodes := []FlowNode{
		updlNode("s1", "space", nil),
		updlNode("s2", "space", nil),
		updlNode("q1", "data", map[string]interface{}{"dataType": "question"}),
		updlNode("a1", "data", map[string]interface{}{"dataType": "answer"}),
		updlNode("deep", "data", map[string]interface{}{"dataType": "answer"}),
	}
	edges := []FlowEdge{
		{Source: "s1", Target: "s2"},
		{Source: "q1", Target: "s1"},
		{Source: "a1", Target: "q1"},
		{Source: "deep", Target: "a1"},
	}

	p := testProcessor()
	result, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	scene := result.MultiScene.Scenes[0]
	ids := make(map[string]bool)
	for _, d := range scene.DataNodes {
		ids[d.ID] = true
	}
	if !ids["q1"] || !ids["a1"] {
		t.Errorf("scene missing direct or one-hop data nodes: %v", ids)
	}
	if ids["deep"] {
		t.Error("two-hop data node must not be pulled into the scene")
	}
}

func TestMultiSceneCycleTruncates(t *testing.T) {
	nodes := []FlowNode{
		updlNode("s1", "space", nil),
		updlNode("s2", "space", nil),
		updlNode("s3", "space", nil),
	}
	edges := []FlowEdge{
		{Source: "s1", Target: "s2"},
		{Source: "s2", Target: "s3"},
		{Source: "s3", Target: "s2"},
	}

	p := testProcessor()
	result, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	ms := result.MultiScene
	if ms == nil {
		t.Fatal("expected multi-scene result")
	}
	if ms.TotalScenes != 3 {
		t.Errorf("TotalScenes = %d, want 3 (walk truncated at revisit)", ms.TotalScenes)
	}
	if !ms.Scenes[2].IsLast {
		t.Error("truncated chain must still mark a last scene")
	}
}

func TestPureSpaceCycleFallsBackToSingleSpace(t *testing.T) {
	nodes := []FlowNode{
		updlNode("s1", "space", nil),
		updlNode("s2", "space", nil),
	}
	edges := []FlowEdge{
		{Source: "s1", Target: "s2"},
		{Source: "s2", Target: "s1"},
	}

	p := testProcessor()
	result, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.MultiScene != nil {
		t.Error("a pure cycle has no start; expected single-space fallback")
	}
	if result.Space == nil || result.Space.ID != "s1" {
		t.Errorf("fallback space = %+v, want s1", result.Space)
	}
}

func TestAttachComponentsEventsActions(t *testing.T) {
	nodes := []FlowNode{
		updlNode("s1", "space", nil),
		updlNode("e1", "entity", map[string]interface{}{"entityType": "ship"}),
		updlNode("e2", "entity", map[string]interface{}{"entityType": "station"}),
		updlNode("c1", "component", map[string]interface{}{"componentType": "render", "primitive": "sphere"}),
		updlNode("c2", "component", map[string]interface{}{"componentType": "trading"}),
		updlNode("ev1", "event", map[string]interface{}{"eventType": "onClick"}),
		updlNode("act1", "action", map[string]interface{}{"actionType": "teleport", "target": "s1"}),
	}
	edges := []FlowEdge{
		{Source: "act1", Target: "ev1"},
		{Source: "c1", Target: "e1"},
		{Source: "e2", Target: "c2"},
		{Source: "ev1", Target: "e1"},
	}

	p := testProcessor()
	result, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	sp := result.Space

	byID := make(map[string]EntityNode)
	for _, e := range sp.Entities {
		byID[e.ID] = e
	}
	if got := byID["e1"]; len(got.Components) != 1 || got.Components[0].ID != "c1" {
		t.Errorf("e1 components = %+v, want [c1]", got.Components)
	}
	if got := byID["e2"]; len(got.Components) != 1 || got.Components[0].ID != "c2" {
		t.Errorf("e2 components = %+v, want [c2] (reversed edge)", got.Components)
	}
	if got := byID["e1"]; len(got.Events) != 1 || got.Events[0].ID != "ev1" {
		t.Errorf("e1 events = %+v, want [ev1]", got.Events)
	}
	if len(sp.Events) != 1 || len(sp.Events[0].Actions) != 1 || sp.Events[0].Actions[0].ID != "act1" {
		t.Errorf("event actions = %+v, want [act1]", sp.Events)
	}
}

func TestEntityTransformAliases(t *testing.T) {
	p := testProcessor()
	result, err := p.Process([]FlowNode{
		updlNode("s1", "space", nil),
		updlNode("e1", "entity", map[string]interface{}{
			"transform": `{"pos": [1, 2, 3], "scale": 2}`,
		}),
	}, nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	tr := result.Space.Entities[0].Transform
	if tr == nil {
		t.Fatal("transform should parse from JSON string")
	}
	if want := (Vec3{X: 1, Y: 2, Z: 3}); tr.Position != want {
		t.Errorf("position = %+v, want %+v", tr.Position, want)
	}
	if want := (Vec3{X: 2, Y: 2, Z: 2}); tr.Scale != want {
		t.Errorf("uniform scale = %+v, want %+v", tr.Scale, want)
	}
}

func TestMalformedEntityTransformRecovers(t *testing.T) {
	p := testProcessor()
	result, err := p.Process([]FlowNode{
		updlNode("s1", "space", nil),
		updlNode("e1", "entity", map[string]interface{}{"transform": "{broken"}),
	}, nil)
	if err != nil {
		t.Fatalf("malformed transform must not fail the build: %v", err)
	}
	if result.Space.Entities[0].Transform != nil {
		t.Error("malformed transform should resolve to nil")
	}
}

func TestMalformedComponentPropsRecovers(t *testing.T) {
	p := testProcessor()
	result, err := p.Process([]FlowNode{
		updlNode("s1", "space", nil),
		updlNode("c1", "component", map[string]interface{}{"props": "{broken"}),
	}, nil)
	if err != nil {
		t.Fatalf("malformed props must not fail the build: %v", err)
	}
	comp := result.Space.Components[0]
	if comp.Props == nil || len(comp.Props) != 0 {
		t.Errorf("props = %v, want empty map", comp.Props)
	}
	if comp.MaxCapacity != 20 || comp.CooldownTime != 2000 {
		t.Errorf("gameplay defaults not applied: %+v", comp)
	}
}

func TestSyntheticObjectFromRenderComponent(t *testing.T) {
	nodes := []FlowNode{
		updlNode("s1", "space", nil),
		updlNode("s2", "space", nil),
		updlNode("e1", "entity", map[string]interface{}{
			"transform": map[string]interface{}{"position": []interface{}{0.0, 1.0, -2.0}},
		}),
		updlNode("c1", "component", map[string]interface{}{
			"componentType": "render",
			"primitive":     "sphere",
			"color":         "#0000ff",
		}),
	}
	edges := []FlowEdge{
		{Source: "s1", Target: "s2"},
		{Source: "s1", Target: "e1"},
		{Source: "c1", Target: "e1"},
	}

	p := testProcessor()
	result, err := p.Process(nodes, edges)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	scene := result.MultiScene.Scenes[0]
	if len(scene.ObjectNodes) != 1 {
		t.Fatalf("expected 1 synthetic object, got %d", len(scene.ObjectNodes))
	}
	obj := scene.ObjectNodes[0]
	if obj.Type != ObjectSphere {
		t.Errorf("synthetic type = %q, want sphere", obj.Type)
	}
	if obj.Color != "#0000ff" {
		t.Errorf("synthetic color = %q, want component color", obj.Color)
	}
	if want := (Vec3{X: 0, Y: 1, Z: -2}); obj.Position != want {
		t.Errorf("synthetic position = %+v, want entity transform %+v", obj.Position, want)
	}
}

func TestUnknownNodesIgnored(t *testing.T) {
	p := testProcessor()
	result, err := p.Process([]FlowNode{
		updlNode("s1", "space", nil),
		{ID: "chain1", Data: FlowNodeData{Name: "llmChain", Category: "Chains"}},
	}, []FlowEdge{{Source: "chain1", Target: "s1"}})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	sp := result.Space
	if len(sp.Objects)+len(sp.Datas)+len(sp.Entities)+len(sp.Components) != 0 {
		t.Error("non-UPDL nodes must not contribute scene content")
	}
}
