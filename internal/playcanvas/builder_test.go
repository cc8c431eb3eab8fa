package playcanvas

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/universo-platformo/updl-engine/internal/template"
	"github.com/universo-platformo/updl-engine/internal/updl"
)

func testBuilder() *MMOOMMBuilder {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewMMOOMMBuilder(logger)
}

func TestBuildValidationErrors(t *testing.T) {
	b := testBuilder()

	_, err := b.Build(nil, template.BuildOptions{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Problems) != 1 || ve.Problems[0] != "no space resolved from flow" {
		t.Errorf("problems = %v", ve.Problems)
	}

	space := &updl.Space{
		Entities: []updl.EntityNode{{ID: ""}, {ID: "e2"}},
	}
	_, err = b.Build(&updl.ProcessResult{Space: space}, template.BuildOptions{})
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Problems) != 2 {
		t.Errorf("expected 2 problems (empty space id, empty entity id), got %v", ve.Problems)
	}
	if !strings.Contains(err.Error(), "space validation failed") {
		t.Errorf("error text = %q", err.Error())
	}
}

func TestBuildGeneratesBootstrapScript(t *testing.T) {
	space := &updl.Space{
		ID: "s1",
		Objects: []updl.SceneObject{
			{ID: "o1", Name: "Asteroid", Type: updl.ObjectSphere,
				Position: updl.Vec3{X: 1, Y: 2, Z: 3},
				Scale:    updl.Vec3{X: 2, Y: 2, Z: 2}, Color: "#888888"},
		},
		Entities: []updl.EntityNode{
			{ID: "e1", Name: "Ship", EntityType: "ship",
				Transform: &updl.Transform{
					Position: updl.Vec3{X: 0, Y: 0, Z: -5},
					Scale:    updl.Vec3{X: 1, Y: 1, Z: 1},
				},
				Components: []updl.ComponentNode{
					{ID: "c1", ComponentType: "render", Primitive: "cone"},
				}},
		},
	}

	b := testBuilder()
	html, err := b.Build(&updl.ProcessResult{Space: space}, template.BuildOptions{
		ProjectName:     "MMOOMM Demo",
		BackgroundColor: "#101020",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, want := range []string{
		"<title>MMOOMM Demo</title>",
		"https://code.playcanvas.com/playcanvas-1.77.0.min.js",
		"new pc.Application(canvas",
		`clearColor: new pc.Color().fromString("#101020")`,
		`var obj0 = new pc.Entity("Asteroid");`,
		"obj0.addComponent('model', { type: \"sphere\" });",
		"obj0.setPosition(1, 2, 3);",
		"mat0.diffuse.fromString(\"#888888\");",
		`var entity0 = new pc.Entity("Ship");`,
		"entity0.setPosition(0, 0, -5);",
		"entity0.tags.add(\"ship\");",
		"entity0.addComponent('model', { type: \"cone\" });",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Contains(html, "new WebSocket") {
		t.Error("multiplayer script must not appear without multiplayer options")
	}
}

func TestBuildMultiplayerSnippet(t *testing.T) {
	b := testBuilder()
	html, err := b.Build(&updl.ProcessResult{Space: &updl.Space{ID: "s1"}}, template.BuildOptions{
		Multiplayer: &template.MultiplayerOptions{
			ServerHost: "play.example.org",
			ServerPort: 7070,
			Room:       "alpha",
		},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(html, `"play.example.org"`) || !strings.Contains(html, "7070") {
		t.Error("multiplayer connection parameters missing from script")
	}
	if !strings.Contains(html, `"alpha"`) {
		t.Error("room name missing from script")
	}
}

func TestBuildCollapsesMultiSceneToFirstScene(t *testing.T) {
	result := &updl.ProcessResult{
		MultiScene: &updl.MultiScene{
			TotalScenes: 2,
			Scenes: []updl.Scene{
				{SpaceID: "s1", SpaceData: &updl.Space{ID: "s1", Objects: []updl.SceneObject{
					{ID: "o1", Name: "First", Type: updl.ObjectBox, Scale: updl.Vec3{X: 1, Y: 1, Z: 1}},
				}}},
				{SpaceID: "s2", SpaceData: &updl.Space{ID: "s2", Objects: []updl.SceneObject{
					{ID: "o2", Name: "Second", Type: updl.ObjectBox, Scale: updl.Vec3{X: 1, Y: 1, Z: 1}},
				}}},
			},
		},
	}

	b := testBuilder()
	html, err := b.Build(result, template.BuildOptions{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(html, `"First"`) {
		t.Error("first scene content missing")
	}
	if strings.Contains(html, `"Second"`) {
		t.Error("only the first scene should be rendered")
	}
}

func TestJSStringEscapesScriptBreakout(t *testing.T) {
	got := jsString(`</script><script>`)
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Errorf("jsString left raw angle brackets: %s", got)
	}
	if !strings.Contains(got, `</script>`) {
		t.Errorf("jsString = %s, want unicode-escaped brackets", got)
	}
}

func TestEngineURLOverrides(t *testing.T) {
	if got := engineURL(nil); got != "https://code.playcanvas.com/playcanvas-1.77.0.min.js" {
		t.Errorf("default engine URL = %q", got)
	}
	cfg := map[string]template.LibraryOverride{
		LibPlayCanvas: {Source: template.SourceSelfHosted, Version: "1.70.0"},
	}
	if got := engineURL(cfg); got != "/assets/libs/playcanvas/1.70.0/playcanvas.min.js" {
		t.Errorf("selfhosted engine URL = %q", got)
	}
}
