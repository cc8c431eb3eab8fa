// Package playcanvas renders resolved UPDL spaces into PlayCanvas
// initialization scripts wrapped in a servable HTML document.
package playcanvas

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/universo-platformo/updl-engine/internal/template"
	"github.com/universo-platformo/updl-engine/internal/updl"
)

// LibPlayCanvas is the library key recognized in BuildOptions.LibraryConfig.
const LibPlayCanvas = "playcanvas"

// DefaultEngineVersion pins the engine build referenced by default.
const DefaultEngineVersion = "1.77.0"

// ValidationError reports why a resolved space cannot be built. It is a
// typed error so the publish layer can fold the problems into the build
// envelope instead of treating them as a crash.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "space validation failed: " + strings.Join(e.Problems, "; ")
}

// MMOOMMBuilder generates the MMOOMM-style PlayCanvas bootstrap script.
type MMOOMMBuilder struct {
	log *logrus.Entry
}

// NewMMOOMMBuilder creates a PlayCanvas MMOOMM builder.
func NewMMOOMMBuilder(logger *logrus.Logger) *MMOOMMBuilder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MMOOMMBuilder{log: logger.WithField("template", "mmoomm")}
}

// Build implements template.Builder. The space is validated before any
// generation; a failed validation returns *ValidationError.
func (b *MMOOMMBuilder) Build(result *updl.ProcessResult, opts template.BuildOptions) (string, error) {
	opts = opts.Normalize()

	space := spaceFromResult(result)
	if problems := validate(space); len(problems) > 0 {
		return "", &ValidationError{Problems: problems}
	}

	script := b.initScript(space, opts)
	return wrapDocument(script, opts), nil
}

// spaceFromResult picks the space to render. Multi-scene chains collapse
// to their first scene; PlayCanvas experiences are single-scene.
func spaceFromResult(result *updl.ProcessResult) *updl.Space {
	if result == nil {
		return nil
	}
	if result.Space != nil {
		return result.Space
	}
	if result.MultiScene != nil && len(result.MultiScene.Scenes) > 0 {
		return result.MultiScene.Scenes[0].SpaceData
	}
	return nil
}

func validate(space *updl.Space) []string {
	var problems []string
	if space == nil {
		return []string{"no space resolved from flow"}
	}
	if space.ID == "" {
		problems = append(problems, "space id is empty")
	}
	for _, e := range space.Entities {
		if e.ID == "" {
			problems = append(problems, "entity with empty id")
		}
	}
	return problems
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// jsString quotes a value for embedding in generated script. Angle
// brackets are escaped so authored text cannot close the script tag.
func jsString(s string) string {
	q := strconv.Quote(s)
	q = strings.ReplaceAll(q, "<", "\\u003c")
	return strings.ReplaceAll(q, ">", "\\u003e")
}

var primitiveByType = map[updl.ObjectType]string{
	updl.ObjectBox:      "box",
	updl.ObjectSphere:   "sphere",
	updl.ObjectCylinder: "cylinder",
	updl.ObjectPlane:    "plane",
	updl.ObjectCircle:   "cylinder",
	updl.ObjectCone:     "cone",
}

func (b *MMOOMMBuilder) initScript(space *updl.Space, opts template.BuildOptions) string {
	var sb strings.Builder
	sb.WriteString("var canvas = document.getElementById('application-canvas');\n")
	sb.WriteString("var app = new pc.Application(canvas, { mouse: new pc.Mouse(canvas), touch: new pc.TouchDevice(canvas), keyboard: new pc.Keyboard(window) });\n")
	sb.WriteString("app.setCanvasFillMode(pc.FILLMODE_FILL_WINDOW);\n")
	sb.WriteString("app.setCanvasResolution(pc.RESOLUTION_AUTO);\n")
	sb.WriteString("app.start();\n\n")

	bg := opts.BackgroundColor
	if bg == "" {
		bg = "#000000"
	}
	fmt.Fprintf(&sb, "var camera = new pc.Entity('camera');\n")
	fmt.Fprintf(&sb, "camera.addComponent('camera', { clearColor: new pc.Color().fromString(%s) });\n", jsString(bg))
	sb.WriteString("camera.setPosition(0, 2, 8);\n")
	sb.WriteString("app.root.addChild(camera);\n\n")

	sb.WriteString("var light = new pc.Entity('light');\n")
	sb.WriteString("light.addComponent('light', { type: 'directional', intensity: 1 });\n")
	sb.WriteString("light.setEulerAngles(45, 30, 0);\n")
	sb.WriteString("app.root.addChild(light);\n\n")

	for i, obj := range space.Objects {
		prim, ok := primitiveByType[obj.Type]
		if !ok {
			b.log.WithFields(logrus.Fields{
				"object": obj.ID,
				"type":   string(obj.Type),
			}).Warn("object type has no PlayCanvas primitive; using box")
			prim = "box"
		}
		v := fmt.Sprintf("obj%d", i)
		fmt.Fprintf(&sb, "var %s = new pc.Entity(%s);\n", v, jsString(obj.Name))
		fmt.Fprintf(&sb, "%s.addComponent('model', { type: %s });\n", v, jsString(prim))
		fmt.Fprintf(&sb, "%s.setPosition(%s, %s, %s);\n", v, num(obj.Position.X), num(obj.Position.Y), num(obj.Position.Z))
		fmt.Fprintf(&sb, "%s.setLocalScale(%s, %s, %s);\n", v, num(obj.Scale.X), num(obj.Scale.Y), num(obj.Scale.Z))
		fmt.Fprintf(&sb, "var mat%d = new pc.StandardMaterial();\n", i)
		fmt.Fprintf(&sb, "mat%d.diffuse.fromString(%s);\n", i, jsString(obj.Color))
		fmt.Fprintf(&sb, "mat%d.update();\n", i)
		fmt.Fprintf(&sb, "%s.model.material = mat%d;\n", v, i)
		fmt.Fprintf(&sb, "app.root.addChild(%s);\n\n", v)
	}

	for i, ent := range space.Entities {
		v := fmt.Sprintf("entity%d", i)
		fmt.Fprintf(&sb, "var %s = new pc.Entity(%s);\n", v, jsString(ent.Name))
		if ent.Transform != nil {
			fmt.Fprintf(&sb, "%s.setPosition(%s, %s, %s);\n", v,
				num(ent.Transform.Position.X), num(ent.Transform.Position.Y), num(ent.Transform.Position.Z))
			fmt.Fprintf(&sb, "%s.setLocalScale(%s, %s, %s);\n", v,
				num(ent.Transform.Scale.X), num(ent.Transform.Scale.Y), num(ent.Transform.Scale.Z))
		}
		fmt.Fprintf(&sb, "%s.tags.add(%s);\n", v, jsString(ent.EntityType))
		for _, comp := range ent.Components {
			if comp.ComponentType == "render" && comp.Primitive != "" {
				fmt.Fprintf(&sb, "%s.addComponent('model', { type: %s });\n", v, jsString(comp.Primitive))
			}
		}
		fmt.Fprintf(&sb, "app.root.addChild(%s);\n\n", v)
	}

	if mp := opts.Multiplayer; mp != nil && mp.ServerHost != "" {
		fmt.Fprintf(&sb, "var multiplayer = new WebSocket('ws://' + %s + ':' + %d + '/rooms/' + %s);\n",
			jsString(mp.ServerHost), mp.ServerPort, jsString(mp.Room))
		sb.WriteString("multiplayer.addEventListener('open', function () { multiplayer.send(JSON.stringify({ type: 'join' })); });\n")
	}

	return sb.String()
}

func engineURL(cfg map[string]template.LibraryOverride) string {
	source := template.SourceOfficial
	version := DefaultEngineVersion
	if cfg != nil {
		if ov, ok := cfg[LibPlayCanvas]; ok {
			if ov.Source != "" {
				source = ov.Source
			}
			if ov.Version != "" {
				version = ov.Version
			}
		}
	}
	if source == template.SourceSelfHosted {
		return fmt.Sprintf("/assets/libs/playcanvas/%s/playcanvas.min.js", version)
	}
	return fmt.Sprintf("https://code.playcanvas.com/playcanvas-%s.min.js", version)
}

func wrapDocument(script string, opts template.BuildOptions) string {
	title := opts.ProjectName
	if title == "" {
		title = "UPDL Space"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "    <script src=\"%s\"></script>\n", engineURL(opts.LibraryConfig))
	b.WriteString("    <style>\n")
	b.WriteString("        * { box-sizing: border-box; margin: 0; padding: 0; }\n")
	b.WriteString("        html, body { width: 100%; height: 100%; overflow: hidden; }\n")
	b.WriteString("        #application-canvas { width: 100%; height: 100%; }\n")
	b.WriteString("    </style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString("    <canvas id=\"application-canvas\"></canvas>\n")
	b.WriteString("    <script>\n")
	b.WriteString(script)
	b.WriteString("    </script>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
