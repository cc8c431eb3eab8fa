package arjs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/universo-platformo/updl-engine/internal/template"
	"github.com/universo-platformo/updl-engine/internal/updl"
)

// QuizBuilder renders resolved UPDL descriptions into AR.js/A-Frame
// documents. Single spaces become one marker scene; multi-scene chains
// become a paged quiz experience.
type QuizBuilder struct {
	log *logrus.Entry
}

// NewQuizBuilder creates an AR.js quiz builder.
func NewQuizBuilder(logger *logrus.Logger) *QuizBuilder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &QuizBuilder{log: logger.WithField("template", "quiz")}
}

// Build implements template.Builder.
func (b *QuizBuilder) Build(result *updl.ProcessResult, opts template.BuildOptions) (string, error) {
	if result == nil {
		return "", errors.New("nil process result")
	}
	opts = opts.Normalize()

	var scene string
	switch {
	case result.MultiScene != nil:
		scene = b.buildMultiScene(result.MultiScene, opts)
	case result.Space != nil:
		scene = b.buildSingleScene(result.Space, opts)
	default:
		return "", errors.New("process result has neither space nor multi-scene")
	}
	return WrapDocument(scene, opts), nil
}

func (b *QuizBuilder) sceneOpen(opts template.BuildOptions) string {
	if opts.ARDisplayType == "wallpaper" {
		// Wallpaper mode tracks nothing; content floats in front of the
		// camera feed.
		return `<a-scene embedded vr-mode-ui="enabled: false" arjs="sourceType: webcam; trackingMethod: best;">`
	}
	return `<a-scene embedded vr-mode-ui="enabled: false" arjs="sourceType: webcam; detectionMode: mono_and_matrix; matrixCodeType: 3x3;">`
}

func (b *QuizBuilder) objectTags(objects []updl.SceneObject, indent string) string {
	var sb strings.Builder
	for _, obj := range objects {
		tag, known := objectTag(obj)
		if !known {
			b.log.WithFields(logrus.Fields{
				"object": obj.ID,
				"type":   string(obj.Type),
			}).Warn("unknown object type; rendering as box")
		}
		sb.WriteString(indent)
		sb.WriteString(tag)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *QuizBuilder) buildSingleScene(space *updl.Space, opts template.BuildOptions) string {
	objects := space.Objects
	if len(objects) == 0 {
		b.log.WithField("space", space.ID).Info("space has no objects; emitting default box")
		objects = []updl.SceneObject{defaultObject()}
	}

	var sb strings.Builder
	sb.WriteString(b.sceneOpen(opts))
	sb.WriteString("\n")

	if opts.ARDisplayType == "wallpaper" {
		sb.WriteString(b.objectTags(objects, "    "))
	} else {
		open, known := markerOpen(opts.MarkerType, opts.MarkerValue)
		if !known {
			b.log.WithField("markerType", opts.MarkerType).Warn("unknown marker type; using preset hiro")
		}
		sb.WriteString("    " + open + "\n")
		sb.WriteString(b.objectTags(objects, "        "))
		sb.WriteString("    </a-marker>\n")
	}

	for _, l := range space.Lights {
		sb.WriteString("    " + lightTag(l) + "\n")
	}
	sb.WriteString("    " + cameraTag(space.Cameras) + "\n")
	sb.WriteString("</a-scene>")
	return sb.String()
}

func (b *QuizBuilder) buildMultiScene(ms *updl.MultiScene, opts template.BuildOptions) string {
	var sb strings.Builder
	sb.WriteString(b.sceneOpen(opts))
	sb.WriteString("\n")

	open, known := markerOpen(opts.MarkerType, opts.MarkerValue)
	if !known {
		b.log.WithField("markerType", opts.MarkerType).Warn("unknown marker type; using preset hiro")
	}
	if opts.ARDisplayType != "wallpaper" {
		sb.WriteString("    " + open + "\n")
	}

	anyObjects := false
	for _, scene := range ms.Scenes {
		if len(scene.ObjectNodes) > 0 {
			anyObjects = true
			break
		}
	}

	for _, scene := range ms.Scenes {
		visible := "false"
		if scene.Order == 0 {
			visible = "true"
		}
		fmt.Fprintf(&sb, `        <a-entity id="quiz-scene-%d" visible="%s">`+"\n", scene.Order, visible)
		objects := scene.ObjectNodes
		if len(objects) == 0 && scene.Order == 0 && !anyObjects {
			objects = []updl.SceneObject{defaultObject()}
		}
		sb.WriteString(b.objectTags(objects, "            "))
		sb.WriteString("        </a-entity>\n")
	}

	if opts.ARDisplayType != "wallpaper" {
		sb.WriteString("    </a-marker>\n")
	}
	sb.WriteString("    " + cameraTag(nil) + "\n")
	sb.WriteString("</a-scene>\n")

	sb.WriteString(quizOverlay(ms))
	return sb.String()
}
