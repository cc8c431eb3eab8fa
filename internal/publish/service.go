// Package publish builds flow graphs into publishable documents and
// records the results.
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/universo-platformo/updl-engine/internal/arjs"
	"github.com/universo-platformo/updl-engine/internal/events"
	"github.com/universo-platformo/updl-engine/internal/playcanvas"
	"github.com/universo-platformo/updl-engine/internal/template"
	"github.com/universo-platformo/updl-engine/internal/updl"
)

// Metadata describes a completed build.
type Metadata struct {
	BuildTimeMS     int64             `json:"buildTime"`
	TemplateID      string            `json:"templateId"`
	TemplateInfo    template.Info     `json:"templateInfo"`
	MarkerType      string            `json:"markerType,omitempty"`
	MarkerValue     string            `json:"markerValue,omitempty"`
	LibraryVersions map[string]string `json:"libraryVersions,omitempty"`
}

// BuildResult is the envelope returned to callers. Builder failures are
// folded into it; only input handling (not generation) surfaces errors.
type BuildResult struct {
	Success  bool      `json:"success"`
	HTML     string    `json:"html,omitempty"`
	Error    string    `json:"error,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Service resolves flow graphs and renders them through registered
// templates.
type Service struct {
	registry  *template.Registry
	processor *updl.Processor
	store     *Store
	log       *logrus.Entry
}

// NewService wires a publish service. The store may be nil for callers
// that only build (the CLI).
func NewService(registry *template.Registry, processor *updl.Processor, store *Store, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		registry:  registry,
		processor: processor,
		store:     store,
		log:       logger.WithField("component", "publish"),
	}
}

// DefaultRegistry builds the registry with the built-in templates.
func DefaultRegistry(logger *logrus.Logger) *template.Registry {
	r := template.NewRegistry()
	// Registration of built-ins cannot collide; ignore the dup error.
	_ = r.Register(template.Info{
		ID:          "quiz",
		Name:        "AR.js Quiz",
		Description: "Marker-based AR quiz rendered with A-Frame and AR.js",
		Version:     "0.3.0",
		Technology:  "arjs",
	}, func() template.Builder { return arjs.NewQuizBuilder(logger) })
	_ = r.Register(template.Info{
		ID:          "mmoomm",
		Name:        "PlayCanvas MMOOMM",
		Description: "PlayCanvas space experience with entity scripting hooks",
		Version:     "0.2.0",
		Technology:  "playcanvas",
	}, func() template.Builder { return playcanvas.NewMMOOMMBuilder(logger) })
	return r
}

// Build resolves raw flow JSON and renders it with the selected
// template. Generation problems never escape as errors; they come back
// as a failed envelope.
func (s *Service) Build(raw []byte, opts template.BuildOptions) *BuildResult {
	opts = opts.Normalize()
	start := time.Now()

	_, _ = events.Emit("info", "publish.started", "", map[string]interface{}{
		"template": opts.TemplateID,
	})

	result, err := s.processor.ProcessFlow(raw)
	if err != nil {
		return s.fail(opts, fmt.Errorf("flow resolution failed: %w", err))
	}

	builder, err := s.registry.CreateBuilder(opts.TemplateID)
	if err != nil {
		return s.fail(opts, err)
	}

	html, err := s.render(builder, result, opts)
	if err != nil {
		return s.fail(opts, err)
	}

	info, _ := s.registry.Get(opts.TemplateID)
	md := &Metadata{
		BuildTimeMS:     time.Since(start).Milliseconds(),
		TemplateID:      opts.TemplateID,
		TemplateInfo:    info,
		MarkerType:      opts.MarkerType,
		MarkerValue:     opts.MarkerValue,
		LibraryVersions: libraryVersions(info.Technology, opts.LibraryConfig),
	}

	_, _ = events.Emit("info", "publish.completed", "", map[string]interface{}{
		"template":      opts.TemplateID,
		"build_time_ms": md.BuildTimeMS,
	})

	return &BuildResult{Success: true, HTML: html, Metadata: md}
}

// render shields the service from a misbehaving builder: a panic during
// generation becomes a failed result, not a crashed request.
func (s *Service) render(builder template.Builder, result *updl.ProcessResult, opts template.BuildOptions) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("template builder panicked: %v", r)
		}
	}()
	return builder.Build(result, opts)
}

func (s *Service) fail(opts template.BuildOptions, err error) *BuildResult {
	s.log.WithError(err).WithField("template", opts.TemplateID).Error("build failed")
	_, _ = events.Emit("error", "publish.failed", err.Error(), map[string]interface{}{
		"template": opts.TemplateID,
	})
	return &BuildResult{Success: false, Error: err.Error()}
}

// Publish builds and, on success, persists a publication record served
// under the returned slug.
func (s *Service) Publish(raw []byte, opts template.BuildOptions, slug string) (*Publication, *BuildResult) {
	opts = opts.Normalize()
	result := s.Build(raw, opts)
	if !result.Success {
		return nil, result
	}
	if s.store == nil {
		return nil, result
	}

	id := uuid.NewString()
	if slug == "" {
		slug = strings.SplitN(id, "-", 2)[0]
	}
	mdJSON, _ := json.Marshal(result.Metadata)

	pub := &Publication{
		ID:          id,
		Slug:        slug,
		ProjectName: opts.ProjectName,
		TemplateID:  opts.TemplateID,
		Technology:  result.Metadata.TemplateInfo.Technology,
		HTML:        result.HTML,
		Metadata:    string(mdJSON),
	}
	if err := s.store.Save(pub); err != nil {
		s.log.WithError(err).Error("failed to persist publication")
		result.Success = false
		result.Error = err.Error()
		result.HTML = ""
		return nil, result
	}

	_, _ = events.Emit("info", "publication.created", "", map[string]interface{}{
		"publication_id": pub.ID,
		"slug":           pub.Slug,
		"template":       pub.TemplateID,
	})
	return pub, result
}

// Store exposes the underlying publication store (nil for build-only
// services).
func (s *Service) Store() *Store {
	return s.store
}

// Registry exposes the template registry for listing endpoints.
func (s *Service) Registry() *template.Registry {
	return s.registry
}

func libraryVersions(technology string, cfg map[string]template.LibraryOverride) map[string]string {
	pick := func(lib, def string) string {
		if cfg != nil {
			if ov, ok := cfg[lib]; ok && ov.Version != "" {
				return ov.Version
			}
		}
		return def
	}
	switch technology {
	case "arjs":
		return map[string]string{
			arjs.LibAFrame: pick(arjs.LibAFrame, arjs.DefaultAFrameVersion),
			arjs.LibARJS:   pick(arjs.LibARJS, arjs.DefaultARJSVersion),
		}
	case "playcanvas":
		return map[string]string{
			playcanvas.LibPlayCanvas: pick(playcanvas.LibPlayCanvas, playcanvas.DefaultEngineVersion),
		}
	}
	return nil
}
