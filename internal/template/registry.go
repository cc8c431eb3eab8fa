// Package template holds the pluggable registry of publish templates and
// the build contract shared by every template builder.
package template

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/universo-platformo/updl-engine/internal/updl"
)

// Registry lookup failures.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateExists   = errors.New("template already registered")
)

// LibrarySource selects where viewer libraries are loaded from.
type LibrarySource string

const (
	SourceOfficial   LibrarySource = "official"
	SourceSelfHosted LibrarySource = "selfhosted"
)

// LibraryOverride pins one viewer library to a source and version.
type LibraryOverride struct {
	Source  LibrarySource `json:"source"`
	Version string        `json:"version"`
}

// MultiplayerOptions parameterize generated multiplayer client script.
type MultiplayerOptions struct {
	ServerHost string `json:"serverHost"`
	ServerPort int    `json:"serverPort"`
	Room       string `json:"room"`
}

// BuildOptions is the configuration surface recognized by builders.
type BuildOptions struct {
	TemplateID      string                     `json:"templateId"`
	MarkerType      string                     `json:"markerType"`
	MarkerValue     string                     `json:"markerValue"`
	ARDisplayType   string                     `json:"arDisplayType"`
	ProjectName     string                     `json:"projectName"`
	LibraryConfig   map[string]LibraryOverride `json:"libraryConfig,omitempty"`
	CameraUsage     string                     `json:"cameraUsage,omitempty"`
	BackgroundColor string                     `json:"backgroundColor,omitempty"`
	DemoMode        bool                       `json:"demoMode,omitempty"`
	GameMode        string                     `json:"gameMode,omitempty"`
	Multiplayer     *MultiplayerOptions        `json:"multiplayer,omitempty"`
}

// Normalize fills unset options with their defaults.
func (o BuildOptions) Normalize() BuildOptions {
	if o.TemplateID == "" {
		o.TemplateID = "quiz"
	}
	if o.MarkerType == "" {
		o.MarkerType = "preset"
	}
	if o.MarkerValue == "" {
		o.MarkerValue = "hiro"
	}
	if o.ARDisplayType == "" {
		o.ARDisplayType = "marker"
	}
	return o
}

// Builder turns a resolved UPDL description into a complete HTML document.
type Builder interface {
	Build(result *updl.ProcessResult, opts BuildOptions) (string, error)
}

// Info describes a registered template.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Technology  string `json:"technology"`
}

type registration struct {
	info    Info
	factory func() Builder
}

// Registry maps template ids to builder factories. It is constructed
// explicitly at application start and passed to whatever needs template
// lookup; after setup it is only read, so concurrent reads are safe.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]registration)}
}

// Register adds a template. Duplicate ids are rejected.
func (r *Registry) Register(info Info, factory func() Builder) error {
	if info.ID == "" {
		return errors.New("template id is empty")
	}
	if factory == nil {
		return errors.New("template factory is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[info.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTemplateExists, info.ID)
	}
	r.templates[info.ID] = registration{info: info, factory: factory}
	return nil
}

// Has reports whether a template id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[id]
	return ok
}

// Get returns the info for a template id.
func (r *Registry) Get(id string) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.templates[id]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return reg.info, nil
}

// List returns all registered templates sorted by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.templates))
	for _, reg := range r.templates {
		out = append(out, reg.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateBuilder instantiates the builder for a template id.
func (r *Registry) CreateBuilder(id string) (Builder, error) {
	r.mu.RLock()
	reg, ok := r.templates[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return reg.factory(), nil
}
