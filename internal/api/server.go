package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/universo-platformo/updl-engine/internal/events"
	"github.com/universo-platformo/updl-engine/internal/publish"
	"github.com/universo-platformo/updl-engine/internal/template"
)

// Server is the publish/viewer HTTP frontend.
type Server struct {
	svc             *publish.Service
	defaultTemplate string
	log             *logrus.Entry
}

// NewServer creates the HTTP frontend around a publish service.
func NewServer(svc *publish.Service, defaultTemplate string, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		svc:             svc,
		defaultTemplate: defaultTemplate,
		log:             logger.WithField("component", "api"),
	}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// PublishRequest is the body of POST /api/publish and POST /api/build.
type PublishRequest struct {
	Flow    json.RawMessage       `json:"flow"`
	Options template.BuildOptions `json:"options"`
	Slug    string                `json:"slug,omitempty"`
}

// PublishResponse extends the build envelope with the stored record.
type PublishResponse struct {
	publish.BuildResult
	PublicationID string `json:"publicationId,omitempty"`
	Slug          string `json:"slug,omitempty"`
	ViewerPath    string `json:"viewerPath,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "publish-api",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) templatesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Registry().List())
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.Snapshot())
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*PublishRequest, bool) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return nil, false
	}
	if len(req.Flow) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "flow is required"})
		return nil, false
	}
	if req.Options.TemplateID == "" {
		req.Options.TemplateID = s.defaultTemplate
	}
	return &req, true
}

func (s *Server) buildHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	result := s.svc.Build(req.Flow, req.Options)
	countBuild(result.Success)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (s *Server) publishHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	pub, result := s.svc.Publish(req.Flow, req.Options, req.Slug)
	countBuild(result.Success)
	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, PublishResponse{BuildResult: *result})
		return
	}

	resp := PublishResponse{BuildResult: *result}
	// The viewer path serves the body; keep the envelope light.
	resp.HTML = ""
	if pub != nil {
		resp.PublicationID = pub.ID
		resp.Slug = pub.Slug
		resp.ViewerPath = "/p/" + pub.Slug
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listPublicationsHandler(w http.ResponseWriter, r *http.Request) {
	pubs, err := s.svc.Store().List(0, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pubs)
}

func (s *Server) getPublicationHandler(w http.ResponseWriter, r *http.Request) {
	pub, err := s.svc.Store().GetByID(r.PathValue("id"))
	if errors.Is(err, publish.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

func (s *Server) deletePublicationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.svc.Store().Delete(id)
	if errors.Is(err, publish.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	_, _ = events.Emit("info", "publication.deleted", "", map[string]interface{}{
		"publication_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

// viewerHandler serves a published document to the public. The viewer
// path always answers with renderable HTML, so lookup failures return a
// plain error page rather than JSON.
func (s *Server) viewerHandler(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	pub, err := s.svc.Store().GetBySlug(slug)
	if err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body><p>Publication not found.</p></body></html>"))
		return
	}

	countViewer()
	_, _ = events.Emit("info", "viewer.served", "", map[string]interface{}{
		"publication_id": pub.ID,
		"slug":           pub.Slug,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(pub.HTML))
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.HandleFunc("GET /api/templates", s.templatesHandler)
	mux.HandleFunc("GET /api/events", s.eventsHandler)
	mux.HandleFunc("POST /api/build", s.buildHandler)
	mux.HandleFunc("POST /api/publish", s.publishHandler)
	mux.HandleFunc("GET /api/publications", s.listPublicationsHandler)
	mux.HandleFunc("GET /api/publications/{id}", s.getPublicationHandler)
	mux.HandleFunc("DELETE /api/publications/{id}", s.deletePublicationHandler)
	mux.HandleFunc("GET /p/{slug}", s.viewerHandler)
	mux.HandleFunc("GET /ws/events", s.wsEventsHandler)
	mux.HandleFunc("GET /metrics", s.metricsHandler)
	mux.HandleFunc("GET /{$}", s.indexHandler)
	return mux
}

// ListenAndServe starts the API server on the given port. It blocks
// until the server exits.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.WithField("addr", addr).Info("publish API listening")
	return http.ListenAndServe(addr, s.Handler())
}
