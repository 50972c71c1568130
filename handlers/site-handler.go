package handlers

import (
	"bytes"
	"net/http"

	"portfolio-service/content"
	"portfolio-service/middleware"
	"portfolio-service/views"
)

// ContentReader is the read side of the content mirror.
type ContentReader interface {
	Snapshot() content.Snapshot
	Status() content.Status
}

type contentResponse struct {
	content.Snapshot
	Loading      bool     `json:"loading"`
	Error        string   `json:"error,omitempty"`
	FailedTables []string `json:"failedTables,omitempty"`
}

type framesResponse struct {
	Titles []string      `json:"titles"`
	Frames []views.Frame `json:"frames"`
}

// SiteHandler serves the public page and its JSON feeds.
type SiteHandler struct {
	content  ContentReader
	renderer *views.Renderer
}

func NewSiteHandler(reader ContentReader, renderer *views.Renderer) *SiteHandler {
	return &SiteHandler{content: reader, renderer: renderer}
}

func (h *SiteHandler) IndexHandler(w http.ResponseWriter, r *http.Request) error {
	page := views.NewPage(h.content.Snapshot(), h.content.Status())

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Could not render page", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

func (h *SiteHandler) ContentHandler(w http.ResponseWriter, r *http.Request) error {
	status := h.content.Status()
	return writeJSON(w, http.StatusOK, contentResponse{
		Snapshot:     h.content.Snapshot(),
		Loading:      status.Loading(),
		Error:        status.Error,
		FailedTables: status.FailedTables,
	})
}

func (h *SiteHandler) HeroFramesHandler(w http.ResponseWriter, r *http.Request) error {
	titles := views.Titles(h.content.Snapshot().Profile.Title)
	return writeJSON(w, http.StatusOK, framesResponse{
		Titles: titles,
		Frames: views.TypewriterFrames(titles),
	})
}
