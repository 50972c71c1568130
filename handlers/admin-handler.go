package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"portfolio-service/content"
	"portfolio-service/logger"
	"portfolio-service/middleware"
	"portfolio-service/models"
	"portfolio-service/repository"

	"github.com/gorilla/mux"
)

// ContentEditor is the write side of the content mirror.
type ContentEditor interface {
	Create(ctx context.Context, record models.Record) (int64, error)
	Update(ctx context.Context, entity models.Entity, id int64, patch map[string]any) error
	UpdateProfile(ctx context.Context, patch map[string]any) error
	Delete(ctx context.Context, entity models.Entity, id int64) error
	Refresh(ctx context.Context) error
	HiddenGoals() []content.HiddenGoal
	Count(entity models.Entity) int
	Status() content.Status
}

// AdminHandler backs the admin editors. Every write goes through the
// content store, which refreshes the mirror before the response is sent.
type AdminHandler struct {
	editor ContentEditor
	log    *logger.Logger
}

func NewAdminHandler(editor ContentEditor, log *logger.Logger) *AdminHandler {
	return &AdminHandler{editor: editor, log: log.With("handler", "admin")}
}

func (h *AdminHandler) CreateHandler(w http.ResponseWriter, r *http.Request) error {
	entity, err := entityFromRequest(r)
	if err != nil {
		return err
	}
	patch, err := h.readPatch(r, entity)
	if err != nil {
		return err
	}
	if _, ok := patch["sort_order"]; !ok && models.HasColumn(entity, "sort_order") {
		patch["sort_order"] = h.editor.Count(entity)
	}

	record, _ := models.NewRecord(entity)
	if err := models.Assign(record, patch); err != nil {
		return editorError(err)
	}

	id, err := h.editor.Create(r.Context(), record)
	if err != nil {
		return editorError(err)
	}
	h.log.Info("row created", "entity", entity, "id", id)
	return writeJSON(w, http.StatusCreated, JSONResponse{"id": id, "status": h.editor.Status()})
}

func (h *AdminHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) error {
	entity, err := entityFromRequest(r)
	if err != nil {
		return err
	}
	id, err := idFromRequest(r)
	if err != nil {
		return err
	}
	patch, err := h.readPatch(r, entity)
	if err != nil {
		return err
	}

	if err := h.editor.Update(r.Context(), entity, id, patch); err != nil {
		return editorError(err)
	}
	h.log.Info("row updated", "entity", entity, "id", id)
	return writeJSON(w, http.StatusOK, JSONResponse{"id": id, "status": h.editor.Status()})
}

func (h *AdminHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) error {
	patch, err := h.readPatch(r, models.EntityProfile)
	if err != nil {
		return err
	}
	if err := h.editor.UpdateProfile(r.Context(), patch); err != nil {
		return editorError(err)
	}
	h.log.Info("profile updated", "columns", len(patch))
	return writeJSON(w, http.StatusOK, JSONResponse{"id": models.ProfileID, "status": h.editor.Status()})
}

// DeleteHandler removes a row only when the request confirms it with
// ?confirm=true.
func (h *AdminHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) error {
	entity, err := entityFromRequest(r)
	if err != nil {
		return err
	}
	id, err := idFromRequest(r)
	if err != nil {
		return err
	}
	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirmed {
		return middleware.NewAppError(http.StatusConflict, "Deletion must be confirmed", nil)
	}

	if err := h.editor.Delete(r.Context(), entity, id); err != nil {
		return editorError(err)
	}
	h.log.Info("row deleted", "entity", entity, "id", id)
	return writeJSON(w, http.StatusOK, JSONResponse{"id": id, "status": h.editor.Status()})
}

func (h *AdminHandler) HiddenGoalsHandler(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, JSONResponse{"hiddenGoals": h.editor.HiddenGoals()})
}

func (h *AdminHandler) RefreshContentHandler(w http.ResponseWriter, r *http.Request) error {
	if err := h.editor.Refresh(r.Context()); err != nil {
		if content.IsLoadError(err) {
			return middleware.NewAppError(http.StatusBadGateway, "Could not load content", err)
		}
		return middleware.NewAppError(http.StatusInternalServerError, "Could not refresh content", err)
	}
	return writeJSON(w, http.StatusOK, JSONResponse{"status": h.editor.Status()})
}

func (h *AdminHandler) readPatch(r *http.Request, entity models.Entity) (map[string]any, error) {
	if err := r.ParseForm(); err != nil {
		return nil, middleware.NewAppError(http.StatusBadRequest, "Invalid form data", err)
	}
	patch, err := decodeForm(entity, r.PostForm)
	if err != nil {
		return nil, editorError(err)
	}
	return patch, nil
}

func entityFromRequest(r *http.Request) (models.Entity, error) {
	entity, err := content.ParseEntity(mux.Vars(r)["entity"])
	if err != nil {
		return "", middleware.NewAppError(http.StatusNotFound, "Unknown content type", err)
	}
	return entity, nil
}

func idFromRequest(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, middleware.NewAppError(http.StatusBadRequest, "Invalid id", err)
	}
	return id, nil
}

// editorError maps store and validation failures onto the status codes the
// editors show inline.
func editorError(err error) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return middleware.NewAppError(http.StatusBadRequest, validationErr.Message, err)
	case errors.Is(err, models.ErrEmptyPatch):
		return middleware.NewAppError(http.StatusBadRequest, "Nothing to update", err)
	case errors.Is(err, models.ErrUnknownColumn):
		return middleware.NewAppError(http.StatusBadRequest, "Unknown field", err)
	case errors.Is(err, content.ErrSingleton):
		return middleware.NewAppError(http.StatusBadRequest, "Profile can only be updated", err)
	case errors.Is(err, content.ErrUnknownEntity):
		return middleware.NewAppError(http.StatusNotFound, "Unknown content type", err)
	case errors.Is(err, repository.ErrNotFound):
		return middleware.NewAppError(http.StatusNotFound, "Not found", err)
	default:
		return middleware.NewAppError(http.StatusInternalServerError, "Could not save changes", err)
	}
}
