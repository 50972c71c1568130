package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"portfolio-service/middleware"
	"portfolio-service/upload"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
)

// multipartOverhead is the slack allowed on top of a kind's ceiling for the
// multipart envelope.
const multipartOverhead = 1 << 20

// Uploader validates and stores profile files.
type Uploader interface {
	MaxBytes(kind upload.Kind) int64
	Validate(kind upload.Kind, size int64, head []byte) (*mimetype.MIME, error)
	Upload(ctx context.Context, kind upload.Kind, size int64, body io.Reader) (upload.Result, error)
}

type UploadHandler struct {
	uploader Uploader
}

func NewUploadHandler(uploader Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// UploadHandler accepts one multipart "file" field for the kind in the URL.
func (h *UploadHandler) UploadHandler(w http.ResponseWriter, r *http.Request) error {
	kind, err := upload.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		return middleware.NewAppError(http.StatusNotFound, "Unknown upload type", err)
	}

	maxBytes := h.uploader.MaxBytes(kind)
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_, validationErr := h.uploader.Validate(kind, maxBytes+1, nil)
			return uploadError(validationErr)
		}
		return middleware.NewAppError(http.StatusBadRequest, "Invalid upload", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "A file is required", err)
	}
	defer file.Close()

	result, err := h.uploader.Upload(r.Context(), kind, header.Size, file)
	if err != nil {
		return uploadError(err)
	}
	return writeJSON(w, http.StatusCreated, result)
}

func uploadError(err error) error {
	var validationErr *upload.ValidationError
	if errors.As(err, &validationErr) {
		return middleware.NewAppError(http.StatusBadRequest, validationErr.Message, err)
	}
	return middleware.NewAppError(http.StatusInternalServerError, "Upload failed", err)
}
