// Package upload validates admin uploads and stores them in object storage.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"portfolio-service/config"
	"portfolio-service/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type Kind string

const (
	KindProfileImage Kind = "profile-image"
	KindCV           Kind = "cv"
)

var (
	ErrTooLarge    = errors.New("file too large")
	ErrType        = errors.New("file type not allowed")
	ErrUnknownKind = errors.New("unknown upload kind")
)

// sniffLen is how much of a file mimetype needs to identify it.
const sniffLen = 3072

// ValidationError is returned before any storage call when a file is
// rejected. Message is suitable for showing next to the upload field.
type ValidationError struct {
	Kind    Kind
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type rule struct {
	bucket      string
	prefix      string
	column      string
	maxBytes    int64
	allowed     func(*mimetype.MIME) bool
	typeMessage string
}

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Bucket stores objects and resolves their public URLs.
type Bucket interface {
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	PublicURL(bucket, key string) string
}

// ProfileUpdater patches the singleton profile.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, patch map[string]any) error
}

type Result struct {
	Kind        Kind   `json:"kind"`
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
}

type Service struct {
	bucket  Bucket
	profile ProfileUpdater
	rules   map[Kind]rule
	newKey  func() string
	log     *logger.Logger
}

func NewService(cfg config.StorageConfig, bucket Bucket, profile ProfileUpdater, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		bucket:  bucket,
		profile: profile,
		rules: map[Kind]rule{
			KindProfileImage: {
				bucket:   cfg.ProfileImageBucket,
				prefix:   "profile",
				column:   "profile_image",
				maxBytes: cfg.MaxImageBytes,
				allowed: func(m *mimetype.MIME) bool {
					return strings.HasPrefix(m.String(), "image/")
				},
				typeMessage: "Please upload an image file",
			},
			KindCV: {
				bucket:   cfg.CVBucket,
				prefix:   "cv",
				column:   "cv_file",
				maxBytes: cfg.MaxDocumentBytes,
				allowed: func(m *mimetype.MIME) bool {
					for _, allowed := range documentTypes {
						if m.Is(allowed) {
							return true
						}
					}
					return false
				},
				typeMessage: "Please upload a PDF or Word document",
			},
		},
		newKey: uuid.NewString,
		log:    log.With("service", "UploadService"),
	}
}

// ParseKind resolves the upload kind from its URL segment.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindProfileImage, KindCV:
		return Kind(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
	}
}

// MaxBytes is the size ceiling for the kind.
func (s *Service) MaxBytes(kind Kind) int64 {
	return s.rules[kind].maxBytes
}

// Validate checks the size first, then the sniffed content type.
func (s *Service) Validate(kind Kind, size int64, head []byte) (*mimetype.MIME, error) {
	r, ok := s.rules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if size > r.maxBytes {
		return nil, &ValidationError{
			Kind:    kind,
			Err:     ErrTooLarge,
			Message: fmt.Sprintf("File size must be less than %s", formatSize(r.maxBytes)),
		}
	}

	detected := mimetype.Detect(head)
	if !r.allowed(detected) {
		return nil, &ValidationError{Kind: kind, Err: ErrType, Message: r.typeMessage}
	}
	return detected, nil
}

// Upload validates the file, writes it to the kind's bucket under a fresh
// key and points the profile at its public URL.
func (s *Service) Upload(ctx context.Context, kind Kind, size int64, body io.Reader) (Result, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected, err := s.Validate(kind, size, head)
	if err != nil {
		return Result{}, err
	}

	r := s.rules[kind]
	key := fmt.Sprintf("%s/%s%s", r.prefix, s.newKey(), detected.Extension())
	contentType := detected.String()

	if err := s.bucket.Put(ctx, r.bucket, key, contentType, io.MultiReader(bytes.NewReader(head), body)); err != nil {
		return Result{}, fmt.Errorf("store %s: %w", kind, err)
	}

	publicURL := s.bucket.PublicURL(r.bucket, key)
	if err := s.profile.UpdateProfile(ctx, map[string]any{r.column: publicURL}); err != nil {
		return Result{}, fmt.Errorf("link %s to profile: %w", kind, err)
	}

	s.log.Info("upload stored", "kind", kind, "bucket", r.bucket, "key", key, "size", size)
	return Result{Kind: kind, URL: publicURL, Key: key, ContentType: contentType}, nil
}

func formatSize(bytes int64) string {
	if bytes%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", bytes>>20)
	}
	if bytes%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", bytes>>10)
	}
	return fmt.Sprintf("%d bytes", bytes)
}
