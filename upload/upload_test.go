package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"portfolio-service/config"

	"github.com/stretchr/testify/assert"
)

type fakeBucket struct {
	puts        int
	bucket      string
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeBucket) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	f.puts++
	f.bucket, f.key, f.contentType = bucket, key, contentType
	data, _ := io.ReadAll(body)
	f.body = data
	return f.err
}

func (f *fakeBucket) PublicURL(bucket, key string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + key
}

type fakeProfile struct {
	patches []map[string]any
	err     error
}

func (f *fakeProfile) UpdateProfile(ctx context.Context, patch map[string]any) error {
	f.patches = append(f.patches, patch)
	return f.err
}

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfHeader  = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")
)

func storageConfig() config.StorageConfig {
	return config.StorageConfig{
		ProfileImageBucket: "profile-images",
		CVBucket:           "cv-files",
		MaxImageBytes:      5 << 20,
		MaxDocumentBytes:   10 << 20,
	}
}

func newTestService() (*Service, *fakeBucket, *fakeProfile) {
	bucket := &fakeBucket{}
	profile := &fakeProfile{}
	service := NewService(storageConfig(), bucket, profile, nil)
	service.newKey = func() string { return "fixed-key" }
	return service, bucket, profile
}

func TestSixMegabyteJPEGIsRejectedBeforeStorage(t *testing.T) {
	service, bucket, profile := newTestService()

	_, err := service.Upload(context.Background(), KindProfileImage, 6<<20, bytes.NewReader(jpegHeader))

	assert.ErrorIs(t, err, ErrTooLarge)
	assert.EqualError(t, err, "File size must be less than 5MB")
	assert.Equal(t, 0, bucket.puts)
	assert.Empty(t, profile.patches)
}

func TestNonImageIsRejectedAsProfileImage(t *testing.T) {
	service, bucket, _ := newTestService()

	_, err := service.Upload(context.Background(), KindProfileImage, int64(len(pdfHeader)), bytes.NewReader(pdfHeader))

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.ErrorIs(t, err, ErrType)
	assert.Equal(t, "Please upload an image file", validationErr.Message)
	assert.Equal(t, 0, bucket.puts)
}

func TestImageIsRejectedAsCV(t *testing.T) {
	service, bucket, _ := newTestService()

	_, err := service.Upload(context.Background(), KindCV, int64(len(pngHeader)), bytes.NewReader(pngHeader))

	assert.ErrorIs(t, err, ErrType)
	assert.EqualError(t, err, "Please upload a PDF or Word document")
	assert.Equal(t, 0, bucket.puts)
}

func TestCVSizeCeiling(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Validate(KindCV, 10<<20, pdfHeader)
	assert.NoError(t, err)

	_, err = service.Validate(KindCV, 10<<20+1, pdfHeader)
	assert.EqualError(t, err, "File size must be less than 10MB")
}

func TestUploadProfileImage(t *testing.T) {
	service, bucket, profile := newTestService()
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x01}, 5000)...)

	result, err := service.Upload(context.Background(), KindProfileImage, int64(len(body)), bytes.NewReader(body))

	assert.NoError(t, err)
	assert.Equal(t, "profile-images", bucket.bucket)
	assert.Equal(t, "profile/fixed-key.png", bucket.key)
	assert.Equal(t, "image/png", bucket.contentType)
	assert.Equal(t, body, bucket.body)
	assert.Equal(t, "https://storage.googleapis.com/profile-images/profile/fixed-key.png", result.URL)
	assert.Equal(t, []map[string]any{{"profile_image": result.URL}}, profile.patches)
}

func TestUploadCV(t *testing.T) {
	service, bucket, profile := newTestService()

	result, err := service.Upload(context.Background(), KindCV, int64(len(pdfHeader)), bytes.NewReader(pdfHeader))

	assert.NoError(t, err)
	assert.Equal(t, "cv-files", bucket.bucket)
	assert.Equal(t, "cv/fixed-key.pdf", result.Key)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, result.URL, profile.patches[0]["cv_file"])
}

func TestUploadStorageAndProfileErrors(t *testing.T) {
	service, bucket, profile := newTestService()
	bucket.err = errors.New("bucket not found")

	_, err := service.Upload(context.Background(), KindCV, int64(len(pdfHeader)), bytes.NewReader(pdfHeader))
	assert.ErrorContains(t, err, "bucket not found")
	assert.Empty(t, profile.patches)

	bucket.err = nil
	profile.err = errors.New("db down")
	_, err = service.Upload(context.Background(), KindCV, int64(len(pdfHeader)), bytes.NewReader(pdfHeader))
	assert.ErrorContains(t, err, "db down")
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("cv")
	assert.NoError(t, err)
	assert.Equal(t, KindCV, kind)

	_, err = ParseKind("avatar")
	assert.ErrorIs(t, err, ErrUnknownKind)

	service, _, _ := newTestService()
	_, err = service.Validate(Kind("avatar"), 1, pngHeader)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, int64(5<<20), service.MaxBytes(KindProfileImage))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "5MB", formatSize(5<<20))
	assert.Equal(t, "512KB", formatSize(512<<10))
	assert.Equal(t, "1000 bytes", formatSize(1000))
}

func TestGCSPublicURL(t *testing.T) {
	bucket := &GCSBucket{publicBaseURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/cv-files/cv/a.pdf", bucket.PublicURL("cv-files", "/cv/a.pdf"))

	bucket = &GCSBucket{}
	assert.Equal(t, "https://storage.googleapis.com/cv-files/cv/a.pdf", bucket.PublicURL("cv-files", "cv/a.pdf"))

	bucket = &GCSBucket{emulatorHost: "http://localhost:4443", publicBaseURL: defaultPublicBaseURL}
	assert.Equal(t, "http://localhost:4443/storage/v1/b/cv-files/o/cv%2Fa.pdf?alt=media", bucket.PublicURL("cv-files", "cv/a.pdf"))
}

func TestNewGCSBucketWithEmulator(t *testing.T) {
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	cfg := storageConfig()
	cfg.EmulatorHost = "http://localhost:4443/"
	cfg.PublicBaseURL = "https://storage.googleapis.com"

	bucket, err := NewGCSBucket(context.Background(), cfg)
	assert.NoError(t, err)
	defer bucket.Close()
	assert.Equal(t, "http://localhost:4443", bucket.emulatorHost)
}
