package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"portfolio-service/config"
	"portfolio-service/content"
	"portfolio-service/logger"
	"portfolio-service/middleware"
	"portfolio-service/models"
	"portfolio-service/store"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

func configForTests() config.Config {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return config.Config{
		Auth: config.AuthConfig{
			AdminUsername:     "admin",
			AdminPasswordHash: hash,
			AccessTokenSecret: []byte("access-secret"),
			Issuer:            "test-issuer",
			AccessTokenTTL:    time.Minute,
			RefreshTokenTTL:   time.Hour,
			AccessCookieName:  "admin_access",
			RefreshCookieName: "admin_refresh",
		},
		Cookie: config.CookieConfig{
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		},
	}
}

func executeRequest(handler middleware.AppHandler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.ErrorHandler(handler).ServeHTTP(rec, req)
	return rec
}

func withVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

// memoryTokenStore keeps refresh sessions in maps.
type memoryTokenStore struct {
	tokens   map[string]store.RefreshTokenMetadata
	sessions map[string]store.RefreshSession
	revoked  map[string]string
	saveErr  error
	getErr   error
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{
		tokens:   map[string]store.RefreshTokenMetadata{},
		sessions: map[string]store.RefreshSession{},
		revoked:  map[string]string{},
	}
}

func (s *memoryTokenStore) SaveToken(_ context.Context, tokenHash string, metadata store.RefreshTokenMetadata, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tokens[tokenHash] = metadata
	return nil
}

func (s *memoryTokenStore) GetToken(_ context.Context, tokenHash string) (store.RefreshTokenMetadata, bool, error) {
	if s.getErr != nil {
		return store.RefreshTokenMetadata{}, false, s.getErr
	}
	metadata, ok := s.tokens[tokenHash]
	return metadata, ok, nil
}

func (s *memoryTokenStore) RevokeToken(_ context.Context, tokenHash string) error {
	delete(s.tokens, tokenHash)
	return nil
}

func (s *memoryTokenStore) SaveSession(_ context.Context, sessionID string, session store.RefreshSession, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[sessionID] = session
	return nil
}

func (s *memoryTokenStore) GetSession(_ context.Context, sessionID string) (store.RefreshSession, bool, error) {
	session, ok := s.sessions[sessionID]
	return session, ok, nil
}

func (s *memoryTokenStore) RevokeSession(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

func (s *memoryTokenStore) MarkRevoked(_ context.Context, tokenHash, sessionID string, _ time.Duration) error {
	s.revoked[tokenHash] = sessionID
	return nil
}

func (s *memoryTokenStore) IsRevoked(_ context.Context, tokenHash string) (string, bool, error) {
	sessionID, ok := s.revoked[tokenHash]
	return sessionID, ok, nil
}

func (s *memoryTokenStore) Close() error {
	return nil
}

// fakeEditor records the writes the admin handlers make.
type fakeEditor struct {
	created    []models.Record
	updated    map[string]any
	updatedID  int64
	profile    map[string]any
	deleted    []int64
	refreshed  int
	count      int
	goals      []content.HiddenGoal
	err        error
	refreshErr error
}

func (f *fakeEditor) Create(_ context.Context, record models.Record) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if err := models.Validate(record); err != nil {
		return 0, err
	}
	f.created = append(f.created, record)
	return int64(len(f.created)), nil
}

func (f *fakeEditor) Update(_ context.Context, entity models.Entity, id int64, patch map[string]any) error {
	if f.err != nil {
		return f.err
	}
	if err := models.ValidatePatch(entity, patch); err != nil {
		return err
	}
	f.updated = patch
	f.updatedID = id
	return nil
}

func (f *fakeEditor) UpdateProfile(_ context.Context, patch map[string]any) error {
	if f.err != nil {
		return f.err
	}
	if err := models.ValidatePatch(models.EntityProfile, patch); err != nil {
		return err
	}
	f.profile = patch
	return nil
}

func (f *fakeEditor) Delete(_ context.Context, _ models.Entity, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEditor) Refresh(context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func (f *fakeEditor) HiddenGoals() []content.HiddenGoal {
	return f.goals
}

func (f *fakeEditor) Count(models.Entity) int {
	return f.count
}

func (f *fakeEditor) Status() content.Status {
	return content.Status{State: content.StateReady}
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}
