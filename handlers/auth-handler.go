package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"portfolio-service/config"
	"portfolio-service/middleware"
	"portfolio-service/store"
	"portfolio-service/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	compareHashAndPassword = bcrypt.CompareHashAndPassword
	newSessionID           = utils.NewSessionID
	generateAccessToken    = utils.GenerateAccessToken
	generateRefreshToken   = utils.GenerateRefreshToken
)

var (
	errNoTokenStore   = errors.New("token store not configured")
	errTokenReused    = errors.New("refresh token reused")
	errTokenUnknown   = errors.New("refresh token not found")
	errSessionMissing = errors.New("refresh session not found")
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AuthHandler signs the single admin in and out. Each login starts a session
// whose refresh token rotates on every refresh; presenting a rotated token
// ends the whole session.
type AuthHandler struct {
	cfg        config.Config
	tokenStore store.RefreshTokenStore
}

func NewAuthHandler(cfg config.Config, tokenStore store.RefreshTokenStore) *AuthHandler {
	return &AuthHandler{cfg: cfg, tokenStore: tokenStore}
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) error {
	creds, err := readCredentials(r)
	if err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}
	if creds.Username == "" || creds.Password == "" {
		return middleware.NewAppError(http.StatusBadRequest, "Username and password are required", nil)
	}
	if err := h.checkCredentials(creds); err != nil {
		return middleware.NewAppError(http.StatusUnauthorized, "Invalid username or password", err)
	}

	if h.tokenStore == nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Could not generate tokens", errNoTokenStore)
	}
	sessionID, err := newSessionID()
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Could not generate tokens", err)
	}
	accessToken, err := h.startTokenPair(r.Context(), w, sessionID, h.cfg.Auth.AdminUsername)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Could not generate tokens", err)
	}
	return h.respondWithSession(w, "Login successful", accessToken)
}

func (h *AuthHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) error {
	presented, err := readCookie(r, h.cfg.Auth.RefreshCookieName)
	if err != nil {
		return middleware.NewAppError(http.StatusUnauthorized, "Refresh token is required", err)
	}

	presentedHash := utils.HashRefreshToken(presented)
	metadata, err := h.validateRefreshToken(r.Context(), presentedHash)
	if err != nil {
		return middleware.NewAppError(http.StatusUnauthorized, "Refresh token revoked", err)
	}

	accessToken, err := h.rotateTokens(r.Context(), w, metadata, presentedHash)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Could not refresh token", err)
	}
	return h.respondWithSession(w, "Token refreshed", accessToken)
}

// LogoutHandler always clears the cookies; ending the stored session is best
// effort.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) error {
	if presented, err := readCookie(r, h.cfg.Auth.RefreshCookieName); err == nil && h.tokenStore != nil {
		ctx := r.Context()
		presentedHash := utils.HashRefreshToken(presented)
		if metadata, found, err := h.tokenStore.GetToken(ctx, presentedHash); err == nil && found {
			h.endSession(ctx, metadata.SessionID)
		}
		_ = h.tokenStore.RevokeToken(ctx, presentedHash)
	}

	writeCookie(w, h.cfg, h.cfg.Auth.AccessCookieName, "", -1)
	writeCookie(w, h.cfg, h.cfg.Auth.RefreshCookieName, "", -1)
	return writeJSON(w, http.StatusOK, JSONResponse{"message": "Logged out successfully"})
}

// checkCredentials compares both fields without short-circuiting so a wrong
// username costs the same as a wrong password.
func (h *AuthHandler) checkCredentials(creds credentials) error {
	usernameOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(h.cfg.Auth.AdminUsername)) == 1
	passwordErr := compareHashAndPassword(h.cfg.Auth.AdminPasswordHash, []byte(creds.Password))
	if passwordErr != nil {
		return passwordErr
	}
	if !usernameOK {
		return errors.New("unknown username")
	}
	return nil
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, message, accessToken string) error {
	return writeJSON(w, http.StatusOK, sessionResponse{
		Message:     message,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.cfg.Auth.AccessTokenTTL.Seconds()),
	})
}

// validateRefreshToken resolves a presented token to its session. A token
// that was already rotated, or that is not the session's current one, ends
// the session.
func (h *AuthHandler) validateRefreshToken(ctx context.Context, tokenHash string) (store.RefreshTokenMetadata, error) {
	if h.tokenStore == nil {
		return store.RefreshTokenMetadata{}, errNoTokenStore
	}

	if sessionID, reused, err := h.tokenStore.IsRevoked(ctx, tokenHash); err != nil {
		return store.RefreshTokenMetadata{}, err
	} else if reused {
		h.endSession(ctx, sessionID)
		return store.RefreshTokenMetadata{}, errTokenReused
	}

	metadata, found, err := h.tokenStore.GetToken(ctx, tokenHash)
	if err != nil {
		return store.RefreshTokenMetadata{}, err
	}
	if !found {
		return store.RefreshTokenMetadata{}, errTokenUnknown
	}

	session, found, err := h.tokenStore.GetSession(ctx, metadata.SessionID)
	if err != nil {
		return store.RefreshTokenMetadata{}, err
	}
	if !found {
		return store.RefreshTokenMetadata{}, errSessionMissing
	}
	if session.CurrentTokenHash != tokenHash {
		h.endSession(ctx, metadata.SessionID)
		return store.RefreshTokenMetadata{}, errTokenReused
	}
	return metadata, nil
}

func (h *AuthHandler) rotateTokens(ctx context.Context, w http.ResponseWriter, metadata store.RefreshTokenMetadata, oldHash string) (string, error) {
	if err := h.tokenStore.RevokeToken(ctx, oldHash); err != nil {
		return "", err
	}
	if err := h.tokenStore.MarkRevoked(ctx, oldHash, metadata.SessionID, h.cfg.Auth.RefreshTokenTTL); err != nil {
		return "", err
	}
	return h.startTokenPair(ctx, w, metadata.SessionID, metadata.Username)
}

// startTokenPair mints an access token and a refresh token for the session,
// makes the refresh token the session's current one and sets both cookies.
func (h *AuthHandler) startTokenPair(ctx context.Context, w http.ResponseWriter, sessionID, username string) (string, error) {
	auth := h.cfg.Auth
	accessToken, err := generateAccessToken(utils.Claims{Username: username, Scope: utils.AdminScope}, auth.AccessTokenTTL, auth.Issuer, auth.AccessTokenSecret)
	if err != nil {
		return "", err
	}
	refreshToken, err := generateRefreshToken()
	if err != nil {
		return "", err
	}

	refreshHash := utils.HashRefreshToken(refreshToken)
	issuedAt := time.Now().UTC()
	if err := h.tokenStore.SaveToken(ctx, refreshHash, store.RefreshTokenMetadata{
		SessionID: sessionID,
		Username:  username,
		IssuedAt:  issuedAt,
	}, auth.RefreshTokenTTL); err != nil {
		return "", err
	}
	if err := h.tokenStore.SaveSession(ctx, sessionID, store.RefreshSession{
		CurrentTokenHash: refreshHash,
		Username:         username,
		IssuedAt:         issuedAt,
	}, auth.RefreshTokenTTL); err != nil {
		return "", err
	}

	writeCookie(w, h.cfg, auth.AccessCookieName, accessToken, int(auth.AccessTokenTTL.Seconds()))
	writeCookie(w, h.cfg, auth.RefreshCookieName, refreshToken, int(auth.RefreshTokenTTL.Seconds()))
	return accessToken, nil
}

func (h *AuthHandler) endSession(ctx context.Context, sessionID string) {
	if h.tokenStore == nil || sessionID == "" {
		return
	}
	if session, found, err := h.tokenStore.GetSession(ctx, sessionID); err == nil && found {
		_ = h.tokenStore.RevokeToken(ctx, session.CurrentTokenHash)
	}
	_ = h.tokenStore.RevokeSession(ctx, sessionID)
}

// readCredentials accepts a JSON body or the admin panel's login form.
func readCredentials(r *http.Request) (credentials, error) {
	var creds credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return credentials{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return credentials{}, err
		}
		creds.Username = r.PostForm.Get("username")
		creds.Password = r.PostForm.Get("password")
	}
	creds.Username = strings.TrimSpace(creds.Username)
	return creds, nil
}

// writeCookie sets an HTTP-only auth cookie. A negative maxAge deletes it.
func writeCookie(w http.ResponseWriter, cfg config.Config, name, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cfg.Cookie.Path,
		Domain:   cfg.Cookie.Domain,
		HttpOnly: true,
		Secure:   cfg.Cookie.Secure,
		SameSite: cfg.Cookie.SameSite,
		MaxAge:   maxAge,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	http.SetCookie(w, cookie)
}

func readCookie(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	if cookie.Value == "" {
		return "", http.ErrNoCookie
	}
	return cookie.Value, nil
}
