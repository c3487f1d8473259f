package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"greenquest/internal/config"
	"greenquest/internal/contextutils"
	"greenquest/internal/response"
	"greenquest/internal/services"

	"go.uber.org/zap"
)

// AuthController handles authentication API endpoints
type AuthController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
	authCfg  *config.AuthConfig
}

// NewAuthController creates a new auth controller
func NewAuthController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	builder *response.Builder,
	authCfg *config.AuthConfig,
) *AuthController {
	return &AuthController{
		services: sc,
		logger:   logger,
		builder:  builder,
		authCfg:  authCfg,
	}
}

// Register handles POST /api/v1/auth/register
//
//	@Summary	Register a new account
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	response.APIResponse
//	@Router		/api/v1/auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	c.attachClientInfo(r, &req.IPAddress, &req.UserAgent)

	resp, err := c.services.AuthService.Register(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.setSessionCookie(w, resp.SessionToken, resp.ExpiresAt)
	c.builder.WriteCreated(w, r, resp)
}

// Login handles POST /api/v1/auth/login
//
//	@Summary	Login with email or username
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	response.APIResponse
//	@Router		/api/v1/auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	c.attachClientInfo(r, &req.IPAddress, &req.UserAgent)

	resp, err := c.services.AuthService.Login(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.setSessionCookie(w, resp.SessionToken, resp.ExpiresAt)
	c.builder.WriteSuccess(w, r, resp)
}

// Logout handles POST /api/v1/auth/logout
//
//	@Summary	Logout the current session
//	@Tags		auth
//	@Security	SessionAuth
//	@Success	204
//	@Router		/api/v1/auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	token := c.extractToken(r)
	if token == "" {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("missing session token"))
		return
	}

	if err := c.services.AuthService.Logout(r.Context(), &services.LogoutRequest{SessionToken: token}); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.clearSessionCookie(w)
	c.builder.WriteNoContent(w, r)
}

// LogoutAllDevices handles POST /api/v1/auth/logout-all
func (c *AuthController) LogoutAllDevices(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if err := c.services.AuthService.LogoutAllDevices(r.Context(), userID); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.clearSessionCookie(w)
	c.builder.WriteNoContent(w, r)
}

// ChangePassword handles POST /api/v1/auth/change-password
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req services.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	if err := c.services.AuthService.ChangePassword(r.Context(), &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	// All sessions are invalidated, the current one included.
	c.clearSessionCookie(w)
	c.builder.WriteNoContent(w, r)
}

// Me handles GET /api/v1/auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	user, err := c.services.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// ===============================
// HELPERS
// ===============================

func (c *AuthController) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.authCfg.SessionName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		Secure:   c.authCfg.SessionSecure,
		HttpOnly: c.authCfg.SessionHttpOnly,
		SameSite: sameSiteFromString(c.authCfg.SessionSameSite),
	})
}

func (c *AuthController) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.authCfg.SessionName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.authCfg.SessionSecure,
		HttpOnly: c.authCfg.SessionHttpOnly,
	})
}

func (c *AuthController) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(c.authCfg.SessionName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}

func (c *AuthController) attachClientInfo(r *http.Request, ip, userAgent **string) {
	addr := r.RemoteAddr
	ua := r.UserAgent()
	if addr != "" {
		*ip = &addr
	}
	if ua != "" {
		*userAgent = &ua
	}
}

func sameSiteFromString(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
