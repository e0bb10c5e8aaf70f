package auth

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/redmonkez12/book-tracker/internal/httputil"
	"github.com/redmonkez12/book-tracker/internal/logging"
	"github.com/redmonkez12/book-tracker/internal/password"
	"github.com/redmonkez12/book-tracker/internal/ratelimit"
	"github.com/redmonkez12/book-tracker/internal/user"
)

// Handler contains HTTP handlers for signup and login
type Handler struct {
	directory   *user.Directory
	rateLimiter ratelimit.Limiter
	validator   *httputil.Validator
}

func NewHandler(directory *user.Directory, rateLimiter ratelimit.Limiter, validator *httputil.Validator) *Handler {
	return &Handler{
		directory:   directory,
		rateLimiter: rateLimiter,
		validator:   validator,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// LoginForm represents the OAuth2 password-grant form fields
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// TokenResponse represents a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup handles user registration
// @Summary      Register a new user
// @Description  Create an account. No token is returned; log in afterwards.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup credentials"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Email already registered"
// @Failure      422 {object} httputil.ErrorResponse "Validation error"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /api/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(w, r, "signup") {
		return
	}

	var req SignupRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		httputil.RespondDecodeError(w, logger, err)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.directory.Create(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, user.ErrDuplicateUser) {
			logger.Warn("signup failed: email already registered")
			httputil.RespondErrorWithCode(w, "Email already registered", httputil.CodeDuplicateUser, http.StatusBadRequest)
			return
		}
		if errors.Is(err, password.ErrPasswordTooLong) {
			httputil.RespondDecodeError(w, logger, &httputil.ValidationError{
				Fields: map[string]string{"password": "must not exceed 1024 characters"},
			})
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user created")
	httputil.RespondMessage(w, "User created successfully")
}

// Login handles user login
// @Summary      User login
// @Description  Exchange email (as username) and password for a bearer token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username formData string true "Email address"
// @Param        password formData string true "Password"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} httputil.ErrorResponse "Incorrect email or password"
// @Failure      422 {object} httputil.ErrorResponse "Validation error"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /api/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(w, r, "login") {
		return
	}

	if err := r.ParseForm(); err != nil {
		logger.Warn("invalid login form", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	form := LoginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validator.Validate(&form); err != nil {
		httputil.RespondDecodeError(w, logger, err)
		return
	}

	logger = logger.WithFields(map[string]any{"email": form.Username})

	token, err := h.directory.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, user.ErrAuthFailure) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "Incorrect email or password", httputil.CodeInvalidCredentials, http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in")
	httputil.RespondJSON(w, TokenResponse{AccessToken: token, TokenType: "bearer"}, http.StatusOK)
}

// allow applies the per-IP limit for purpose. Limiter failures let the
// request through so a Redis outage does not lock everyone out.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	ok, err := h.rateLimiter.Allow(r.Context(), ratelimit.Key(purpose, ip))
	if err != nil {
		logger.Error("failed to check rate limit", "error", err.Error())
		return true
	}
	if !ok {
		logger.Warn("rate limit exceeded", "purpose", purpose, "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return false
	}

	return true
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port"
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
