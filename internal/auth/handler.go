package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/traintrack/traintrack/internal/apierr"
	"github.com/traintrack/traintrack/internal/telemetry/metrics"
	"github.com/traintrack/traintrack/internal/telemetry/tracing"
	"github.com/traintrack/traintrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session-token"

type Handler struct {
	service        *Service
	metricsManager *metrics.Manager
	secureCookies  bool
}

func NewHandler(
	service *Service,
	metricsManager *metrics.Manager,
	secureCookies bool,
) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
		secureCookies:  secureCookies,
	}
}

func (handler *Handler) SetupRoutes(
	authRouter *mux.Router,
	requireAuth func(next http.Handler) http.Handler,
) {
	authRouter.HandleFunc("/register", handler.handleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", handler.handleLogout).Methods("POST", "OPTIONS").Name("logout")
	authRouter.Handle("/me", requireAuth(http.HandlerFunc(handler.handleMe))).Methods("GET", "OPTIONS").Name("me")
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.register")
	defer span.End()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		apierr.Write(w, apierr.BadRequest("invalid request body"))
		return
	}

	details := map[string]string{}
	if req.Username == "" {
		details["username"] = "must not be empty"
	}
	if len(req.Password) < 6 {
		details["password"] = "must be at least 6 characters"
	}
	if req.Name == "" {
		details["name"] = "must not be empty"
	}
	if len(details) > 0 {
		apierr.Write(w, apierr.Validation(details))
		return
	}

	user, err := handler.service.RegisterUser(ctx, req.Username, req.Password, req.Name)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			apierr.Write(w, apierr.Conflict("Username already taken"))
			return
		}
		log.Errorf("register user [%s]: %s", req.Username, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	session, err := handler.service.CreateSession(ctx, user.ID)
	if err != nil {
		log.Errorf("register, create session for user %d: %s", user.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	handler.setSessionCookie(w, session)
	handler.metricsManager.CounterRegistrations.Inc()

	handler.writeUser(w, user, http.StatusCreated)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		apierr.Write(w, apierr.BadRequest("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		apierr.Write(w, apierr.BadRequest("username and password are required"))
		return
	}

	user, err := handler.service.AuthenticateUser(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apierr.ErrStoreUnavailable) {
			apierr.Write(w, apierr.Unavailable(err))
			return
		}
		log.Errorf("login [%s]: %s", req.Username, err)
		apierr.Write(w, apierr.Internal(err))
		return
	}
	if user == nil {
		log.Tracef("failed login attempt for [%s] from %s", req.Username, pkg.ReadUserIP(r))
		apierr.Write(w, apierr.InvalidCredentials())
		return
	}

	session, err := handler.service.CreateSession(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apierr.ErrStoreUnavailable) {
			apierr.Write(w, apierr.Unavailable(err))
			return
		}
		log.Errorf("login, create session for user %d: %s", user.ID, err)
		apierr.Write(w, apierr.Internal(err))
		return
	}

	handler.setSessionCookie(w, session)
	handler.metricsManager.CounterLogins.Inc()

	handler.writeUser(w, user, http.StatusOK)
}

// handleLogout always reports success, even with a missing or unknown
// token, so repeated logouts stay idempotent.
func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := handler.service.DeleteSession(ctx, cookie.Value); err != nil {
			log.Errorf("logout, delete session: %s", err)
		}
	}

	handler.clearSessionCookie(w)
	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.me")
	defer span.End()

	authCtx, ok := FromContext(r.Context())
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	handler.writeUser(w, authCtx.User, http.StatusOK)
}

func (handler *Handler) writeUser(w http.ResponseWriter, user *User, statusCode int) {
	userJson, err := json.Marshal(struct {
		User *User `json:"user"`
	}{User: user})
	if err != nil {
		log.Errorf("failed to marshal user response: %s", err)
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, statusCode)
}

func (handler *Handler) setSessionCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   handler.secureCookies,
	})
}

func (handler *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   handler.secureCookies,
	})
}
