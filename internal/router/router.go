// Package router wires the HTTP surface of the service: route registration,
// the middleware stack, and thin handlers that translate service results into
// status codes. No business rule lives here.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/valerienguyen169/Shrink-Ray/internal/db/postgresdb"
	"github.com/valerienguyen169/Shrink-Ray/internal/link"
	"github.com/valerienguyen169/Shrink-Ray/internal/logger"
	"github.com/valerienguyen169/Shrink-Ray/internal/models"
	"github.com/valerienguyen169/Shrink-Ray/internal/policy"
	"github.com/valerienguyen169/Shrink-Ray/internal/service"
	"github.com/valerienguyen169/Shrink-Ray/internal/session"
	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

const loginPath = "/login"

type shortener interface {
	RegisterUser(ctx context.Context, username, password string) (*user.User, error)
	Login(ctx context.Context, username, password string) (*user.User, error)
	ShortenURL(ctx context.Context, caller *session.State, originalURL string) (*link.Link, error)
	ResolveLink(ctx context.Context, linkID string) (*link.Link, error)
	ListUserLinks(ctx context.Context, caller *session.State, targetUserID string) (interface{}, error)
	DeleteLink(ctx context.Context, caller *session.State, targetUserID, targetLinkID string) error
	RenameUser(ctx context.Context, caller *session.State, targetUserID, newUsername string) error
	ListUsers(ctx context.Context, caller *session.State) ([]*user.User, error)
	Ping(ctx context.Context) error
}

// Router holds the handler dependencies.
type Router struct {
	service  shortener
	sessions *session.Manager
	validate *validator.Validate
}

// New registers every route of the service on a chi mux.
func New(theService shortener, sessions *session.Manager) chi.Router {
	theRouter := &Router{
		service:  theService,
		sessions: sessions,
		validate: validator.New(),
	}

	mux := chi.NewRouter()
	mux.Use(chimiddleware.RealIP)
	mux.Use(logger.WithLoggingHTTPMiddleware)
	mux.Use(chimiddleware.Compress(5))
	mux.Use(sessions.WithSession)

	mux.Post(`/api/users`, theRouter.postAPIUsers)
	mux.Post(`/api/login`, theRouter.postAPILogin)
	mux.Post(`/api/logout`, theRouter.postAPILogout)
	mux.Get(`/api/users`, theRouter.getAPIUsers)
	mux.Patch(`/api/users/{targetUserID}`, theRouter.patchAPIUser)
	mux.Get(`/api/users/{targetUserID}/links`, theRouter.getUserLinks)
	mux.Post(`/api/links`, theRouter.postAPILinks)
	mux.Delete(`/api/users/{targetUserID}/links/{targetLinkID}`, theRouter.deleteUserLink)
	mux.Get(loginPath, theRouter.getLoginPage)
	mux.Get(`/ping`, theRouter.getPing)
	mux.Get(`/{targetLinkID}`, theRouter.getResolveLink)

	return mux
}

func (rt *Router) postAPIUsers(response http.ResponseWriter, request *http.Request) {
	var body models.AuthRequest
	if !rt.decodeAndValidate(response, request, &body) {
		return
	}

	_, err := rt.service.RegisterUser(request.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			response.WriteHeader(http.StatusConflict)
			return
		}
		rt.writeStorageFailure(response, err)
		return
	}

	response.WriteHeader(http.StatusCreated)
}

func (rt *Router) postAPILogin(response http.ResponseWriter, request *http.Request) {
	var body models.AuthRequest
	if !rt.decodeAndValidate(response, request, &body) {
		return
	}

	usr, err := rt.service.Login(request.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrLoginFailed) {
			// Unknown username and wrong password are reported identically.
			response.WriteHeader(http.StatusNotFound)
			return
		}
		rt.writeStorageFailure(response, err)
		return
	}

	err = rt.sessions.Establish(response, request, &session.State{
		UserID:   usr.ID,
		Username: usr.Username,
		IsPro:    usr.IsPro,
		IsAdmin:  usr.IsAdmin,
		LoggedIn: true,
	})
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.sessions.Establish()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (rt *Router) postAPILogout(response http.ResponseWriter, request *http.Request) {
	if err := rt.sessions.Clear(response, request); err != nil {
		logger.Log.Debugln("Error calling the `rt.sessions.Clear()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (rt *Router) getAPIUsers(response http.ResponseWriter, request *http.Request) {
	users, err := rt.service.ListUsers(request.Context(), session.FromContext(request.Context()))
	if err != nil {
		rt.writePolicyError(response, request, err)
		return
	}

	rt.writeJSON(response, http.StatusOK, users)
}

func (rt *Router) patchAPIUser(response http.ResponseWriter, request *http.Request) {
	var body models.RenameRequest
	if !rt.decodeAndValidate(response, request, &body) {
		return
	}

	err := rt.service.RenameUser(
		request.Context(),
		session.FromContext(request.Context()),
		chi.URLParam(request, "targetUserID"),
		body.Username,
	)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			response.WriteHeader(http.StatusNotFound)
		case errors.Is(err, models.ErrUsernameTaken):
			response.WriteHeader(http.StatusConflict)
		default:
			rt.writePolicyError(response, request, err)
		}
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (rt *Router) getUserLinks(response http.ResponseWriter, request *http.Request) {
	links, err := rt.service.ListUserLinks(
		request.Context(),
		session.FromContext(request.Context()),
		chi.URLParam(request, "targetUserID"),
	)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			response.WriteHeader(http.StatusNotFound)
			return
		}
		rt.writeStorageFailure(response, err)
		return
	}

	rt.writeJSON(response, http.StatusOK, links)
}

func (rt *Router) postAPILinks(response http.ResponseWriter, request *http.Request) {
	var body models.ShortenRequest
	if !rt.decodeAndValidate(response, request, &body) {
		return
	}

	lnk, err := rt.service.ShortenURL(
		request.Context(),
		session.FromContext(request.Context()),
		body.OriginalURL,
	)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			response.WriteHeader(http.StatusNotFound)
		case errors.Is(err, models.ErrLinkExists):
			response.WriteHeader(http.StatusConflict)
		default:
			rt.writePolicyError(response, request, err)
		}
		return
	}

	rt.writeJSON(response, http.StatusCreated, lnk)
}

func (rt *Router) deleteUserLink(response http.ResponseWriter, request *http.Request) {
	err := rt.service.DeleteLink(
		request.Context(),
		session.FromContext(request.Context()),
		chi.URLParam(request, "targetUserID"),
		chi.URLParam(request, "targetLinkID"),
	)
	if err != nil {
		if errors.Is(err, models.ErrLinkNotFound) {
			response.WriteHeader(http.StatusNotFound)
			return
		}
		rt.writePolicyError(response, request, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (rt *Router) getResolveLink(response http.ResponseWriter, request *http.Request) {
	lnk, err := rt.service.ResolveLink(request.Context(), chi.URLParam(request, "targetLinkID"))
	if err != nil {
		if errors.Is(err, models.ErrLinkNotFound) {
			response.WriteHeader(http.StatusNotFound)
			return
		}
		rt.writeStorageFailure(response, err)
		return
	}

	http.Redirect(response, request, lnk.OriginalURL, http.StatusMovedPermanently)
}

func (rt *Router) getLoginPage(response http.ResponseWriter, request *http.Request) {
	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	response.WriteHeader(http.StatusOK)
	_, _ = response.Write([]byte(`<!DOCTYPE html><html><body><h1>Shrink-Ray</h1><p>Log in via POST /api/login.</p></body></html>`))
}

func (rt *Router) getPing(response http.ResponseWriter, request *http.Request) {
	if err := rt.service.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `rt.service.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// decodeAndValidate parses the JSON request body into target and checks its
// validate tags. It writes the 400 response itself and reports success.
func (rt *Router) decodeAndValidate(
	response http.ResponseWriter,
	request *http.Request,
	target interface{},
) bool {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		http.Error(response, "malformed JSON body", http.StatusBadRequest)
		return false
	}

	if err := rt.validate.Struct(target); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

// writePolicyError maps the access-policy denials: unauthenticated callers
// are redirected to the login entry point, everything else is forbidden.
// Unrecognized errors fall through to the storage-failure path.
func (rt *Router) writePolicyError(
	response http.ResponseWriter,
	request *http.Request,
	err error,
) {
	switch {
	case errors.Is(err, policy.ErrNotAuthenticated):
		http.Redirect(response, request, loginPath, http.StatusFound)
	case errors.Is(err, policy.ErrQuotaExceeded), errors.Is(err, policy.ErrForbidden):
		response.WriteHeader(http.StatusForbidden)
	default:
		rt.writeStorageFailure(response, err)
	}
}

// writeStorageFailure logs the raw error server-side and answers with the
// parsed, structured payload. The raw error never reaches the client.
func (rt *Router) writeStorageFailure(response http.ResponseWriter, err error) {
	logger.Log.Errorln("storage failure: ", zap.Error(err))
	rt.writeJSON(response, http.StatusInternalServerError, postgresdb.ParseDBError(err))
}

func (rt *Router) writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}
