package api

import (
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/interviewdesk/internal/config"
	"github.com/garnizeh/interviewdesk/internal/metrics"
	"github.com/garnizeh/interviewdesk/internal/session"
	"github.com/garnizeh/interviewdesk/internal/templates"
	"github.com/garnizeh/interviewdesk/internal/workspace"
	"github.com/garnizeh/interviewdesk/pkg/repository"
)

// SessionService signs users in and resolves their bearer tokens.
type SessionService interface {
	Authenticator
	session.Provider
}

// Services are the collaborators the routes are wired to.
type Services struct {
	Sessions   SessionService
	Registry   *workspace.Registry
	Interviews repository.InterviewRepo
	Results    repository.ResultRepo
	Catalog    *templates.Catalog
	Checks     map[string]Check
}

func SetupRoutes(cfg *config.Config, version, buildTime string, svc Services) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{Checks: svc.Checks}
	authHandler := NewAuthHandler(svc.Sessions, strings.HasPrefix(cfg.PublicURL, "https://"))
	appHandler := NewAppHandler(svc.Registry, svc.Catalog)
	ingestHandler := NewIngestHandler(svc.Interviews, svc.Results)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/auth/oauth/start", authHandler.OAuthStart).Methods("GET")
	r.HandleFunc("/v1/auth/oauth/callback", authHandler.OAuthCallback).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(AuthMiddleware(svc.Sessions))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	authV1.HandleFunc("/signout-everywhere", authHandler.SignoutEverywhere).Methods("POST")

	apiV1.HandleFunc("/templates", appHandler.Templates).Methods("GET")
	apiV1.HandleFunc("/interviews/{id}/results", ingestHandler.CreateResult).Methods("POST")

	// Workspace endpoints
	apiV1.HandleFunc("/app", appHandler.Snapshot).Methods("GET")
	app := apiV1.PathPrefix("/app").Subrouter()
	app.HandleFunc("/dashboard/refresh", appHandler.Refresh).Methods("POST")
	app.HandleFunc("/dashboard/search", appHandler.Search).Methods("PUT")
	app.HandleFunc("/interviews", appHandler.Create).Methods("POST")
	app.HandleFunc("/interviews/{id}/open", appHandler.Open).Methods("POST")
	app.HandleFunc("/back", appHandler.Back).Methods("POST")
	app.HandleFunc("/notice", appHandler.DismissNotice).Methods("DELETE")

	ed := app.PathPrefix("/editor").Subrouter()
	ed.HandleFunc("/title", appHandler.SetTitle).Methods("PUT")
	ed.HandleFunc("/tasks", appHandler.AddTask).Methods("POST")
	ed.HandleFunc("/tasks/move", appHandler.MoveTask).Methods("POST")
	ed.HandleFunc("/tasks/{taskID}", appHandler.UpdateTask).Methods("PUT")
	ed.HandleFunc("/tasks/{taskID}", appHandler.DeleteTask).Methods("DELETE")
	ed.HandleFunc("/tasks/{taskID}/select", appHandler.SelectTask).Methods("POST")
	ed.HandleFunc("/criteria", appHandler.SetCriteria).Methods("PUT")
	ed.HandleFunc("/criteria", appHandler.AddCriterion).Methods("POST")
	ed.HandleFunc("/criteria/{criterionID}", appHandler.UpdateCriterion).Methods("PUT")
	ed.HandleFunc("/criteria/{criterionID}", appHandler.RemoveCriterion).Methods("DELETE")
	ed.HandleFunc("/save", appHandler.Save).Methods("POST")
	ed.HandleFunc("/publish", appHandler.Publish).Methods("POST")
	ed.HandleFunc("/close", appHandler.CloseInterview).Methods("POST")
	ed.HandleFunc("/invites", appHandler.SendInvites).Methods("POST")
	ed.HandleFunc("/invites", appHandler.CloseInvite).Methods("DELETE")

	res := app.PathPrefix("/results").Subrouter()
	res.HandleFunc("/overview", appHandler.Overview).Methods("GET")
	res.HandleFunc("/table", appHandler.Table).Methods("GET")
	res.HandleFunc("/search", appHandler.ResultsSearch).Methods("PUT")
	res.HandleFunc("/sort/{key}", appHandler.ToggleSort).Methods("POST")
	res.HandleFunc("/export.csv", appHandler.Export).Methods("GET")
	res.HandleFunc("/candidates/{cid}/open", appHandler.OpenCandidate).Methods("POST")
	res.HandleFunc("/detail", appHandler.CloseCandidate).Methods("DELETE")
	res.HandleFunc("/detail/scores", appHandler.EditScores).Methods("PUT")
	res.HandleFunc("/detail/save", appHandler.SaveScores).Methods("POST")
	res.HandleFunc("/detail/notes", appHandler.AddNote).Methods("POST")

	return r
}
