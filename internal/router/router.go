package router

import (
	"log/slog"
	"net/http"

	"github.com/nomadshift/backend/internal/auth"
	"github.com/nomadshift/backend/internal/handlers"
	"github.com/nomadshift/backend/internal/middleware"
	"github.com/nomadshift/backend/internal/models"
)

// Handlers groups the endpoint handlers mounted under /api.
type Handlers struct {
	Auth     *auth.Handler
	Profiles *handlers.ProfileHandler
	Jobs     *handlers.JobHandler
	Reviews  *handlers.ReviewHandler
	Chat     *handlers.ChatHandler
	AI       *handlers.AIHandler
}

// New returns the /api handler wrapped in panic recovery and request logging.
func New(h Handlers, sessions middleware.SessionResolver, profiles middleware.ProfileLookup, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	session := middleware.SessionAuth(sessions, log)
	withProfile := func(next http.Handler) http.Handler {
		return session(middleware.LoadProfile(profiles, log)(next))
	}
	asRole := func(role models.Role, fn http.HandlerFunc) http.Handler {
		return withProfile(middleware.RequireRole(role, log)(fn))
	}
	authed := func(fn http.HandlerFunc) http.Handler { return session(fn) }

	mux := http.NewServeMux()
	const base = "/api"

	mux.HandleFunc("GET "+base+"/{$}", handlers.Root)
	mux.HandleFunc("GET "+base+"/categories", handlers.ListCategories)
	mux.HandleFunc("GET "+base+"/skills", handlers.ListSkills)

	mux.HandleFunc("POST "+base+"/auth/session", h.Auth.CreateSession)
	mux.Handle("GET "+base+"/auth/me", withProfile(http.HandlerFunc(h.Profiles.AuthMe)))
	mux.HandleFunc("POST "+base+"/auth/logout", h.Auth.Logout)

	mux.Handle("POST "+base+"/user/set-role", authed(h.Profiles.SetRole))
	mux.Handle("POST "+base+"/onboarding/worker", authed(h.Profiles.OnboardWorker))
	mux.Handle("POST "+base+"/onboarding/business", authed(h.Profiles.OnboardBusiness))
	mux.Handle("GET "+base+"/profile", authed(h.Profiles.Me))
	mux.HandleFunc("GET "+base+"/profile/{user_id}", h.Profiles.Get)

	mux.Handle("POST "+base+"/ai/improve-description", authed(h.AI.ImproveDescription))

	mux.Handle("POST "+base+"/jobs", asRole(models.RoleBusiness, h.Jobs.Create))
	mux.HandleFunc("GET "+base+"/jobs", h.Jobs.List)
	mux.HandleFunc("GET "+base+"/jobs/{job_id}", h.Jobs.Get)
	mux.Handle("POST "+base+"/jobs/{job_id}/apply", asRole(models.RoleWorker, h.Jobs.Apply))
	mux.Handle("GET "+base+"/jobs/{job_id}/applications", authed(h.Jobs.ListApplications))
	mux.Handle("POST "+base+"/jobs/{job_id}/accept/{application_id}", authed(h.Jobs.Accept))
	mux.Handle("POST "+base+"/jobs/{job_id}/complete", authed(h.Jobs.Complete))
	mux.Handle("POST "+base+"/jobs/{job_id}/cancel", authed(h.Jobs.Cancel))
	mux.Handle("GET "+base+"/my-jobs", withProfile(http.HandlerFunc(h.Jobs.MyJobs)))

	mux.Handle("POST "+base+"/jobs/{job_id}/review", authed(h.Reviews.Submit))
	mux.HandleFunc("GET "+base+"/reviews/{user_id}", h.Reviews.ListForUser)

	mux.Handle("GET "+base+"/chats", authed(h.Chat.ListRooms))
	mux.Handle("GET "+base+"/chats/{room_id}/messages", authed(h.Chat.ListMessages))
	mux.Handle("POST "+base+"/chats/{room_id}/messages", authed(h.Chat.Send))

	return middleware.Recoverer(log)(middleware.RequestLogger(log)(mux))
}
