package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/luigilocane-sketch/ricorsi-sinafi/app"
	"github.com/luigilocane-sketch/ricorsi-sinafi/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)
	root.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// public campaign listing and detail
	api.Get("/campaigns", PublicListCampaigns(app))
	api.Get("/campaigns/{id}", GetCampaign(app))
	api.Get("/examples/{campaignID}/{docID}", GetExampleFile(app))

	// submission intake: record first, then one upload per document
	api.With(httprate.LimitByIP(10, time.Minute)).
		Post("/submissions", CreateSubmission(app))
	api.Get("/submissions/{id}", GetSubmission(app))
	api.Post("/submissions/{id}/documents/{docID}", UploadSubmissionFile(app))

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	// invite redemption is public: the token is the credential
	api.Get("/invites/{token}", ValidateInvite(app))
	api.Post("/register", RegisterWithInvite(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Get("/check", Check(app))

		// CRUD campaigns
		r.Post("/campaigns", CreateCampaign(app))
		r.Get("/campaigns", ListCampaigns(app))
		r.Get("/campaigns/{id}", GetCampaign(app))
		r.Put("/campaigns/{id}", UpdateCampaign(app))
		r.Delete("/campaigns/{id}", DeleteCampaign(app))

		r.Post("/examples/{campaignID}/{docID}", UploadExampleFile(app))
		r.Delete("/examples/{campaignID}/{docID}", DeleteExampleFile(app))

		r.Get("/submissions", ListSubmissions(app))
		r.Get("/submissions/stats/{campaignID}", CampaignStats(app))

		r.Post("/invites", CreateInvite(app))
		r.Get("/invites", ListInvites(app))
		r.Get("/admins", ListAdmins(app))
	})

	return api
}
