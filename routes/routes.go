package routes

import (
	"net/http"

	"github.com/VELOCITY6097/valorant-tourney/handlers"
	"github.com/VELOCITY6097/valorant-tourney/middleware"
	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes wires every HTTP surface: the intent API called by the
// platform binding, the public read API, and the live bracket websocket.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	tournamentHandler *handlers.TournamentHandler,
	bracketHandler *handlers.BracketHandler,
	teamHandler *handlers.TeamHandler,
	registrationHandler *handlers.RegistrationHandler,
	settingsHandler *handlers.SettingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	// Public read surface.
	router.Get("/tournaments", tournamentHandler.ListActiveHandler)
	router.Get("/tournaments/{tournamentID}", tournamentHandler.GetByIDHandler)
	router.Get("/teams/{teamID}/registrations", registrationHandler.ListHandler)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	// Everything below is called by the platform binding on behalf of a user
	// and carries a token with resolved capabilities.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", tournamentHandler.CreateHandler)
			r.Post("/{tournamentID}/close-registration", tournamentHandler.CloseRegistrationHandler)
			r.Post("/{tournamentID}/complete", tournamentHandler.CompleteHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)

			r.Post("/{tournamentID}/bracket", bracketHandler.InitializeHandler)
			r.Post("/{tournamentID}/bracket/refresh", bracketHandler.RefreshHandler)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.RegisterHandler)
			r.Post("/join", teamHandler.JoinHandler)
			r.Post("/{teamID}/verify", teamHandler.VerifyHandler)
			r.Post("/{teamID}/captain", teamHandler.TransferCaptainHandler)
			r.Post("/{teamID}/registrations", registrationHandler.RequestJoinHandler)
			r.Delete("/{teamID}", teamHandler.DisqualifyHandler)
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Post("/{registrationID}/approve", registrationHandler.ApproveHandler)
			r.Delete("/{registrationID}", registrationHandler.RemoveHandler)
		})

		r.Post("/matches/{matchID}/result", bracketHandler.RecordResultHandler)

		r.Route("/communities/{communityRef}", func(r chi.Router) {
			r.Get("/settings", settingsHandler.GetHandler)
			r.With(middleware.RequireCapability(models.CapabilityAdmin)).
				Put("/settings", settingsHandler.SetupHandler)
			r.With(middleware.RequireCapability(models.CapabilityAdmin)).
				Post("/maintenance", settingsHandler.MaintenanceHandler)
		})
	})
}
