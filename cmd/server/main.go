package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"

	"obozy/internal/api"
	"obozy/internal/auth"
	"obozy/internal/catalog"
	"obozy/internal/draft"
	"obozy/internal/repository"
	"obozy/internal/service"
	"obozy/internal/signing"
	"obozy/internal/wizard"
)

const draftTTL = 24 * time.Hour

func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:" + port
	}

	reservationRepo := repository.NewReservationRepository(db)
	campRepo := repository.NewCampRepository(db)
	signingRepo := repository.NewSigningRepository(db)
	jobRepo := repository.NewJobRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	stripeService := service.NewStripeService()
	reservationService := service.NewReservationService(reservationRepo, stripeService)
	campService := service.NewCampService(campRepo)
	adminAuthService := service.NewAdminAuthService(adminAuthRepo)
	jobService := service.NewJobService(jobRepo)
	signingService := signing.NewService(signingRepo, service.SendSMS)

	draftStore := draft.NewRedisStore(redisClient, draftTTL)
	catalogSource := catalog.NewHTTPSource(apiURL)
	sessionManager := wizard.NewManager(draftStore, catalogSource)

	wizardHandler := api.NewWizardHandler(sessionManager, reservationService)
	signingHandler := api.NewSigningHandler(signingService)
	catalogHandler := api.NewCatalogHandler(campService)
	adminHandler := api.NewAdminHandler(campService, reservationService)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthService)
	stripeHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), reservationService)

	r := mux.NewRouter()

	// Wizard session endpoints
	r.HandleFunc("/api/wizard/sessions", wizardHandler.CreateSession).Methods("POST")
	r.HandleFunc("/api/wizard/sessions/{id}", wizardHandler.GetSession).Methods("GET")
	r.HandleFunc("/api/wizard/sessions/{id}/addons", wizardHandler.UpdateAddons).Methods("PUT")
	r.HandleFunc("/api/wizard/sessions/{id}/diets", wizardHandler.UpdateDiets).Methods("PUT")
	r.HandleFunc("/api/wizard/sessions/{id}/protections", wizardHandler.UpdateProtections).Methods("PUT")
	r.HandleFunc("/api/wizard/sessions/{id}/promotion", wizardHandler.UpdatePromotion).Methods("PUT")
	r.HandleFunc("/api/wizard/sessions/{id}/transport", wizardHandler.UpdateTransport).Methods("PUT")
	r.HandleFunc("/api/wizard/sessions/{id}/transport/confirm", wizardHandler.ConfirmTransport).Methods("POST")
	r.HandleFunc("/api/wizard/sessions/{id}/source", wizardHandler.UpdateSource).Methods("PUT")
	r.HandleFunc("/api/wizard/sessions/{id}/validate", wizardHandler.ValidateSession).Methods("POST")
	r.HandleFunc("/api/wizard/sessions/{id}/submit", wizardHandler.SubmitSession).Methods("POST")
	r.HandleFunc("/api/reservations/{code}", wizardHandler.GetReservation).Methods("GET")

	// Document signing
	r.HandleFunc("/api/signed-documents/request-sms-code", signingHandler.RequestSMSCode).Methods("POST")
	r.HandleFunc("/api/signed-documents/verify-sms-code", signingHandler.VerifySMSCode).Methods("POST")
	r.HandleFunc("/api/signed-documents/resend-sms-code", signingHandler.ResendSMSCode).Methods("POST")
	r.HandleFunc("/api/signed-documents/reservation/{id}", signingHandler.ListForReservation).Methods("GET")

	// Public catalog
	r.HandleFunc("/api/camps", catalogHandler.ListCamps).Methods("GET")
	r.HandleFunc("/api/camps/{id}", catalogHandler.GetCamp).Methods("GET")
	r.HandleFunc("/api/camps/{id}/editions", catalogHandler.ListEditions).Methods("GET")
	r.HandleFunc("/api/camps/{id}/properties", catalogHandler.ListEditions).Methods("GET")
	r.HandleFunc("/api/camps/{id}/properties/{propId}", catalogHandler.GetProperty).Methods("GET")
	r.HandleFunc("/api/camps/{id}/properties/{propId}/diets", catalogHandler.ListDiets).Methods("GET")
	r.HandleFunc("/api/camps/{id}/properties/{propId}/transport/cities", catalogHandler.ListTransportCities).Methods("GET")
	r.HandleFunc("/api/addons/public", catalogHandler.ListAddons).Methods("GET")
	r.HandleFunc("/api/addon-description/public", catalogHandler.ListAddonDescriptions).Methods("GET")
	r.HandleFunc("/api/protections/public", catalogHandler.ListProtections).Methods("GET")
	r.HandleFunc("/api/promotions/public", catalogHandler.ListPromotions).Methods("GET")
	r.HandleFunc("/api/documents/public", catalogHandler.ListDocuments).Methods("GET")
	r.HandleFunc("/api/diets/upload-icon", catalogHandler.UploadDietIcon).Methods("POST")

	// Stripe
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")
	r.HandleFunc("/api/stripe/checkout-session", stripeHandler.GetReservationByCheckoutSessionHandler).Methods("GET")

	// Admin auth
	r.HandleFunc("/api/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/admins", adminAuthHandler.CreateAdmin).Methods("POST")
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/reservations/{id}", adminHandler.GetReservation).Methods("GET")
	admin.HandleFunc("/reservations/{id}", adminHandler.DeleteReservation).Methods("DELETE")
	admin.HandleFunc("/reservations/{id}/cancel", adminHandler.CancelReservation).Methods("POST")
	admin.HandleFunc("/camps", adminHandler.CreateCamp).Methods("POST")
	admin.HandleFunc("/camps/{id}", adminHandler.UpdateCamp).Methods("PUT")
	admin.HandleFunc("/camps/{id}/properties/{propId}", adminHandler.UpdateProperty).Methods("PUT")
	admin.HandleFunc("/camps/{id}/properties/{propId}/diets", adminHandler.CreateDiet).Methods("POST")
	admin.HandleFunc("/camps/{id}/properties/{propId}/diets/{dietId}", adminHandler.UpdateDiet).Methods("PUT")
	admin.HandleFunc("/camps/{id}/properties/{propId}/diets/{dietId}", adminHandler.DeleteDiet).Methods("DELETE")
	admin.HandleFunc("/camps/{id}/properties/{propId}/transport", adminHandler.ReplaceTransport).Methods("PUT")
	admin.HandleFunc("/camps/{id}/properties/{propId}/transport", adminHandler.DeleteTransport).Methods("DELETE")
	admin.HandleFunc("/transport/available", adminHandler.ListAvailableTransport).Methods("GET")

	// Uploaded diet icons
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	c := cron.New()
	c.AddFunc("@hourly", func() {
		if err := jobService.ExpireStaleSigningCodes(context.Background()); err != nil {
			log.Printf("cron: expiring stale signing codes: %v", err)
		}
	})
	c.AddFunc("@hourly", func() {
		if err := jobService.CancelAbandonedReservations(); err != nil {
			log.Printf("cron: canceling abandoned reservations: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{frontendURL}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
