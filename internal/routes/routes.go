package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/cache"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/integrations/oauth"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	ucReservation "github.com/BruksfildServices01/barber-booking/internal/usecase/reservation"
)

// Deps is everything the HTTP layer needs from the outside world.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *slog.Logger

	Emitter       notify.Emitter
	Notifications *notify.Store

	States  cache.StateStore
	Limiter cache.LoginLimiter

	Captcha  handlers.CaptchaVerifier
	Invoicer ucReservation.Invoicer
	// nil when media storage is not configured
	Photos handlers.PhotoUploader
	OAuth  oauth.Registry
}

// NewRouter builds the engine with the global middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		metrics.Middleware(),
		middleware.CORSMiddleware(d.Config.Origins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	reservationRepo := infraRepo.NewReservationGormRepository(d.DB)

	// ======================================================
	// USE CASES - RESERVATIONS
	// ======================================================
	createUC := ucReservation.NewCreateReservation(reservationRepo, d.Emitter)
	editUC := ucReservation.NewEditReservation(reservationRepo, d.Emitter)
	statusUC := ucReservation.NewChangeReservationStatus(reservationRepo, d.Emitter)
	cancelUC := ucReservation.NewCancelReservation(reservationRepo, d.Emitter)
	deleteUC := ucReservation.NewDeleteReservation(reservationRepo, d.Emitter)
	invoiceUC := ucReservation.NewIssueInvoice(reservationRepo, d.Invoicer)
	queries := ucReservation.NewQueries(reservationRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, cfg, d.Captcha, d.Limiter)
	oauthHandler := handlers.NewOAuthHandler(d.DB, cfg, d.OAuth, d.States)
	adminAuthHandler := handlers.NewAdminAuthHandler(d.DB, cfg, d.Limiter)

	reservationHandler := handlers.NewReservationHandler(createUC, editUC, cancelUC, queries)
	catalogHandler := handlers.NewCatalogHandler(d.DB, queries)

	adminReservationHandler := handlers.NewAdminReservationHandler(handlers.AdminReservationDeps{
		Create:  createUC,
		Edit:    editUC,
		Status:  statusUC,
		Cancel:  cancelUC,
		Delete:  deleteUC,
		Invoice: invoiceUC,
		Queries: queries,
	})
	clientHandler := handlers.NewClientHandler(d.DB)
	barberHandler := handlers.NewBarberHandler(d.DB, d.Photos)
	serviceHandler := handlers.NewServiceHandler(d.DB)
	unavailabilityHandler := handlers.NewUnavailabilityHandler(d.DB)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications)
	statsHandler := handlers.NewStatsHandler(d.DB)

	clientAuth := middleware.ClientAuth(cfg)

	// ======================================================
	// RESERVAS (cliente, cookie)
	// ======================================================
	reservas := r.Group("/api_reservas")
	reservas.Use(clientAuth)
	{
		reservas.POST("", reservationHandler.Create)
		reservas.GET("", reservationHandler.List)
		reservas.GET("/:id", reservationHandler.Get)
		reservas.PUT("/:id", reservationHandler.Update)
		reservas.DELETE("/:id", reservationHandler.Cancel)
	}

	// ======================================================
	// AUTH (cliente)
	// ======================================================
	auth := r.Group("/api_auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", clientAuth, authHandler.Me)

		auth.GET("/oauth/:provider/authorize", oauthHandler.Authorize)
		auth.GET("/oauth/:provider/callback", oauthHandler.Callback)
		auth.GET("/oauth/:provider/link", clientAuth, oauthHandler.Link)
		auth.POST("/oauth/:provider/unlink", clientAuth, oauthHandler.Unlink)
	}

	// ======================================================
	// API
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PÚBLICA
		// ------------------------------
		api.GET("/barbeiros", catalogHandler.ListBarbers)
		api.GET("/servicos", catalogHandler.ListServices)
		api.GET("/barbeiros/:id/ocupados", catalogHandler.Occupied)

		// ------------------------------
		// ADMIN
		// ------------------------------
		api.POST("/admin/login", adminAuthHandler.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg))
		{
			admin.GET("/reservas", adminReservationHandler.List)
			admin.POST("/reservas", adminReservationHandler.Create)
			admin.GET("/reservas/:id", adminReservationHandler.Get)
			admin.PUT("/reservas/:id", adminReservationHandler.Update)
			admin.DELETE("/reservas/:id", adminReservationHandler.Delete)
			admin.PATCH("/reservas/:id/status", adminReservationHandler.ChangeStatus)
			admin.POST("/reservas/:id/cancelar", adminReservationHandler.Cancel)
			admin.POST("/reservas/:id/fatura", adminReservationHandler.Invoice)

			admin.GET("/clientes", clientHandler.List)
			admin.GET("/clientes/:id", clientHandler.Get)
			admin.PATCH("/clientes/:id", clientHandler.Update)

			admin.GET("/barbeiros", barberHandler.List)
			admin.POST("/barbeiros", barberHandler.Create)
			admin.PATCH("/barbeiros/:id", barberHandler.Update)
			admin.DELETE("/barbeiros/:id", barberHandler.Deactivate)
			admin.POST("/barbeiros/:id/foto", barberHandler.UploadPhoto)

			admin.GET("/servicos", serviceHandler.List)
			admin.POST("/servicos", serviceHandler.Create)
			admin.PATCH("/servicos/:id", serviceHandler.Update)
			admin.DELETE("/servicos/:id", serviceHandler.Deactivate)

			admin.GET("/indisponibilidades", unavailabilityHandler.List)
			admin.POST("/indisponibilidades", unavailabilityHandler.Create)
			admin.PUT("/indisponibilidades/:id", unavailabilityHandler.Update)
			admin.DELETE("/indisponibilidades/:id", unavailabilityHandler.Delete)

			admin.GET("/notificacoes", notificationHandler.List)
			admin.GET("/notificacoes/nao-lidas", notificationHandler.UnreadCount)
			admin.POST("/notificacoes/lidas", notificationHandler.MarkAllRead)
			admin.POST("/notificacoes/:id/lida", notificationHandler.MarkRead)

			admin.GET("/stats", statsHandler.Dashboard)
		}
	}
}
