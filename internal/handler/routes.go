package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/middleware"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

// Routes bundles every handler and the dependencies of the guard middleware.
type Routes struct {
	Auth         *AuthHandler
	Profiles     *ProfileHandler
	Events       *EventHandler
	Registration *RegistrationHandler
	Trainings    *TrainingHandler
	Messages     *MessageHandler
	Attestations *AttestationHandler
	Reports      *ReportHandler
	System       *SystemHandler

	Tokens      middleware.TokenValidator
	ProfileRepo middleware.ProfileLookup
	AuditRepo   middleware.AuditWriter
	Logger      *zap.Logger
}

// Register mounts the API under prefix and the unprefixed system routes on r.
func (rt Routes) Register(r *gin.Engine, prefix string) {
	if rt.System != nil {
		r.GET("/health", rt.System.Health)
		r.GET("/ready", rt.System.Ready)
		r.GET("/metrics", rt.System.Prometheus)
		r.GET("/uploads/*path", rt.System.Upload)
	}
	r.GET("/exports/download", rt.Reports.Download)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/signup", rt.Auth.SignUp)
	auth.POST("/admin/register", rt.Auth.RegisterAdmin)
	auth.POST("/login", rt.Auth.Login)
	auth.POST("/refresh", rt.Auth.Refresh)
	api.GET("/events/public", rt.Events.ListPublic)

	secured := api.Group("")
	secured.Use(middleware.JWT(rt.Tokens))
	secured.POST("/auth/logout", rt.Auth.Logout)
	secured.POST("/auth/change-password", rt.Auth.ChangePassword)
	secured.GET("/auth/me", rt.Auth.Me)

	profile := secured.Group("/profile")
	profile.GET("", rt.Profiles.Get)
	profile.PUT("", rt.Profiles.Update)
	profile.POST("/onboarding", rt.Profiles.SubmitOnboarding)
	profile.GET("/status", rt.Profiles.Status)
	profile.PUT("/languages", rt.Profiles.ReplaceLanguages)
	profile.POST("/avatar", rt.Profiles.UploadAvatar)

	messages := secured.Group("/messages")
	messages.GET("", rt.Messages.Inbox)
	messages.POST("", rt.Messages.Send)
	messages.GET("/sent", rt.Messages.Sent)
	messages.GET("/unread-count", rt.Messages.UnreadCount)
	messages.PATCH("/:id/read", rt.Messages.MarkRead)

	active := secured.Group("")
	active.Use(middleware.RequireActiveVolunteer(rt.ProfileRepo))
	active.GET("/events", rt.Events.List)
	active.GET("/events/:id", rt.Events.Get)
	active.POST("/events/:id/register", rt.Registration.Register)
	active.DELETE("/events/:id/register", rt.Registration.Withdraw)
	active.GET("/me/registrations", rt.Registration.ListMine)
	active.GET("/me/stats", rt.Reports.VolunteerStats)
	active.GET("/trainings", rt.Trainings.List)
	active.GET("/trainings/:id", rt.Trainings.Get)
	active.POST("/trainings/:id/join", rt.Trainings.Join)
	active.DELETE("/trainings/:id/join", rt.Trainings.Leave)
	active.GET("/attestations", rt.Attestations.ListMine)
	active.POST("/attestations", rt.Attestations.Request)
	active.GET("/certificates", rt.Attestations.Certificates)

	admin := secured.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	volunteers := admin.Group("/volunteers")
	volunteers.GET("", rt.Profiles.List)
	volunteers.GET("/pending", rt.Profiles.ListPending)
	volunteers.GET("/:id", rt.Profiles.GetByID)
	volunteers.POST("/:id/approve", rt.Profiles.Approve)
	volunteers.POST("/:id/reject", rt.Profiles.Reject)

	events := admin.Group("/events")
	events.POST("", rt.Events.Create)
	events.PUT("/:id", rt.Events.Update)
	events.DELETE("/:id", rt.Events.Delete)
	events.PATCH("/:id/status", rt.Events.SetStatus)
	events.POST("/:id/cancel", rt.Registration.CancelEvent)
	events.POST("/:id/poster", rt.Events.UploadPoster)
	events.GET("/:id/registrations", rt.Registration.ListForEvent)
	events.POST("/:id/assign", rt.Registration.Assign)

	registrations := admin.Group("/registrations")
	registrations.GET("/pending", rt.Registration.ListPending)
	registrations.POST("/:id/validate", rt.Registration.Validate)
	registrations.POST("/:id/reject", rt.Registration.Reject)
	registrations.POST("/:id/complete", rt.Registration.Complete)

	trainings := admin.Group("/trainings")
	trainings.POST("", rt.Trainings.Create)
	trainings.PUT("/:id", rt.Trainings.Update)
	trainings.DELETE("/:id", rt.Trainings.Delete)
	trainings.POST("/:id/cancel", rt.Trainings.Cancel)
	trainings.POST("/:id/poster", rt.Trainings.UploadPoster)
	trainings.GET("/:id/participants", rt.Trainings.Participants)
	trainings.PATCH("/:id/participants/:volunteerId", rt.Trainings.MarkAttendance)

	admin.GET("/attestations", rt.Attestations.List)
	admin.POST("/attestations/:id/process", rt.Attestations.Process)
	admin.POST("/certificates", rt.Attestations.IssueCertificate)

	admin.GET("/stats", rt.Reports.AdminStats)
	exports := admin.Group("/exports")
	exports.GET("/volunteers",
		middleware.Audit(rt.AuditRepo, rt.Logger, models.AuditActionExport, "volunteers"),
		rt.Reports.ExportVolunteers)
	exports.GET("/events/:id/volunteers",
		middleware.Audit(rt.AuditRepo, rt.Logger, models.AuditActionExport, "event_volunteers"),
		rt.Reports.ExportEventVolunteers)
}
