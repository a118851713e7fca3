package handlers

import (
	"rentpolicy/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Router bundles the handler sets mounted by RegisterRoutes.
type Router struct {
	Actors      *ActorHandlers
	Primary     *PrimaryHandlers
	Ownership   *OwnershipHandlers
	Tokens      *TokenHandlers
	SelfService *SelfServiceHandlers
	Health      *HealthHandlers

	SelfServiceAuth echo.MiddlewareFunc
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.Health.HealthCheck)
	e.GET("/health/live", r.Health.LivenessCheck)

	vm := middleware.NewVersionMiddleware()
	v1 := vm.VersionRoute(e, "v1")

	staff := v1.Group("", middleware.RequireStaff())

	staff.POST("/actors", r.Actors.RegisterActor)
	staff.GET("/actors/:id", r.Actors.GetActor)
	staff.PUT("/actors/:id", r.Actors.UpdateActor)
	staff.GET("/actors/:id/can-submit", r.Actors.CanSubmit)
	staff.POST("/actors/:id/submit", r.Actors.Submit)
	staff.POST("/actors/:id/approve", r.Actors.Approve)
	staff.POST("/actors/:id/reject", r.Actors.Reject)
	staff.POST("/actors/:id/request-changes", r.Actors.RequestChanges)
	staff.GET("/actors/:id/activity", r.Actors.History)
	staff.POST("/actors/:id/documents/:category", r.Actors.UploadDocument)

	staff.POST("/actors/:id/token", r.Tokens.Generate)
	staff.DELETE("/actors/:id/token", r.Tokens.Revoke)
	staff.POST("/actors/:id/token/refresh", r.Tokens.Refresh)

	staff.GET("/policies/:policyId/primary", r.Primary.GetPrimary)
	staff.PUT("/policies/:policyId/primary", r.Primary.SetPrimary)
	staff.POST("/policies/:policyId/primary/transfer", r.Primary.TransferPrimary)
	staff.DELETE("/policies/:policyId/landlords/:id", r.Primary.RemoveLandlord)

	staff.GET("/landlords/:id/ownership", r.Ownership.GetOwnership)
	staff.GET("/landlords/:id/ownership/validate", r.Ownership.ValidateOwnership)
	staff.POST("/landlords/:id/co-owners", r.Ownership.AddCoOwner)
	staff.PUT("/landlords/:id/co-owners", r.Ownership.UpdateShares)
	staff.DELETE("/landlords/:id/co-owners/:coOwnerId", r.Ownership.RemoveCoOwner)

	self := v1.Group("/self-service/:token", r.SelfServiceAuth)
	self.GET("", r.SelfService.Get)
	self.PUT("", r.SelfService.Update)
	self.POST("/submit", r.SelfService.Submit)
}
