package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zenigame/zenigame/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(5)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// The chat socket authenticates per join event, not per connection.
	s.E.GET("/chat/ws", s.chatHandler.ServeWS)

	v1 := s.E.Group("/api/v1")

	// Registration and token issuance carry credentials, so they are rate
	// limited. Everything else sits behind the auth middleware.
	v1.POST("/users/register", s.userHandler.Register, rateLimiter)
	v1.GET("/users/token", s.userHandler.Token, rateLimiter, s.authMiddleware)
	v1.GET("/users/:uid/avatar", s.userHandler.GetAvatar)

	authed := v1.Group("", s.authMiddleware)

	authed.GET("/users", s.userHandler.Get)
	authed.PATCH("/users", s.userHandler.Rename)
	authed.PUT("/users/password", s.userHandler.ChangePassword)
	authed.PUT("/users/avatar", s.userHandler.UploadAvatar)

	authed.POST("/teams", s.teamHandler.Create)
	authed.POST("/teams/join", s.teamHandler.JoinByCode)
	authed.GET("/teams/:tid", s.teamHandler.Get)
	authed.POST("/teams/:tid", s.teamHandler.Action)
	authed.PATCH("/teams/:tid", s.teamHandler.Update)
	authed.DELETE("/teams/:tid", s.teamHandler.Delete)
	authed.POST("/teams/:tid/invitation", s.teamHandler.RenewInvCode)

	authed.POST("/teams/:tid/schedules", s.scheduleHandler.Create)
	authed.GET("/teams/:tid/schedules", s.scheduleHandler.ListMonth)
	authed.PATCH("/schedules/:sid", s.scheduleHandler.Update)
	authed.DELETE("/schedules/:sid", s.scheduleHandler.Delete)

	authed.POST("/teams/:tid/attendances", s.attendanceHandler.CheckIn)
	authed.GET("/teams/:tid/attendances", s.attendanceHandler.Report)

	authed.POST("/teams/:tid/tasks", s.taskHandler.Create)
	authed.GET("/teams/:tid/tasks", s.taskHandler.List)
	authed.POST("/tasks/:tid", s.taskHandler.Submit)

	authed.POST("/teams/:tid/questionnaires", s.questionnaireHandler.Create)
	authed.GET("/teams/:tid/questionnaires", s.questionnaireHandler.List)

	authed.GET("/teams/:tid/logs", s.logHandler.List)
}
