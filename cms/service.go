// Package cms exposes the content CRUD facade over HTTP.
package cms

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rneambassadors/portal/apperr"
	"github.com/rneambassadors/portal/content"
	"github.com/rneambassadors/portal/gateway"
	"github.com/rneambassadors/portal/notify"
)

// Service composes validation, sanitization, image processing and the entity
// store into the per-entity CRUD operations.
type Service struct {
	Store    *content.Store
	Auth     *gateway.Auth
	Notifier *notify.Telegram
	Logger   *logrus.Logger
}

// Routes registers the public and admin API on the given engine. The origin
// check wraps the whole API group so it runs before session resolution.
func (s *Service) Routes(route *gin.Engine) {
	api := route.Group("/api")
	api.Use(s.Auth.OriginMiddleware())

	api.GET("/ambassadors", s.ListAmbassadors)
	api.GET("/ambassadors/random", s.RandomAmbassadors)
	api.GET("/ambassadors/count", s.AmbassadorCount)
	api.GET("/ambassadors/:id", s.GetAmbassador)
	api.GET("/events", s.ListEvents)
	api.GET("/events/:id", s.GetEvent)
	api.GET("/news", s.ListNews)
	api.GET("/news/:id", s.GetNews)
	api.GET("/stats", s.ListStats)
	api.GET("/countries", s.ListCountries)
	api.GET("/tickers", s.ListTickers)
	api.GET("/images/:kind/:id", s.ServeImage)
	api.POST("/contact", s.SubmitContact)

	admin := api.Group("/admin")
	admin.POST("/login", s.Auth.LoginHandler)
	admin.POST("/logout", s.Auth.LogoutHandler)

	admin.Use(s.Auth.AuthMiddleware())
	admin.GET("/ambassadors", s.AdminListAmbassadors)
	admin.POST("/ambassadors", s.CreateAmbassador)
	admin.PUT("/ambassadors", s.UpdateAmbassador)
	admin.DELETE("/ambassadors", s.DeleteAmbassador)

	admin.GET("/events", s.ListEvents)
	admin.POST("/events", s.CreateEvent)
	admin.PUT("/events", s.UpdateEvent)
	admin.DELETE("/events", s.DeleteEvent)

	admin.GET("/news", s.ListNews)
	admin.POST("/news", s.CreateNews)
	admin.PUT("/news", s.UpdateNews)
	admin.DELETE("/news", s.DeleteNews)

	admin.GET("/stats", s.ListStats)
	admin.POST("/stats", s.CreateStat)
	admin.PUT("/stats", s.UpdateStat)
	admin.DELETE("/stats", s.DeleteStat)

	admin.GET("/countries", s.ListCountries)
	admin.POST("/countries", s.CreateCountry)
	admin.PUT("/countries", s.UpdateCountry)
	admin.DELETE("/countries", s.DeleteCountry)

	admin.GET("/tickers", s.AdminListTickers)
	admin.POST("/tickers", s.CreateTicker)
	admin.PUT("/tickers", s.UpdateTicker)
	admin.DELETE("/tickers", s.DeleteTicker)

	admin.POST("/content", s.UpdateCMSContent)

	admin.GET("/messages", s.ListMessages)
	admin.PUT("/messages", s.MarkMessageRead)
	admin.DELETE("/messages", s.DeleteMessage)

	admin.POST("/profile/password", s.Auth.ChangePasswordHandler)
}

// fail writes the error payload for err. 5xx causes are logged here and
// never reach the client body.
func (s *Service) fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= 500 {
		s.Logger.WithError(err).Error(apperr.Code(err))
	}
	c.JSON(status, apperr.Payload(err))
}
