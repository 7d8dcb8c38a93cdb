package main

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rneambassadors/portal/cms"
	"github.com/rneambassadors/portal/content"
	"github.com/rneambassadors/portal/gateway"
	"github.com/rneambassadors/portal/notify"
)

var (
	logrusLogger = logrus.New()
	cfg          content.Config
	database     *gorm.DB
	cmsService   cms.Service
	auth         gateway.Auth
)

// GetMainEngine wires middleware and routes into the served engine.
func GetMainEngine() *gin.Engine {
	route := gin.New()
	route.HandleMethodNotAllowed = true
	route.Use(gin.Recovery())
	route.Use(gateway.RequestID())
	route.Use(gateway.RequestLogger(logrusLogger))
	route.Use(gateway.Instrumentation())
	route.Use(gateway.Language())

	route.GET("/metrics", gin.WrapH(promhttp.Handler()))
	cmsService.Routes(route)
	return route
}

func init() {
	logrusLogger.SetReportCaller(true)
	logrusLogger.SetFormatter(&logrus.JSONFormatter{})

	if err := parseConfig(&cfg); err != nil {
		logrusLogger.Printf("error in parsing config: %v", err)
	}
	cfg.Defaults()
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	var err error
	database, err = gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		logrusLogger.Fatalf("error in connecting to db: %v", err)
	}

	store := content.NewStore(database, logrusLogger)
	if err := store.Migrate(); err != nil {
		logrusLogger.Fatalf("error in migrating db: %v", err)
	}

	var sessions gateway.SessionStore = gateway.NewMemorySessions()
	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		sessions = &gateway.RedisSessions{Client: client}
	}

	auth = gateway.Auth{Store: store, Sessions: sessions, Logger: logrusLogger, Config: cfg}
	if err := auth.EnsureAdmin(); err != nil {
		logrusLogger.Fatalf("error in seeding admin user: %v", err)
	}

	binding.Validator = new(content.DefaultValidator)
	cmsService = cms.Service{
		Store:    store,
		Auth:     &auth,
		Notifier: notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID),
		Logger:   logrusLogger,
	}
}

func main() {
	logrusLogger.Printf("listening on %s", cfg.Address)
	if err := GetMainEngine().Run(cfg.Address); err != nil {
		logrusLogger.Fatalf("server stopped: %v", err)
	}
}
