package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"

	"github.com/zenigame/zenigame/internal/activity"
	"github.com/zenigame/zenigame/internal/auth"
	"github.com/zenigame/zenigame/internal/chat"
	"github.com/zenigame/zenigame/internal/config"
	"github.com/zenigame/zenigame/internal/database"
	"github.com/zenigame/zenigame/internal/handlers"
	"github.com/zenigame/zenigame/internal/logging"
	"github.com/zenigame/zenigame/internal/middleware"
	"github.com/zenigame/zenigame/internal/pubsub"
	"github.com/zenigame/zenigame/internal/storage"
	"github.com/zenigame/zenigame/internal/token"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg *config.Config

	bridge      *pubsub.WatermillBridge
	activitySub *activity.Subscriber
	presence    *chat.Presence

	authMiddleware echo.MiddlewareFunc

	userHandler          *handlers.UserHandler
	teamHandler          *handlers.TeamHandler
	scheduleHandler      *handlers.ScheduleHandler
	attendanceHandler    *handlers.AttendanceHandler
	taskHandler          *handlers.TaskHandler
	questionnaireHandler *handlers.QuestionnaireHandler
	logHandler           *handlers.LogHandler
	chatHandler          *chat.Handler
}

// New creates a new Server instance with all dependencies wired.
func New() *Server {
	logging.New()
	cfg := config.New()

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	bridge := pubsub.NewWatermillBridge()

	files, err := storage.NewDiskStorage(cfg.StorageDir)
	if err != nil {
		slog.Error("Failed to initialize file storage", "dir", cfg.StorageDir, "error", err)
		os.Exit(1)
	}

	// Stores.
	userStore := database.NewUserStore(db)
	teamStore := database.NewTeamStore(db)
	scheduleStore := database.NewScheduleStore(db)
	attendanceStore := database.NewAttendanceStore(db)
	taskStore := database.NewTaskStore(db)
	questionnaireStore := database.NewQuestionnaireStore(db)
	logStore := database.NewTeamLogStore(db)

	tokens := token.NewManager(cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := auth.NewPasswordHasher()

	// The chat relay consumes the token manager as its credential verifier
	// and the team store as its membership oracle.
	relay := chat.NewRelay(chat.NewRegistry(), tokens, teamStore)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	return &Server{
		E:   e,
		DB:  db,
		Cfg: cfg,

		bridge:      bridge,
		activitySub: activity.NewSubscriber(bridge, logStore),
		presence:    chat.NewPresence(bridge),

		authMiddleware: middleware.Auth(userStore, tokens, hasher),

		userHandler:          handlers.NewUserHandler(userStore, teamStore, tokens, hasher, files),
		teamHandler:          handlers.NewTeamHandler(teamStore, userStore, bridge),
		scheduleHandler:      handlers.NewScheduleHandler(scheduleStore, teamStore, bridge),
		attendanceHandler:    handlers.NewAttendanceHandler(attendanceStore, teamStore, bridge),
		taskHandler:          handlers.NewTaskHandler(taskStore, teamStore, bridge, files, cfg.TaskPerPage),
		questionnaireHandler: handlers.NewQuestionnaireHandler(questionnaireStore, teamStore, bridge, cfg.QuestionnairePerPage),
		logHandler:           handlers.NewLogHandler(logStore, teamStore, cfg.LogPerPage),
		chatHandler:          chat.NewHandler(relay, bridge),
	}
}
