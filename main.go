package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/planner-api/planner/pkg/auth"
	"github.com/planner-api/planner/pkg/config"
	"github.com/planner-api/planner/pkg/docs"
	"github.com/planner-api/planner/pkg/logger"
	"github.com/planner-api/planner/repos/calendar"
	"github.com/planner-api/planner/repos/credentials"
	"github.com/planner-api/planner/repos/docstore"
	eventstore "github.com/planner-api/planner/repos/events"
	"github.com/planner-api/planner/repos/gateway"
	"github.com/planner-api/planner/repos/recipes"
	resend "github.com/planner-api/planner/repos/resend"

	events "github.com/planner-api/planner/services/events"
	sync "github.com/planner-api/planner/services/sync"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "planner",
		Usage: "Event planner API with Google Calendar sync",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Flags:  config.Flags(),
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	ctx := c.Context

	cfg, err := config.FromContext(c)
	if err != nil {
		return err
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zlog.Sync()

	credentialsOption := option.WithCredentialsJSON([]byte(cfg.FirebaseCredentials))

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, credentialsOption)
	if err != nil {
		return fmt.Errorf("initialize firebase app: %w", err)
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return fmt.Errorf("initialize firebase auth: %w", err)
	}

	documents, closeDocuments, err := openStore(ctx, cfg, credentialsOption)
	if err != nil {
		return err
	}
	defer closeDocuments()

	location, err := time.LoadLocation(cfg.CalendarTimezone)
	if err != nil {
		return err
	}

	gw := gateway.New(zlog,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.DependencyTimeout}),
		gateway.WithBreakerFactory(gateway.NewBreakerFactory(zlog, uint32(cfg.BreakerThreshold), cfg.BreakerTimeout)),
	)

	recipesService := recipes.NewService(gw, cfg.RecipesURL)
	calendarService := calendar.NewService(calendar.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		CalendarID:   cfg.CalendarID,
		Location:     location,
		Timeout:      cfg.DependencyTimeout,
	}, gw)

	syncService := sync.NewSyncService(credentials.NewRegistry(documents), recipesService, calendarService, zlog)

	opts := []events.Option{}
	if cfg.ResendKey != "" {
		opts = append(opts, events.WithNotifier(resend.NewService(cfg.ResendKey, cfg.MailFrom, location, zlog)))
	}
	eventsService := events.NewEventsService(eventstore.NewStore(documents), recipesService, syncService, zlog, opts...)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSHosts
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}

	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(zlog))
	if len(cfg.CORSHosts) > 0 {
		router.Use(cors.New(corsConfig))
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "The Planner API is running!")
	})
	docs.Register(router)

	apiRouter := router.Group("/api/v1")
	apiRouter.Use(auth.AuthMiddleware(authClient))

	events.NewHTTPHandler(events.HTTPOptions{
		Service: eventsService,
		Router:  apiRouter,
		Logger:  zlog,
	})

	sync.NewHTTPHandler(sync.HTTPOptions{
		Service: syncService,
		Router:  apiRouter,
		Logger:  zlog,
	})

	zlog.Info("Planner API listening", zap.String("port", cfg.Port), zap.String("store", cfg.Store))
	return router.Run(":" + cfg.Port)
}

// openStore opens the configured document store and returns its closer.
func openStore(ctx context.Context, cfg config.Config, credentialsOption option.ClientOption) (docstore.Store, func(), error) {
	switch cfg.Store {
	case config.StoreBolt:
		db, err := docstore.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	case config.StoreMemory:
		return docstore.NewMemory(), func() {}, nil
	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, credentialsOption)
		if err != nil {
			return nil, nil, fmt.Errorf("create firestore client: %w", err)
		}
		return docstore.NewFirestore(firestoreClient), func() { _ = firestoreClient.Close() }, nil
	}
}
