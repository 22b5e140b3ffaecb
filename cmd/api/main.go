package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"flix/internal/auth"
	"flix/internal/data"
	"flix/internal/mailer"

	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type dbConfig struct {
	uri  string
	name string
}

type smtp struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

type config struct {
	port   int
	env    string
	db     dbConfig
	secret string
	smtp   smtp
}

type application struct {
	config config
	logger *slog.Logger
	models data.Models
	tokens *auth.Tokens
	local  auth.Strategy
	bearer auth.Strategy
	mailer mailer.Mailer
	wg     sync.WaitGroup
}

var (
	version   = "1.0.0"
	buildTime string
)

func customHTTPErrorHandler(err error, c echo.Context) {
	var status int
	var message interface{}

	switch e := err.(type) {
	case *echo.HTTPError:
		status = e.Code
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "the server encountered a problem and could not process your request"
	}

	if !c.Response().Committed {
		c.JSON(status, envelope{"error": message})
	}
}

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		log.Println("no .env file found, relying on the environment")
	}

	displayVersion := flag.Bool("version", false, "Display version and exit")
	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		fmt.Printf("Build time:\t%s\n", buildTime)
		os.Exit(0)
	}

	port := os.Getenv("PORT")
	realPort, err := strconv.Atoi(port)
	if err != nil || realPort == 0 {
		realPort = 8080
	}
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	cfg := config{
		port: realPort,
		db: dbConfig{
			uri:  os.Getenv("MONGODB_URI"),
			name: os.Getenv("DATABASE_NAME"),
		},
		secret: os.Getenv("JWT_SECRET"),
		smtp: smtp{
			host:     os.Getenv("SMTP_HOST"),
			port:     smtpPort,
			username: os.Getenv("SMTP_USERNAME"),
			password: os.Getenv("SMTP_PASSWORD"),
			sender:   os.Getenv("SMTP_SENDER"),
		},
	}
	flag.StringVar(&cfg.env, "env", "development", "Environment(development|staging|production)")
	flag.Parse()

	if cfg.db.uri == "" || cfg.db.name == "" {
		log.Fatal("MONGODB_URI and DATABASE_NAME must be set")
	}
	if cfg.secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	client, dbErr := openDB(cfg)
	if dbErr != nil {
		log.Fatal(dbErr)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	}()

	e := echo.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:        true,
		LogURI:           true,
		LogError:         true,
		LogMethod:        true,
		LogContentLength: true,
		HandleError:      true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.LogAttrs(context.Background(), slog.LevelError, "REQUEST_ERROR",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("content_length", v.ContentLength),
					slog.String("err", v.Error.Error()),
				)
			} else {
				logger.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("content_length", v.ContentLength),
				)
			}
			return nil
		},
	}))

	logger.Info("database connection established", "database", cfg.db.name)

	models := data.NewModels(client, cfg.db.name)
	tokens := auth.NewTokens([]byte(cfg.secret))

	app := &application{
		config: cfg,
		logger: logger,
		models: models,
		tokens: tokens,
		local:  &auth.Local{Users: models.Users},
		bearer: &auth.Bearer{Tokens: tokens, Users: models.Users},
		mailer: mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender),
	}

	e.Use(echoprometheus.NewMiddleware("flix"))
	e.GET("/metrics", echoprometheus.NewHandler())

	e.Use(app.CustomRecover())
	e.Use(middleware.CORS())
	e.Use(app.Authenticate())

	e.HTTPErrorHandler = customHTTPErrorHandler
	app.routes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal(err)
	}

	logger.Info("completing background tasks...")
	app.wg.Wait()
}

func openDB(cfg config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.db.uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	return client, nil
}
