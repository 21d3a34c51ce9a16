package main

import (
	"context"
	"time"

	"anoa.com/blogspace/internal/bootstrap"
	"anoa.com/blogspace/internal/config"
	"anoa.com/blogspace/internal/server"
	"anoa.com/blogspace/pkg/database"
	"anoa.com/blogspace/pkg/logger"
	"anoa.com/blogspace/pkg/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(database.Options{
		URL:          cfg.DatabaseURL,
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPass,
		Name:         cfg.DBName,
		MaxOpenConns: 25,
		MaxIdleConns: 5,
		Debug:        cfg.IsDevelopment() && cfg.LogLevel == "debug",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx := context.Background()
	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdminUser(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin user")
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(redisOpts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Info().Msg("sessions and rate limits backed by redis")
	} else {
		log.Warn().Msg("REDIS_URL not set, sessions stored in the database and rate limiting disabled")
	}

	files, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to prepare upload directory")
	}

	var images storage.ImageStorage
	if cfg.CloudinaryURL != "" {
		images, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize cloudinary storage")
		}
	}

	srv := server.NewServer(server.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Files:  files,
		Images: images,
	})

	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("starting server")
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}
