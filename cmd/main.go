package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pot-code/learning-engine/internal/client"
	"github.com/pot-code/learning-engine/internal/domain"
	infra "github.com/pot-code/learning-engine/internal/infrastructure"
	"github.com/pot-code/learning-engine/internal/infrastructure/driver"
	"github.com/pot-code/learning-engine/internal/infrastructure/logging"
	"github.com/pot-code/learning-engine/internal/infrastructure/uuid"
	"github.com/pot-code/learning-engine/internal/infrastructure/validate"
	ihttp "github.com/pot-code/learning-engine/internal/interfaces/http"
	"github.com/pot-code/learning-engine/internal/lecture"
	"github.com/pot-code/learning-engine/internal/repository"
	"github.com/pot-code/learning-engine/internal/session"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	defer logger.Sync()
	logger.Debug("Loaded config", zap.String("config", option.String()))

	validator, err := validate.NewValidator(option.Locale)
	if err != nil {
		logger.Fatal("Failed to create validator", zap.Error(err))
	}

	api := client.New(&client.Config{
		BaseURL: option.API.BaseURL,
		Token:   option.API.Token,
		Timeout: option.API.Timeout,
	})

	var (
		probes []ihttp.Pinger
		sink   domain.LectureProgressRepository = api
		dbConn driver.ITransactionalDB
		kv     driver.KeyValueDB
	)
	if option.Progress.Sink == "database" {
		dbConn, err = driver.GetDBConnection(&driver.DBConfig{
			User:     option.Database.User,
			Password: option.Database.Password,
			MaxConn:  option.Database.MaxConn,
			Protocol: option.Database.Protocol,
			Driver:   option.Database.Driver,
			Host:     option.Database.Host,
			Port:     option.Database.Port,
			Query:    option.Database.Query,
			Schema:   option.Database.Schema,
		})
		if err != nil {
			logger.Fatal("Failed to create DB connection", zap.Error(err))
		}
		logger.Debug("Create DB connection instance", zap.String("db.driver", option.Database.Driver),
			zap.String("db.schema", option.Database.Schema),
			zap.String("db.host", option.Database.Host),
		)
		sink = repository.NewLectureProgressRepository(dbConn, validator)
		probes = append(probes, dbConn)
	}
	if option.Cache.Driver == "redis" {
		kv = driver.NewRedisClient(&driver.KVConfig{
			Host:     option.KVStore.Host,
			Port:     option.KVStore.Port,
			Password: option.KVStore.Password,
			DB:       option.KVStore.DB,
		})
		probes = append(probes, kv)
	}

	idle := option.Learning.SessionIdleTimeout
	deps := session.Deps{
		Events:      api,
		Details:     api,
		Progress:    sink,
		Enrollments: api,
		Lectures:    api,
	}
	opts := session.Options{
		PersistInterval: option.Learning.PersistInterval,
		NotificationTTL: option.Learning.NotificationTTL,
		ResumePromptTTL: option.Learning.ResumePromptTTL,
		OutboxSize:      option.Learning.OutboxSize,
	}
	registry := session.NewRegistry(uuid.NewNanoIDGenerator(option.Security.IDLength),
		func(id string, cfg session.Config) *session.Session {
			d := deps
			if kv != nil {
				d.Cache = lecture.NewRedisCache(kv, option.Cache.Prefix+":"+id, idle)
			}
			return session.New(id, cfg, d, opts, logger)
		}, idle, logger)
	if err := registry.StartSweeper(); err != nil {
		logger.Fatal("Failed to schedule the idle session sweep", zap.Error(err))
	}

	app := ihttp.NewServer(&ihttp.ServerOption{
		Config:    option,
		Registry:  registry,
		Validator: validator,
		Probes:    probes,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		addr := fmt.Sprintf("%s:%d", option.Host, option.Port)
		logger.Info("Server started", zap.String("server.address", addr))
		if err := app.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Failed to shutdown server gracefully", zap.Error(err))
	}
	// sessions flush their last position before the stores go away
	registry.Stop(shutdownCtx)
	if dbConn != nil {
		dbConn.Close(shutdownCtx)
	}
	if kv != nil {
		kv.Close()
	}
	logger.Info("Server exited")
}
