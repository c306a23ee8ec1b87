package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/apiserver/database"
	"github.com/flotillahq/flotilla/internal/apiserver/handler"
	"github.com/flotillahq/flotilla/internal/apiserver/middleware"
	"github.com/flotillahq/flotilla/internal/auth/jwt"
	"github.com/flotillahq/flotilla/internal/common/config"
	"github.com/flotillahq/flotilla/pkg/logger"
	"github.com/flotillahq/flotilla/pkg/metrics"
	"github.com/flotillahq/flotilla/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Fleet API Server",
		Long:  `Fleet API Server provides account, tenancy and fleet administration endpoints`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "configs/apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("Starting apiserver",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	m := metrics.New(cfg.Metrics)

	svc := account.NewService(db, zapLogger.Named("account"), account.Options{
		MaxFailedAttempts: cfg.Security.MaxFailedAttempts,
		LockDuration:      cfg.Security.LockDuration,
		BcryptCost:        cfg.Security.BcryptCost,
		OnLockout: func(string) {
			m.AccountLocked()
		},
	})

	if cfg.SuperAdmin.Email != "" && cfg.SuperAdmin.Password != "" {
		if _, err := svc.EnsureSuperAdmin(context.Background(), cfg.SuperAdmin.Email, cfg.SuperAdmin.Password); err != nil {
			zapLogger.Fatal("Failed to ensure super admin account", zap.Error(err))
		}
	}

	h := handler.New(svc, db, jwtService, m, zapLogger.Named("handler"))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(m.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.POST("/api/auth/login", h.Login)

	authed := r.Group("/api", middleware.JWTAuth(jwtService))
	{
		authed.GET("/auth/me", h.Me)
		authed.POST("/auth/change-password", h.ChangePassword)

		authed.POST("/users", h.CreateUser)
		authed.GET("/users", h.ListUsers)
		authed.GET("/users/:id", h.GetUser)
		authed.PUT("/users/:id", h.UpdateUser)
		authed.DELETE("/users/:id", h.DeleteUser)

		authed.POST("/companies", h.CreateCompany)
		authed.GET("/companies", h.ListCompanies)
		authed.GET("/companies/:id", h.GetCompany)
		authed.PUT("/companies/:id", h.UpdateCompany)
		authed.POST("/companies/:id/admin", h.CreateCompanyAdmin)

		authed.POST("/branches", h.CreateBranch)
		authed.GET("/branches", h.ListBranches)
		authed.GET("/branches/:id", h.GetBranch)
		authed.PUT("/branches/:id", h.UpdateBranch)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	zapLogger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("Server stopped", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
