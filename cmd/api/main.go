package main

import (
	"context"
	"fmt"
	"os"

	_ "procurement/api/swagger" // swagger docs
	"procurement/internal/config"
	"procurement/internal/database"
	"procurement/internal/handler"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urfave/cli"
	"gorm.io/gorm"
)

// @title           Procurement Budget API
// @version         1.0
// @description     Department budgets, purchase requests and revisions with IDR mirrors.
// @host            localhost:4003
// @BasePath        /
func main() {
	app := cli.NewApp()
	app.Name = "procurement"
	app.Usage = "procurement budget ledger"
	app.Action = serve
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "migrate the schema and start the HTTP server",
			Action: serve,
		},
		{
			Name:   "migrate",
			Usage:  "run schema migrations and exit",
			Action: migrate,
		},
		{
			Name:   "seed-departments",
			Usage:  "load the default department directory",
			Action: seedDepartments,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.ConfigureLogger()

	db, err := database.NewConnection(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	log.WithField("driver", db.Dialector.Name()).Info("database connected")
	return cfg, db, nil
}

func migrate(_ *cli.Context) error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}
	return database.Migrate(db)
}

func seedDepartments(_ *cli.Context) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	txManager := repository.NewTransactionManager(db)
	departments := service.NewDepartmentService(txManager, repository.NewDepartmentRepository(db), repository.NewAuditRepository(db), cfg.SystemActor)
	result, err := departments.SeedDepartments(context.Background())
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"created": result.Created, "skipped": result.Skipped}).Info(result.Message)
	return nil
}

func serve(_ *cli.Context) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Warn("auto-migrate failed, continuing with existing schema")
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.AllowedOrigins)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	ledger := service.Ledger{
		Tx:        txManager,
		Budgets:   repository.NewBudgetRepository(db),
		Requests:  repository.NewRequestRepository(db),
		Revisions: repository.NewRevisionRepository(db),
		Audit:     auditRepo,
		Rates:     cfg.Rates(),
		Locker:    service.NewBudgetLocker(),
		Events:    wsHub,
		Actor:     cfg.SystemActor,
	}

	departmentService := service.NewDepartmentService(txManager, repository.NewDepartmentRepository(db), auditRepo, cfg.SystemActor)
	budgetService := service.NewBudgetService(ledger, departmentService)
	requestService := service.NewRequestService(ledger)
	revisionService := service.NewRevisionService(ledger)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	budgetHandler := handler.NewBudgetHandler(budgetService)
	requestHandler := handler.NewRequestHandler(requestService)
	revisionHandler := handler.NewRevisionHandler(revisionService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// API Routing
	budgetHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	revisionHandler.RegisterRoutes(router.Group(""))
	departmentHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.Infof("Server listening on :%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}
