// Package server assembles repositories, services and handlers into a router.
package server

import (
	"net/http"

	"obrafin/internal/access"
	"obrafin/internal/google"
	"obrafin/internal/handler"
	"obrafin/internal/middleware"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/internal/service"
	"obrafin/internal/websocket"
	"obrafin/pkg/token"
	"obrafin/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options carries the collaborators built once at startup.
type Options struct {
	Tokens  *token.Service
	Google  google.Client
	Hub     *websocket.Hub
	Session handler.SessionCookie
}

// Register wires every route onto r. Global middleware (logging, CORS) is the caller's job.
func Register(r *gin.Engine, db *gorm.DB, opts Options) {
	validator.Setup()

	if opts.Google == nil {
		opts.Google = google.Unconfigured{}
	}
	if opts.Hub == nil {
		opts.Hub = websocket.NewHub()
	}

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	obraStore := repository.NewStore[model.Obra](db)
	materialStore := repository.NewStore[model.Material](db, repository.WithOrder("data DESC"))
	laborStore := repository.NewStore[model.Labor](db, repository.WithOrder("inicio_contrato DESC"))
	equipmentStore := repository.NewStore[model.Equipment](db,
		repository.WithPreload("Pagamentos"),
		repository.WithOrder("data DESC"),
		repository.WithCascade("Pagamentos"),
	)
	contractStore := repository.NewStore[model.Contract](db,
		repository.WithPreload("Pagamentos"),
		repository.WithOrder("inicio_contrato DESC"),
		repository.WithCascade("Pagamentos"),
	)
	incomeStore := repository.NewStore[model.Income](db, repository.WithOrder("data DESC"))
	miscRepo := repository.NewMiscExpenseRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	collections := service.LedgerCollections{
		Gastos:             repository.NewLedgerCollection(db, func(e *model.LedgerExpense, id uuid.UUID) { e.LedgerID = id }),
		Contratos:          repository.NewLedgerCollection(db, func(e *model.LedgerContract, id uuid.UUID) { e.LedgerID = id }),
		Cronograma:         repository.NewLedgerCollection(db, func(e *model.ScheduleStage, id uuid.UUID) { e.LedgerID = id }),
		PagamentosSemanais: repository.NewLedgerCollection(db, func(e *model.WeeklyPayment, id uuid.UUID) { e.LedgerID = id }),
	}

	// Services
	resolver := access.NewResolver(userRepo)
	userService := service.NewUserService(userRepo, obraStore, opts.Tokens, auditRepo)
	auditService := service.NewAuditService(auditRepo)
	obraService := service.NewObraService(obraStore, txManager, userRepo, resolver, auditRepo)
	materialService := service.NewMaterialService(materialStore, resolver, auditRepo)
	laborService := service.NewLaborService(laborStore, resolver, auditRepo)
	equipmentService := service.NewEquipmentService(equipmentStore,
		repository.NewInstallmentStore[model.Equipment](db, model.OwnerEquipment), resolver, auditRepo)
	contractService := service.NewContractService(contractStore,
		repository.NewInstallmentStore[model.Contract](db, model.OwnerContract), resolver, auditRepo)
	miscService := service.NewMiscExpenseService(miscRepo,
		repository.NewInstallmentStore[model.MiscExpense](db, model.OwnerMisc), resolver, auditRepo)
	incomeService := service.NewIncomeService(incomeStore, resolver, auditRepo)
	ledgerService := service.NewLedgerService(ledgerRepo, collections, auditRepo, opts.Hub, opts.Google)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(opts.Hub, opts.Tokens, c)
	})

	api := r.Group("/api")
	handler.NewUserHandler(userService, opts.Tokens, opts.Session).RegisterRoutes(api)

	protected := api.Group("", middleware.Authenticate(opts.Tokens))
	handler.NewObraHandler(obraService).RegisterRoutes(protected)
	handler.NewMaterialHandler(materialService).RegisterRoutes(protected)
	handler.NewLaborHandler(laborService).RegisterRoutes(protected)
	handler.NewEquipmentHandler(equipmentService).RegisterRoutes(protected)
	handler.NewContractHandler(contractService).RegisterRoutes(protected)
	handler.NewMiscExpenseHandler(miscService).RegisterRoutes(protected)
	handler.NewIncomeHandler(incomeService).RegisterRoutes(protected)
	handler.NewLedgerHandler(ledgerService).RegisterRoutes(protected)
	handler.NewGoogleHandler(opts.Google).RegisterRoutes(protected)
	handler.NewAuditHandler(auditService).RegisterRoutes(protected)
}
