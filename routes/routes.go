package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lbin817/MSE/config"
	"github.com/lbin817/MSE/handlers"
	"github.com/lbin817/MSE/services"
	"github.com/lbin817/MSE/store"
)

// SetupPublicRoutes registers the team-facing endpoints and admin login.
func SetupPublicRoutes(rg *gin.RouterGroup, s store.Store, cfg *config.Config) {
	intakeService := services.NewIntakeService(s)
	ledgerService := services.NewLedgerService(s)
	reportService := services.NewReportService(s, ledgerService)

	intakeHandler := handlers.NewIntakeHandler(intakeService, cfg.UploadDir)
	reportHandler := handlers.NewReportHandler(reportService)
	authHandler := &handlers.AuthHandler{Cfg: cfg}

	rg.POST("/requests/purchase", intakeHandler.CreatePurchase)
	rg.POST("/requests/multi", intakeHandler.CreateMultiPurchase)
	rg.POST("/requests/other", intakeHandler.CreateOtherRequest)
	rg.POST("/balance", reportHandler.CheckBalance)

	rg.POST("/admin/login", authHandler.Login)
	rg.POST("/admin/logout", authHandler.Logout)
}

// SetupAdminRoutes registers everything behind the admin token.
func SetupAdminRoutes(rg *gin.RouterGroup, s store.Store, cfg *config.Config, ws *handlers.WSHandler) {
	ledgerService := services.NewLedgerService(s)
	intakeService := services.NewIntakeService(s)
	reportService := services.NewReportService(s, ledgerService)

	ledgerHandler := handlers.NewLedgerHandler(ledgerService, ws)
	intakeHandler := handlers.NewIntakeHandler(intakeService, cfg.UploadDir)
	reportHandler := handlers.NewReportHandler(reportService)
	fileHandler := &handlers.FileHandler{UploadDir: cfg.UploadDir}

	// Approval state machine
	rg.POST("/purchases/:id/approve", ledgerHandler.ApprovePurchase)
	rg.POST("/purchases/:id/cancel", ledgerHandler.CancelPurchase)
	rg.DELETE("/purchases/:id", ledgerHandler.DeletePurchase)
	rg.POST("/multi-purchases/:id/approve", ledgerHandler.ApproveMultiPurchase)
	rg.POST("/multi-purchases/:id/cancel", ledgerHandler.CancelMultiPurchase)
	rg.DELETE("/multi-purchases/:id", ledgerHandler.DeleteMultiPurchase)

	// Team administration
	rg.PUT("/teams/:id/budget", ledgerHandler.SetBudget)
	rg.PUT("/teams/:id/leader", intakeHandler.UpdateTeamLeader)
	rg.GET("/teams/:id/summary", ledgerHandler.TeamSummary)

	// Other requests (no ledger effect)
	rg.POST("/other-requests/:id/approve", intakeHandler.ApproveOtherRequest)
	rg.DELETE("/other-requests/:id", intakeHandler.DeleteOtherRequest)

	// Reporting
	rg.GET("/dashboard", reportHandler.Dashboard)
	rg.GET("/summary", ledgerHandler.GlobalSummary)
	rg.GET("/requests/pending", ledgerHandler.ListPending)
	rg.GET("/requests/approved", ledgerHandler.ListApproved)
	rg.GET("/export.csv", reportHandler.ExportCSV)
	rg.GET("/teams/:id/export.csv", reportHandler.ExportTeamCSV)
	rg.GET("/files/:filename", fileHandler.Download)

	// Live ledger feed for open dashboards
	rg.GET("/ws/ledger", ws.HandleWS)
}
