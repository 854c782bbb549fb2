package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/config"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/controller"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/middleware"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/service"
)

// NewRouter sets up the kiosk's HTTP routes: the public upload-to-print
// surface and the key-guarded administrative panel.
func NewRouter(cfg *config.GlobalConfig, svc *service.KioskService) *gin.Engine {
	router := gin.Default()

	sessions := controller.NewSessionController(svc, cfg.AdminKey)
	admin := controller.NewAdminController(svc)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/upload", sessions.Upload)
	router.GET("/sessions/:id", sessions.GetSession)
	router.POST("/sessions/:id/payment", sessions.ConfirmPayment)
	router.POST("/sessions/:id/print", sessions.StartPrint)
	router.POST("/sessions/:id/finish", sessions.FinishPrint)
	router.DELETE("/sessions/:id", sessions.CancelSession)

	adminGroup := router.Group("/admin", middleware.AdminAuth(cfg.AdminKey))
	{
		adminGroup.GET("/sessions", admin.ListSessions)
		adminGroup.GET("/printers", admin.ListPrinters)
		adminGroup.GET("/printers/:id", admin.GetPrinter)
		adminGroup.POST("/printers/:id/reset", admin.ResetPrinter)
		adminGroup.GET("/machine", admin.MachineStatus)
		adminGroup.POST("/machine", admin.ToggleMachine)
		adminGroup.POST("/reset", admin.ResetMachine)
		adminGroup.GET("/audit", admin.AuditReport)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
