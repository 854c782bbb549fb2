package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/schemas"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/service"
)

type AdminController struct {
	Service *service.KioskService
}

func NewAdminController(svc *service.KioskService) *AdminController {
	return &AdminController{Service: svc}
}

// @Summary List all live sessions
// @Tags admin
// @Produce json
// @Success 200 {array} models.Session
// @Router /admin/sessions [get]
func (ac *AdminController) ListSessions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, ac.Service.ListSessions())
}

// @Summary List printer inventories
// @Tags admin
// @Produce json
// @Success 200 {array} models.Printer
// @Router /admin/printers [get]
func (ac *AdminController) ListPrinters(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"printers": ac.Service.Printers(),
		"state":    ac.Service.PrinterState(),
	})
}

// @Summary Get one printer's inventory
// @Tags admin
// @Produce json
// @Param id path string true "Printer ID"
// @Success 200 {object} models.Printer
// @Failure 404 {object} schemas.ErrorResponse
// @Router /admin/printers/{id} [get]
func (ac *AdminController) GetPrinter(ctx *gin.Context) {
	id := ctx.Param("id")
	p, err := ac.Service.PrinterStatus(id)
	if err != nil {
		respondError(ctx, err, "/admin/printers/"+id)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// @Summary Refill printer consumables
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Printer ID"
// @Param ResetPrinterRequest body schemas.ResetPrinterRequest true "New levels; omitted fields keep their value"
// @Success 200 {object} models.Printer
// @Failure 404 {object} schemas.ErrorResponse
// @Router /admin/printers/{id}/reset [post]
func (ac *AdminController) ResetPrinter(ctx *gin.Context) {
	id := ctx.Param("id")
	instance := "/admin/printers/" + id + "/reset"

	var req schemas.ResetPrinterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, schemas.NewBadRequestError(
			"Invalid JSON format: "+err.Error(), instance))
		return
	}

	p, err := ac.Service.ResetPrinter(id, req.PaperCount, req.BlackInkLevel, req.ColorInkLevel)
	if err != nil {
		respondError(ctx, err, instance)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// @Summary Enable or disable the kiosk
// @Tags admin
// @Accept json
// @Produce json
// @Param MachineToggleRequest body schemas.MachineToggleRequest true "Desired state"
// @Success 200 {object} schemas.MachineStatusResponse
// @Router /admin/machine [post]
func (ac *AdminController) ToggleMachine(ctx *gin.Context) {
	var req schemas.MachineToggleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		ctx.JSON(http.StatusBadRequest, schemas.NewBadRequestError(
			"body must carry an enabled flag", "/admin/machine"))
		return
	}

	ac.Service.SetEnabled(*req.Enabled)
	ctx.JSON(http.StatusOK, schemas.MachineStatusResponse{Enabled: ac.Service.Enabled()})
}

// @Summary Report kiosk admission state
// @Tags admin
// @Produce json
// @Success 200 {object} schemas.MachineStatusResponse
// @Router /admin/machine [get]
func (ac *AdminController) MachineStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, schemas.MachineStatusResponse{Enabled: ac.Service.Enabled()})
}

// @Summary Reset the machine
// @Description Cancels any pending print task, clears all sessions and forces the printer to IDLE
// @Tags admin
// @Produce json
// @Success 200 {object} schemas.MessageResponse
// @Router /admin/reset [post]
func (ac *AdminController) ResetMachine(ctx *gin.Context) {
	cleared := ac.Service.ResetMachine()
	ctx.JSON(http.StatusOK, gin.H{
		"message":          "Machine reset",
		"sessions_cleared": cleared,
	})
}

// @Summary Query the print-job audit trail
// @Tags admin
// @Produce json
// @Param printer_id query string false "Filter by printer"
// @Param date query string false "Filter by day (YYYY-MM-DD)"
// @Success 200 {array} models.PrintJobRecord
// @Failure 400 {object} schemas.ErrorResponse
// @Router /admin/audit [get]
func (ac *AdminController) AuditReport(ctx *gin.Context) {
	printerID := ctx.Query("printer_id")

	var day *time.Time
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, schemas.NewBadRequestError(
				"date must be YYYY-MM-DD", "/admin/audit"))
			return
		}
		day = &parsed
	}

	records, err := ac.Service.AuditReport(ctx.Request.Context(), printerID, day)
	if err != nil {
		respondError(ctx, err, "/admin/audit")
		return
	}
	if records == nil {
		records = []models.PrintJobRecord{}
	}
	ctx.JSON(http.StatusOK, records)
}
