package controller

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/middleware"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/schemas"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/service"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/session"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/utils"
)

type SessionController struct {
	Service  *service.KioskService
	AdminKey string
}

func NewSessionController(svc *service.KioskService, adminKey string) *SessionController {
	return &SessionController{
		Service:  svc,
		AdminKey: adminKey,
	}
}

// @Summary Upload a document
// @Description Stores the uploaded document, counts its pages and opens a payment session
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to print"
// @Success 201 {object} schemas.UploadResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 415 {object} schemas.ErrorResponse
// @Router /upload [post]
func (sc *SessionController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, schemas.NewBadRequestError(
			"missing multipart file field: "+err.Error(), "/upload"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.SendError(ctx, http.StatusInternalServerError, "Internal Server Error",
			"failed to read upload: "+err.Error(),
			"https://securepaytoprint.com/errors/500", "/upload")
		return
	}
	defer f.Close()

	sess, err := sc.Service.CreateSession(f, fileHeader.Filename)
	if err != nil {
		respondError(ctx, err, "/upload")
		return
	}

	ctx.JSON(http.StatusCreated, schemas.UploadResponse{
		SessionID:   sess.SessionID,
		PageCount:   sess.PageCount,
		Amount:      sc.Service.Quote(sess),
		ColorAmount: sc.Service.ColorQuote(sess),
	})
}

// @Summary Get session status
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 404 {object} schemas.ErrorResponse
// @Router /sessions/{id} [get]
func (sc *SessionController) GetSession(ctx *gin.Context) {
	id := ctx.Param("id")
	sess, err := sc.Service.GetSession(id)
	if err != nil {
		respondError(ctx, err, "/sessions/"+id)
		return
	}
	ctx.JSON(http.StatusOK, sess)
}

// @Summary Confirm payment
// @Description Records the externally confirmed charge for a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param ConfirmPaymentRequest body schemas.ConfirmPaymentRequest true "Confirmed amount"
// @Success 200 {object} models.Session
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Router /sessions/{id}/payment [post]
func (sc *SessionController) ConfirmPayment(ctx *gin.Context) {
	id := ctx.Param("id")
	instance := "/sessions/" + id + "/payment"

	var req schemas.ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "error", err.Error())
		ctx.JSON(http.StatusBadRequest, schemas.NewBadRequestError(
			"Invalid JSON format: "+err.Error(), instance))
		return
	}

	sess, err := sc.Service.ConfirmPayment(id, req.Amount)
	if err != nil {
		respondError(ctx, err, instance)
		return
	}
	ctx.JSON(http.StatusOK, sess)
}

// @Summary Start printing
// @Description Admits a paid session to the printer. A paper shortfall returns a 409 warning unless force is set or the caller holds the admin key.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param StartPrintRequest body schemas.StartPrintRequest true "Job options"
// @Success 200 {object} schemas.StartPrintResponse
// @Failure 402 {object} schemas.ErrorResponse
// @Failure 409 {object} schemas.ShortfallResponse
// @Failure 503 {object} schemas.ErrorResponse
// @Router /sessions/{id}/print [post]
func (sc *SessionController) StartPrint(ctx *gin.Context) {
	id := ctx.Param("id")
	instance := "/sessions/" + id + "/print"

	var req schemas.StartPrintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "error", err.Error())
		ctx.JSON(http.StatusBadRequest, schemas.NewBadRequestError(
			"Invalid JSON format: "+err.Error(), instance))
		return
	}

	opts := session.JobOptions{
		Copies:    req.Copies,
		PrintMode: models.PrintMode(req.PrintMode),
		ColorMode: models.InkType(req.ColorMode),
	}
	privileged := middleware.IsPrivileged(ctx, sc.AdminKey)

	res, err := sc.Service.StartPrint(id, opts, req.Force, privileged)
	if err != nil {
		respondError(ctx, err, instance)
		return
	}

	if !res.Admitted {
		ctx.JSON(http.StatusConflict, schemas.ShortfallResponse{
			Warning: fmt.Sprintf("only %d of %d pages can be printed; re-submit with force to proceed",
				res.Feasibility.PagesAllowed, res.Feasibility.PagesAllowed+res.Feasibility.Shortfall),
			PagesAllowed: res.Feasibility.PagesAllowed,
			Shortfall:    res.Feasibility.Shortfall,
		})
		return
	}

	ctx.JSON(http.StatusOK, schemas.StartPrintResponse{
		Message:      "Print job started",
		SessionID:    id,
		PrinterID:    res.PrinterID,
		PagesAllowed: res.Feasibility.PagesAllowed,
		Shortfall:    res.Feasibility.Shortfall,
	})
}

// @Summary Finish printing
// @Description Completes the active job early, or cleans up a finished session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Session
// @Failure 404 {object} schemas.ErrorResponse
// @Failure 409 {object} schemas.ErrorResponse
// @Router /sessions/{id}/finish [post]
func (sc *SessionController) FinishPrint(ctx *gin.Context) {
	id := ctx.Param("id")
	sess, err := sc.Service.FinishPrint(id)
	if err != nil {
		respondError(ctx, err, "/sessions/"+id+"/finish")
		return
	}
	ctx.JSON(http.StatusOK, sess)
}

// @Summary Cancel a session
// @Description Removes the session and deletes its file; rejected while printing
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} schemas.MessageResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Failure 409 {object} schemas.ErrorResponse
// @Router /sessions/{id} [delete]
func (sc *SessionController) CancelSession(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := sc.Service.CancelSession(id); err != nil {
		respondError(ctx, err, "/sessions/"+id)
		return
	}
	ctx.JSON(http.StatusOK, schemas.MessageResponse{
		Message:   "Session cancelled",
		SessionID: id,
	})
}
