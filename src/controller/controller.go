package controller

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/schemas"
)

// respondError translates domain sentinel errors into RFC 7807 responses.
// Handlers never build error bodies themselves.
func respondError(ctx *gin.Context, err error, instance string) {
	var resp *schemas.ErrorResponse

	switch {
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrPrinterNotFound):
		resp = schemas.NewNotFoundError(err.Error(), instance)
	case errors.Is(err, models.ErrPaymentRequired):
		resp = schemas.NewPaymentRequiredError(err.Error(), instance)
	case errors.Is(err, models.ErrPrinterBusy):
		resp = schemas.PrinterBusyError(err.Error(), instance)
	case errors.Is(err, models.ErrAlreadyPrinting),
		errors.Is(err, models.ErrSessionPrinting),
		errors.Is(err, models.ErrNotPrintable):
		resp = schemas.NewConflictError(err.Error(), instance)
	case errors.Is(err, models.ErrMachineDisabled):
		resp = schemas.NewServiceUnavailableError(err.Error(), instance)
	case errors.Is(err, models.ErrUnsupportedFile):
		resp = schemas.NewUnsupportedMediaTypeError(err.Error(), instance)
	case errors.Is(err, models.ErrAmountMismatch),
		errors.Is(err, models.ErrEmptyFile),
		errors.Is(err, models.ErrTooManyPages):
		resp = schemas.NewBadRequestError(err.Error(), instance)
	default:
		slog.Error("Unhandled service error", "instance", instance, "error", err)
		resp = schemas.NewInternalError(err.Error(), instance)
	}

	ctx.JSON(resp.Status, resp)
}
