package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/rfp-manager/internal/extraction"
	"github.com/justsurfingit/rfp-manager/internal/services"
)

// Error kinds reported in the "kind" field of every error payload.
const (
	KindValidation         = "ValidationError"
	KindNotFound           = "NotFound"
	KindDataFormat         = "DataFormatError"
	KindMatcherUnavailable = "MatcherUnavailableError"
	KindTimeout            = "ExtractionTimeout"
	KindExtractionInternal = "ExtractionInternalError"
	KindUnavailable        = "ServiceUnavailable"
	KindUpstream           = "UpstreamError"
	KindInternal           = "InternalError"
	KindCanceled           = "Canceled"
)

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

// HTTPStatus maps an error to its status code and kind.
func HTTPStatus(err error) (int, string) {
	var (
		verr *extraction.ValidationError
		merr *extraction.MatcherUnavailableError
		terr *extraction.ExtractionTimeoutError
		ierr *extraction.ExtractionInternalError
		derr *extraction.DataFormatError
	)
	switch {
	case errors.As(err, &verr), errors.Is(err, services.ErrNoFieldsToUpdate):
		return http.StatusBadRequest, KindValidation
	case errors.Is(err, services.ErrRFPNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, extraction.ErrExtractorUnavailable), errors.As(err, &merr):
		return http.StatusServiceUnavailable, KindMatcherUnavailable
	case errors.As(err, &terr):
		return http.StatusGatewayTimeout, KindTimeout
	case errors.As(err, &ierr):
		return http.StatusInternalServerError, KindExtractionInternal
	case errors.As(err, &derr):
		return http.StatusUnprocessableEntity, KindDataFormat
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, KindCanceled
	case errors.Is(err, services.ErrMailerDisabled), errors.Is(err, services.ErrImportDisabled), errors.Is(err, services.ErrLLMDisabled):
		return http.StatusServiceUnavailable, KindUnavailable
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

func respondError(c *gin.Context, err error) {
	status, kind := HTTPStatus(err)
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

// respondBindError reports a request body that failed to bind or validate.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error(), "kind": KindValidation})
}

func respondUpstream(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadGateway, gin.H{"error": msg + ": " + err.Error(), "kind": KindUpstream})
}
