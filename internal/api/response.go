package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carbonmarket/ledger-backend/internal/core"
)

// respondError maps an engine failure to an HTTP status plus its wire code.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidProject),
		errors.Is(err, core.ErrCreditNotFound),
		errors.Is(err, core.ErrListingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrOwnerOnly),
		errors.Is(err, core.ErrNotTokenOwner),
		errors.Is(err, core.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrMarketplacePaused),
		errors.Is(err, core.ErrReentrancy),
		errors.Is(err, core.ErrCreditAlreadyRetired),
		errors.Is(err, core.ErrListingInactive),
		errors.Is(err, core.ErrInsufficientVerification):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidSensor),
		errors.Is(err, core.ErrInvalidPrice),
		errors.Is(err, core.ErrInvalidPrincipal),
		errors.Is(err, core.ErrInsufficientBalance):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  core.ErrorCode(err),
	})
}
