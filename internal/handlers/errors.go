package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-pagamentocerto/internal/payerr"
)

// writeError maps payment errors to HTTP statuses. Errors outside payerr get
// fallbackStatus.
func writeError(c *gin.Context, err error, fallbackStatus int) {
	var pe *payerr.Error
	if !errors.As(err, &pe) {
		c.JSON(fallbackStatus, gin.H{"error": errorCode(fallbackStatus), "msg": err.Error()})
		return
	}

	status := http.StatusBadRequest
	switch pe.Kind {
	case payerr.KindProductValueMismatch, payerr.KindNoProducts:
		status = http.StatusUnprocessableEntity
	case payerr.KindGatewayRejected:
		status = http.StatusBadGateway
	}

	body := gin.H{"error": pe.Kind.String(), "msg": pe.Message}
	if pe.Kind == payerr.KindGatewayRejected {
		body["code"] = pe.Code
	}
	c.JSON(status, body)
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadGateway:
		return "gateway_unavailable"
	case http.StatusServiceUnavailable:
		return "enqueue_failed"
	default:
		return "internal_error"
	}
}
