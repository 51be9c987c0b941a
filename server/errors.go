package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/devplatform/social-backend/utils"
	Logger "github.com/devplatform/social-backend/utils/log"
)

// respondError maps the error taxonomy to HTTP statuses and emits the
// stable {code, msg} payload. Causes stay in the server log, they never
// cross the boundary.
func respondError(c *gin.Context, err error) {
	kind := utils.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case utils.KindValidation:
		status = http.StatusBadRequest
	case utils.KindNotFound:
		status = http.StatusNotFound
	case utils.KindUnauthorized:
		status = http.StatusForbidden
	case utils.KindConflict:
		status = http.StatusConflict
	case utils.KindUpstream:
		status = http.StatusBadGateway
	}

	msg := "internal server error"
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Msg
	}
	if status >= http.StatusInternalServerError {
		Logger.LogV2.Errorf("request failed", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{
		"code": string(kind),
		"msg":  msg,
	})
}
