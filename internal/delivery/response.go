package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
	Errors  interface{} `json:"Errors,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// ValidationResponse answers 422 with the per-field violations and echoes
// the submitted input back so a client can redisplay it.
func ValidationResponse(c *gin.Context, errs domain.ValidationErrors, input interface{}) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		Status:  "Fail",
		Message: "Validation failed",
		Data:    input,
		Errors:  errs,
	})
}

func mapErrorToStatus(err error) int {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrCategoryInUse),
		errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConstraint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are not
// echoed to the client.
func respondError(c *gin.Context, prefix string, err error, input interface{}) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		ValidationResponse(c, verrs, input)
		return
	}
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		ErrorResponse(c, status, prefix+": internal server error")
		return
	}
	ErrorResponse(c, status, prefix+": "+rootMessage(err))
}

// rootMessage returns the message of the first domain sentinel in err's chain.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrConflict, domain.ErrCategoryInUse, domain.ErrDuplicateSKU, domain.ErrDuplicateEmail,
		domain.ErrInvalidCredentials, domain.ErrUnauthorized, domain.ErrForbidden,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func parseID(c *gin.Context) (int64, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id %q: %w", idStr, domain.ErrInvalidID)
	}
	return id, nil
}

func isFormPost(c *gin.Context) bool {
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

// respondWrite answers a successful mutation: forms get redirect-after-post,
// everything else the JSON envelope.
func respondWrite(c *gin.Context, status int, message, redirectTo string, data interface{}) {
	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, redirectTo)
		return
	}
	SuccessResponse(c, status, message, data)
}

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// expectedVersion reads If-Match when present, otherwise falls back to the
// version submitted in the body.
func expectedVersion(c *gin.Context, bodyVersion int64) (int64, error) {
	ifMatch := strings.TrimSpace(c.GetHeader("If-Match"))
	if ifMatch == "" {
		if bodyVersion <= 0 {
			return 0, domain.NewFieldError("version", "is required")
		}
		return bodyVersion, nil
	}
	ifMatch = strings.Trim(strings.TrimPrefix(ifMatch, "W/"), `"`)
	v, err := strconv.ParseInt(ifMatch, 10, 64)
	if err != nil || v <= 0 {
		return 0, domain.NewFieldError("version", "If-Match must carry a version")
	}
	return v, nil
}
