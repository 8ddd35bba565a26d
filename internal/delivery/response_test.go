package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NewFieldError("name", "is required"), http.StatusUnprocessableEntity},
		{fmt.Errorf("material with id 3: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrConflict), http.StatusConflict},
		{domain.ErrCategoryInUse, http.StatusConflict},
		{domain.ErrDuplicateSKU, http.StatusConflict},
		{domain.ErrInvalidID, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapErrorToStatus(tc.err), tc.err.Error())
	}
}

func TestExpectedVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	newCtx := func(ifMatch string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPut, "/", nil)
		if ifMatch != "" {
			c.Request.Header.Set("If-Match", ifMatch)
		}
		return c
	}

	v, err := expectedVersion(newCtx(`W/"7"`), 3)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, v)

	v, err = expectedVersion(newCtx(""), 3)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, v)

	_, err = expectedVersion(newCtx(""), 0)
	assert.Error(t, err)

	_, err = expectedVersion(newCtx(`"abc"`), 3)
	assert.Error(t, err)
}
