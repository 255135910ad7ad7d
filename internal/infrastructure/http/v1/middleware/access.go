package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
)

// MaxBodyBytes bounds request bodies read by RequireStoreAccess.
const MaxBodyBytes = 1 << 20

// StoreAccessChecker decides whether the caller may act on a store.
type StoreAccessChecker interface {
	RequireStoreAccess(ctx context.Context, storeID id.ID) error
}

// RequireStoreAccess lets admins through and checks that employees may use
// the store named by store_id, taken from the path, the JSON body or the
// query (in that order).
func RequireStoreAccess(checker StoreAccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortWith(c, apperror.NewUnauthorized("authentication required"))
			return
		}
		if user.IsAdmin() {
			c.Next()
			return
		}

		raw, err := storeIDParam(c)
		if err != nil {
			abortWith(c, err)
			return
		}
		if raw == "" {
			abortWith(c, apperror.NewInvalidInput("store_id", "store_id is required"))
			return
		}
		storeID, err := id.Parse(raw)
		if err != nil {
			abortWith(c, apperror.NewInvalidInput("store_id", "store_id must be a valid id"))
			return
		}
		if err := checker.RequireStoreAccess(c.Request.Context(), storeID); err != nil {
			abortWith(c, err)
			return
		}
		c.Next()
	}
}

// storeIDParam reads store_id. The JSON body is cached by gin so handlers can
// bind it again with ShouldBindBodyWith.
func storeIDParam(c *gin.Context) (string, error) {
	if v := strings.TrimSpace(c.Param("store_id")); v != "" {
		return v, nil
	}
	if c.Request.Body != nil && c.Request.Body != http.NoBody && strings.Contains(c.ContentType(), "json") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

		var peek struct {
			StoreID string `json:"store_id"`
		}
		err := c.ShouldBindBodyWith(&peek, binding.JSON)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", apperror.NewValidation("request body too large").WithDetail("limit_bytes", MaxBodyBytes)
		}
		if err == nil && strings.TrimSpace(peek.StoreID) != "" {
			return strings.TrimSpace(peek.StoreID), nil
		}
	}
	return strings.TrimSpace(c.Query("store_id")), nil
}
