package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loan-portal-api/internal/authz"
	"loan-portal-api/internal/domain"
	"loan-portal-api/internal/middleware"
	"loan-portal-api/internal/response"
)

// currentActor builds the authz actor from the authenticated session. Returns
// false (after writing the response) when the auth middleware did not run.
func currentActor(c *gin.Context) (authz.Actor, bool) {
	rawID, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Not authenticated")
		return authz.Actor{}, false
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Not authenticated")
		return authz.Actor{}, false
	}

	rawRole, exists := c.Get(middleware.CtxUserRole)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Not authenticated")
		return authz.Actor{}, false
	}
	role, ok := rawRole.(domain.Role)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Not authenticated")
		return authz.Actor{}, false
	}

	return authz.Actor{UserID: userID, Role: role}, true
}

// pathUUID parses a UUID path parameter, writing a 400 on failure
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional UUID query parameter. The bool reports
// whether parsing succeeded; an absent parameter yields (nil, true).
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+name)
		return nil, false
	}
	return &id, true
}
