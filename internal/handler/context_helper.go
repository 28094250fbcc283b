package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/innovex/ideahub-api/internal/middleware"
	"github.com/innovex/ideahub-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func isModerator(claims *models.JWTClaims) bool {
	if claims == nil {
		return false
	}
	switch claims.Role {
	case models.RoleQACoordinator, models.RoleQAManager, models.RoleAdmin:
		return true
	}
	return false
}

func pageQuery(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, size
}

func boolQuery(c *gin.Context, key string) *bool {
	switch c.Query(key) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}
