package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/ITI-GP-2025/examination-service/internal/config"
	"github.com/ITI-GP-2025/examination-service/internal/models"
	"github.com/ITI-GP-2025/examination-service/internal/utils"
)

const identityContextKey = "identity"

// AuthMiddleware verifies the caller's Casdoor token and stores the
// resolved Identity in the request context. The service trusts the token's
// role and entity bindings; ownership is re-checked in the services.
type AuthMiddleware struct {
	client *casdoorsdk.Client
	logger utils.Logger
}

func NewAuthMiddleware(cfg *config.Config, logger utils.Logger) *AuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &AuthMiddleware{client: client, logger: logger}
}

// Authenticate parses the bearer token and attaches the caller identity.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
			})
			return
		}

		claims, err := m.client.ParseJwtToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.Warn("Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}

		identity := identityFromClaims(claims)
		if identity.Role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Token carries no recognized role",
			})
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// identityFromClaims maps the Casdoor user onto the engine's caller model.
// The role lives in the user tag; student/instructor entity ids are user
// properties maintained by the enrollment system.
func identityFromClaims(claims *casdoorsdk.Claims) models.Identity {
	identity := models.Identity{
		UserID: claims.User.Id,
		Role:   models.Role(claims.User.Tag),
	}
	if raw, ok := claims.User.Properties["student_id"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			sid := uint(id)
			identity.StudentID = &sid
		}
	}
	if raw, ok := claims.User.Properties["instructor_id"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			iid := uint(id)
			identity.InstructorID = &iid
		}
	}
	return identity
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Not authenticated",
			})
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: "role " + string(identity.Role) + " is not allowed here",
		})
	}
}

// GetIdentity returns the authenticated caller identity, if any.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}
