package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the HS256 access token issued by the identity
// provider and loads the caller. The token is read from the Authorization
// header, the auth_token cookie or, for websocket upgrades, the token query
// parameter.
func AuthMiddleware(jwtSecret string, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required")
			return
		}

		claims, err := ParseToken(jwtSecret, tokenString)
		if err != nil {
			logger.Log.Debug("Token validation failed", "error", err)
			response.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Abort(c, http.StatusUnauthorized, "Invalid claims")
			return
		}

		ctx := c.Request.Context()
		// Fetch fresh user data from DB to get the correct Role.
		// The token role only seeds a first-time user.
		user, err := authUC.GetCurrentUser(ctx, sub)
		if apperror.CodeOf(err) == http.StatusNotFound {
			name, _ := claims["name"].(string)
			role, _ := claims["role"].(string)
			seed := &domain.User{ID: sub, Email: email, Name: name, Role: role}
			if err = authUC.EnsureUserExists(ctx, seed); err == nil {
				user, err = authUC.GetCurrentUser(ctx, sub)
			}
		}
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
			} else {
				logger.Log.Error("Failed to load authenticated user", "user_id", sub, "error", err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
			c.Abort()
			return
		}

		role := user.Role
		if role == "" {
			role = domain.RoleCandidate // Fallback
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), role)

		c.Next()
	}
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret, tokenString string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func tokenFromRequest(c *gin.Context) string {
	// 1. Try to get token from Header
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	// 2. Try to get token from Cookie
	if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
		return cookie
	}
	// 3. Browsers cannot set headers on websocket upgrades
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}

// CurrentPrincipal returns the caller set by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) domain.Principal {
	return domain.Principal{
		ID:   c.GetString(string(domain.KeyUserID)),
		Role: c.GetString(string(domain.KeyUserRole)),
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "User not authenticated")
			return
		}
		if !allowed[role] {
			response.Abort(c, http.StatusForbidden, "You don't have permission to access this resource")
			return
		}
		c.Next()
	}
}
