package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"order-management-service/internal/auth"
	"order-management-service/pkg/ctxmanage"
	"order-management-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

type Mid struct {
	keys *auth.Keys
}

func NewMid(keys *auth.Keys) (*Mid, error) {
	if keys == nil {
		return nil, fmt.Errorf("auth keys are nil")
	}
	return &Mid{keys: keys}, nil
}

// Authentication rejects the request with 401 unless a valid bearer token is
// presented, and stores the verified claims in the request context.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		claims, err := m.claimsFromHeader(c)
		if err != nil {
			slog.Error("authentication failed", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.Error, err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided or are invalid."})
			return
		}

		ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthenticationOptional stores claims in the request context when a valid bearer
// token is presented, and lets the request through anonymously otherwise. Used on
// endpoints that are open to anonymous callers but stamp ownership when they can.
func (m *Mid) AuthenticationOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.claimsFromHeader(c)
		if err == nil {
			ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func (m *Mid) claimsFromHeader(c *gin.Context) (auth.Claims, error) {
	header := c.Request.Header.Get("Authorization")
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.Claims{}, fmt.Errorf("expected authorization header format: Bearer <token>")
	}
	return m.keys.ValidateToken(parts[1])
}
