package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"boxstudio/internal/shared/config"
	"boxstudio/internal/shared/utils/response"
	"boxstudio/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ContextKeySubject holds the authenticated caller ("api-token" or the JWT subject)
const ContextKeySubject = "auth_subject"

const staticTokenSubject = "api-token"

// AdminClaims are the claims of an admin access token
type AdminClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Auth accepts either the static API token or an HS256 admin JWT
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "authorization header format must be Bearer {token}")
			return
		}
		token := strings.TrimSpace(parts[1])

		if cfg.APIToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cfg.APIToken)) == 1 {
			c.Set(ContextKeySubject, staticTokenSubject)
			c.Next()
			return
		}

		if cfg.JWTSecret == "" {
			unauthorized(c, "invalid token")
			return
		}

		claims, err := ParseAdminToken(cfg, token)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

func unauthorized(c *gin.Context, reason string) {
	logger.GetDefault().LogAuthFailure(c.Request.Context(), reason, c.ClientIP())
	response.RespondJSON(c, "error", http.StatusUnauthorized, "Unauthorized", nil, gin.H{"code": "unauthorized"})
	c.Abort()
}

// IssueAdminToken signs an access token for subject
func IssueAdminToken(cfg config.AuthConfig, subject string, now time.Time) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("AUTH_JWT_SECRET is not configured")
	}

	claims := AdminClaims{
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTExpiresIn)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseAdminToken validates signature, expiry, issuer and token type
func ParseAdminToken(cfg config.AuthConfig, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Type != "access" {
		return nil, errors.New("invalid token type")
	}
	if cfg.JWTIssuer != "" && !claims.VerifyIssuer(cfg.JWTIssuer, true) {
		return nil, errors.New("invalid token issuer")
	}
	return claims, nil
}

// HeaderRequestID carries the request id in and out
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID holds the request id for handlers
const ContextKeyRequestID = "request_id"

// RequestLoggerMiddleware tags each request with an id and logs it after it completes
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		log := logger.GetDefault().WithRequestID(requestID)
		if subject := c.GetString(ContextKeySubject); subject != "" {
			log = log.WithFields(map[string]interface{}{"subject": subject})
		}
		if len(c.Errors) > 0 {
			log.LogHTTPError(c, c.Errors.Last(), c.Writer.Status())
			return
		}
		log.LogHTTPRequest(c, time.Since(start))
	}
}
