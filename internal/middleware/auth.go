package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// SessionCookie 是保存会话 JWT 的 cookie 名称。
const SessionCookie = "avarias_session"

// LoginPath 是未登录访问受保护页面时跳转的地址。
const LoginPath = "/auth/login"

const currentUserKey = "current_user"

// UserLoader 根据会话中的用户 ID 加载用户。
type UserLoader interface {
	FindUser(ctx context.Context, id uint) (*domain.User, error)
}

// Session 返回一个 Gin 中间件，从 cookie 中解析会话并把当前用户放入上下文。
// 没有会话或会话无效时请求照常继续，由 RequireLogin 决定是否拦截。
func Session(jwtSecret string, users UserLoader) gin.HandlerFunc {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Session middleware")
	}
	if users == nil {
		panic("UserLoader cannot be nil for Session middleware")
	}

	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			c.Next()
			return
		}

		claims, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			logCtx := logrus.WithError(err)
			var validationError *jwt.ValidationError
			if errors.As(err, &validationError) && validationError.Errors&jwt.ValidationErrorExpired != 0 {
				logCtx.Debug("Session middleware: Token is expired")
			} else {
				logCtx.Warn("Session middleware: Invalid token")
			}
			c.Next()
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			logrus.WithError(err).Warn("Session middleware: Bad user_id claim")
			c.Next()
			return
		}

		user, err := users.FindUser(c.Request.Context(), userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Session middleware: User of session not loadable")
			c.Next()
			return
		}

		c.Set(currentUserKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// CurrentUser 返回当前登录的用户，未登录时为 nil。
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// RequireLogin 把未登录的请求重定向到登录页，并通过 next 参数记住原地址。
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		AddFlash(c, FlashInfo, "Por favor, faça login para acessar esta página.")
		c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RequireAdmin 只允许管理员继续，需要放在 RequireLogin 之后。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user != nil && user.IsAdmin {
			c.Next()
			return
		}
		AddFlash(c, FlashError, "Acesso negado. Apenas administradores podem gerenciar usuários.")
		c.Redirect(http.StatusFound, "/admin")
		c.Abort()
	}
}

// SafeNext 只接受站内的相对路径，其他情况返回空字符串。
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

// SetSessionCookie 写入会话 cookie。persistent 为 false 时是浏览器会话 cookie。
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, persistent, secure bool) {
	maxAge := 0
	if persistent {
		maxAge = int(time.Until(expiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie 删除会话 cookie。
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

// userIDFromClaims JWT 数字默认为 float64，需要安全转换为 uint
func userIDFromClaims(claims jwt.MapClaims) (uint, error) {
	userIDClaim, ok := claims["user_id"]
	if !ok {
		return 0, errors.New("'user_id' claim missing in token")
	}
	userIDFloat, ok := userIDClaim.(float64)
	if !ok || userIDFloat <= 0 || userIDFloat != float64(uint(userIDFloat)) {
		return 0, fmt.Errorf("'user_id' claim is not a valid positive integer number: %v", userIDClaim)
	}
	return uint(userIDFloat), nil
}

// validateToken 解析并验证 JWT token 字符串
func validateToken(tokenStr string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}
