package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 提示消息的类别，对应页面上的样式
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashCookie    = "avarias_flash"
	flashKey       = "flash_pending"
	flashSecureKey = "flash_secure"
)

// Flashes 返回一个 Gin 中间件，决定提示 cookie 是否带 Secure 标记，
// 与会话 cookie 保持一致 (生产环境为 true)。需要注册在所有会写提示的中间件之前。
func Flashes(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(flashSecureKey, secure)
		c.Next()
	}
}

// Flash 是一条跨重定向显示一次的提示消息。
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AddFlash 追加一条提示，下一次渲染页面时显示。
func AddFlash(c *gin.Context, category, message string) {
	var pending []Flash
	if v, ok := c.Get(flashKey); ok {
		pending = v.([]Flash)
	}
	pending = append(pending, Flash{Category: category, Message: message})
	c.Set(flashKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		logrus.WithError(err).Error("Flash: failed to encode messages")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 0, "/", "", c.GetBool(flashSecureKey), true)
}

// PopFlashes 读取并清除上一个请求留下的提示。
func PopFlashes(c *gin.Context) []Flash {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", c.GetBool(flashSecureKey), true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		logrus.WithError(err).Debug("Flash: discarding undecodable cookie")
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		logrus.WithError(err).Debug("Flash: discarding malformed cookie")
		return nil
	}
	return flashes
}
