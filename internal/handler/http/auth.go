package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/middleware"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/service"
)

// DashboardPath 是登录后的默认页面。
const DashboardPath = "/admin"

// AuthHandler 封装了与用户认证相关的 HTTP 处理逻辑
type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
}

// NewAuthHandler 创建 AuthHandler 实例。secureCookies 在生产环境为 true。
func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

// LoginPage 显示登录表单，已登录时直接进入后台
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, DashboardPath)
		return
	}
	render(c, http.StatusOK, "auth_login.tmpl", gin.H{"Title": "Login"})
}

// Login 处理登录表单
func (h *AuthHandler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, DashboardPath)
		return
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Login: Invalid input format")
		render(c, http.StatusBadRequest, "auth_login.tmpl", gin.H{"Title": "Login"}, errorFlash(msgInvalidForm))
		return
	}

	user, session, err := h.authService.Login(c.Request.Context(), req.Username, req.Password, req.RememberMe != "")
	if err != nil {
		render(c, formStatus(err), "auth_login.tmpl", gin.H{"Title": "Login", "Form": req}, errorFlash(userMessage(err)))
		return
	}

	middleware.SetSessionCookie(c, session.Token, session.ExpiresAt, session.Persistent, h.secureCookies)

	next := middleware.SafeNext(c.Query("next"))
	if next == "" {
		next = DashboardPath
	}
	redirectWith(c, middleware.FlashSuccess, fmt.Sprintf("Bem-vindo, %s!", user.Username), next)
}

// Logout 清除会话
func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	middleware.ClearSessionCookie(c, h.secureCookies)
	logrus.WithField("user_id", user.ID).Info("Handler.Logout: User logged out")
	redirectWith(c, middleware.FlashInfo, fmt.Sprintf("Logout realizado com sucesso. Até logo, %s!", user.Username), "/")
}

func (h *AuthHandler) registerData(c *gin.Context, req RegisterRequest) (gin.H, error) {
	adminExists, err := h.authService.AdminExists(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return gin.H{"Title": "Registro", "AdminExists": adminExists, "Form": req}, nil
}

// RegisterPage 显示注册表单。还没有管理员时显示管理员密钥输入框
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	data, err := h.registerData(c, RegisterRequest{})
	if err != nil {
		HandleServiceError(c, err, "/")
		return
	}
	render(c, http.StatusOK, "auth_register.tmpl", data)
}

// Register 处理注册表单
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Register: Invalid input format")
		data, dataErr := h.registerData(c, RegisterRequest{})
		if dataErr != nil {
			HandleServiceError(c, dataErr, "/")
			return
		}
		render(c, http.StatusBadRequest, "auth_register.tmpl", data, errorFlash(msgInvalidForm))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Confirm:  req.ConfirmPassword,
		AdminKey: req.AdminKey,
	})
	if err != nil {
		data, dataErr := h.registerData(c, RegisterRequest{Username: req.Username, Email: req.Email})
		if dataErr != nil {
			HandleServiceError(c, dataErr, "/")
			return
		}
		render(c, formStatus(err), "auth_register.tmpl", data, errorFlash(userMessage(err)))
		return
	}

	message := "Usuário criado com sucesso!"
	if user.IsAdmin {
		message = "Primeiro admin criado com sucesso!"
	}
	redirectWith(c, middleware.FlashSuccess, message, middleware.LoginPath)
}

// ChangePasswordPage 显示修改密码表单
func (h *AuthHandler) ChangePasswordPage(c *gin.Context) {
	render(c, http.StatusOK, "auth_change_password.tmpl", gin.H{"Title": "Alterar Senha"})
}

// ChangePassword 处理修改密码表单
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.ChangePassword: Invalid input format")
		render(c, http.StatusBadRequest, "auth_change_password.tmpl", gin.H{"Title": "Alterar Senha"}, errorFlash(msgInvalidForm))
		return
	}

	user := middleware.CurrentUser(c)
	err := h.authService.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		render(c, formStatus(err), "auth_change_password.tmpl", gin.H{"Title": "Alterar Senha"}, errorFlash(userMessage(err)))
		return
	}
	redirectWith(c, middleware.FlashSuccess, "Senha alterada com sucesso!", DashboardPath)
}
