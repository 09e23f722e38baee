package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/middleware"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/service"
)

// userMessage 把 service 层错误转换为展示给用户的消息。
func userMessage(err error) string {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, service.ErrAuthenticationFailed):
		return "Usuário ou senha incorretos."
	case errors.Is(err, service.ErrForbidden):
		return "Acesso negado."
	case errors.Is(err, service.ErrSelfDemotion):
		return "Você não pode remover seus próprios privilégios de admin."
	case errors.Is(err, service.ErrPurgeDenied):
		return "Senha de confirmação incorreta!"
	case errors.Is(err, service.ErrProductNotFound):
		return "Produto não encontrado."
	case errors.Is(err, service.ErrRecordNotFound):
		return "Registro não encontrado."
	case errors.Is(err, service.ErrUserNotFound):
		return "Usuário não encontrado."
	default:
		return "Ocorreu um erro inesperado. Tente novamente."
	}
}

// HandleServiceError 处理非表单场景的错误：资源不存在时显示 404 页面，
// 其他错误写入提示后重定向到 fallback。
func HandleServiceError(c *gin.Context, err error, fallback string) {
	if service.IsNotFound(err) {
		renderNotFound(c, userMessage(err))
		return
	}
	if errors.Is(err, service.ErrInternalServer) {
		_ = c.Error(err)
	}
	middleware.AddFlash(c, middleware.FlashError, userMessage(err))
	c.Redirect(http.StatusFound, fallback)
}

func renderNotFound(c *gin.Context, message string) {
	render(c, http.StatusNotFound, "erro.tmpl", gin.H{
		"Title":   "Página não encontrada",
		"Status":  http.StatusNotFound,
		"Message": message,
	})
}

// msgInvalidForm 是请求体或查询参数无法解析时显示的提示。
const msgInvalidForm = "Dados do formulário inválidos."

// formStatus 是表单校验失败后重新渲染页面使用的状态码。
func formStatus(err error) int {
	if service.IsValidation(err) || errors.Is(err, service.ErrAuthenticationFailed) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NotFound 是未匹配路由的处理函数
func NotFound(c *gin.Context) {
	renderNotFound(c, "Página não encontrada.")
}
