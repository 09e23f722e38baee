package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/middleware"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/service"
)

// IntakeHandler 处理公开的损耗登记页面，不需要登录
type IntakeHandler struct {
	intakeService *service.IntakeService
}

// NewIntakeHandler 创建 IntakeHandler 实例
func NewIntakeHandler(intakeService *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

// Index 是首页，提供两种登记入口
func (h *IntakeHandler) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.tmpl", gin.H{"Title": "Registro de Avarias"})
}

// ProducePage 显示蔬果类登记表单
func (h *IntakeHandler) ProducePage(c *gin.Context) {
	render(c, http.StatusOK, "registro_hortifruti.tmpl", gin.H{"Title": "Avaria Hortifruti"})
}

// RegisterProduce 处理蔬果类登记
func (h *IntakeHandler) RegisterProduce(c *gin.Context) {
	var req ProduceRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.RegisterProduce: Invalid input format")
		render(c, http.StatusBadRequest, "registro_hortifruti.tmpl", gin.H{"Title": "Avaria Hortifruti"}, errorFlash(msgInvalidForm))
		return
	}
	page := gin.H{"Title": "Avaria Hortifruti", "Form": req}

	weight, ok := parseWeight(req.Weight)
	if !ok {
		render(c, http.StatusBadRequest, "registro_hortifruti.tmpl", page, errorFlash("Peso inválido."))
		return
	}

	record, err := h.intakeService.RegisterProduce(c.Request.Context(), service.ProduceIntake{
		Name:   req.ProductName,
		Weight: weight,
	})
	if err != nil {
		render(c, formStatus(err), "registro_hortifruti.tmpl", page, errorFlash(userMessage(err)))
		return
	}

	redirectWith(c, middleware.FlashSuccess,
		fmt.Sprintf("Avaria registrada com sucesso! Produto: %s, Peso: %skg",
			record.Product.Name, strconv.FormatFloat(*record.Weight, 'f', -1, 64)),
		"/")
}

// InternalPage 显示内部商品登记表单
func (h *IntakeHandler) InternalPage(c *gin.Context) {
	render(c, http.StatusOK, "registro_interno.tmpl", gin.H{"Title": "Avaria Uso Interno"})
}

// RegisterInternal 处理内部商品登记
func (h *IntakeHandler) RegisterInternal(c *gin.Context) {
	var req InternalRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.RegisterInternal: Invalid input format")
		render(c, http.StatusBadRequest, "registro_interno.tmpl", gin.H{"Title": "Avaria Uso Interno"}, errorFlash(msgInvalidForm))
		return
	}
	page := gin.H{"Title": "Avaria Uso Interno", "Form": req}

	quantity, ok := parseQuantity(req.Quantity)
	if !ok {
		render(c, http.StatusBadRequest, "registro_interno.tmpl", page, errorFlash("Quantidade inválida."))
		return
	}

	record, err := h.intakeService.RegisterInternal(c.Request.Context(), service.InternalIntake{
		Barcode:  req.Barcode,
		Name:     req.ProductName,
		Quantity: quantity,
	})
	if err != nil {
		render(c, formStatus(err), "registro_interno.tmpl", page, errorFlash(userMessage(err)))
		return
	}

	redirectWith(c, middleware.FlashSuccess,
		fmt.Sprintf("Avaria registrada com sucesso! Produto: %s, Código: %s, Quantidade: %d",
			record.Product.Name, record.Product.BarcodeValue(), *record.Quantity),
		"/")
}
