package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/export"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/middleware"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/service"
)

const (
	recordsPath  = "/admin/registros"
	productsPath = "/admin/produtos"
	purgePath    = "/admin/limpar"
	usersPath    = "/admin/usuarios"
)

// AdminHandler 处理 /admin 下的后台页面，所有路由都要求登录
type AdminHandler struct {
	reportService   *service.ReportService
	curationService *service.CurationService
	userService     *service.UserService
	now             func() time.Time
}

// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(reportService *service.ReportService, curationService *service.CurationService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		reportService:   reportService,
		curationService: curationService,
		userService:     userService,
		now:             time.Now,
	}
}

// Dashboard 显示汇总数字、商品排行和最近记录
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err, "/")
		return
	}
	render(c, http.StatusOK, "admin_dashboard.tmpl", gin.H{"Title": "Painel Administrativo", "Stats": stats})
}

// filterQuery 返回去掉 page 的查询参数，用于分页和导出链接。
func filterQuery(c *gin.Context) url.Values {
	q := c.Request.URL.Query()
	q.Del("page")
	return q
}

// Records 分页显示记录，支持类型、日期和商品名称筛选
func (h *AdminHandler) Records(c *gin.Context) {
	var q service.RecordQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logrus.WithError(err).Warn("Handler.Records: Invalid query")
		redirectWith(c, middleware.FlashError, msgInvalidForm, DashboardPath)
		return
	}
	filter, err := service.ParseRecordFilter(q)
	if err != nil {
		HandleServiceError(c, err, recordsPath)
		return
	}

	ctx := c.Request.Context()
	page, err := h.reportService.ListRecords(ctx, filter, pageParam(c), service.RecordsPerPage)
	if err != nil {
		HandleServiceError(c, err, DashboardPath)
		return
	}
	names, err := h.reportService.ProductNames(ctx)
	if err != nil {
		HandleServiceError(c, err, DashboardPath)
		return
	}

	if q.Type == "" {
		q.Type = domain.ProductTypeAll
	}
	render(c, http.StatusOK, "admin_registros.tmpl", gin.H{
		"Title":        "Registros",
		"Records":      page,
		"ProductNames": names,
		"Filters":      q,
		"Query":        filterQuery(c),
	})
}

// Export 按列表页相同的筛选条件导出全部记录
func (h *AdminHandler) Export(c *gin.Context) {
	format := c.Param("formato")
	if !export.Supported(format) {
		redirectWith(c, middleware.FlashError, "Formato de exportação não suportado.", recordsPath)
		return
	}

	var q service.RecordQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logrus.WithError(err).Warn("Handler.Export: Invalid query")
		redirectWith(c, middleware.FlashError, msgInvalidForm, recordsPath)
		return
	}
	filter, err := service.ParseRecordFilter(q)
	if err != nil {
		HandleServiceError(c, err, recordsPath)
		return
	}

	records, err := h.reportService.ExportRecords(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err, recordsPath)
		return
	}
	payload, err := export.Render(records, format, h.now())
	if err != nil {
		logrus.WithError(err).WithField("format", format).Error("Handler.Export: Render failed")
		redirectWith(c, middleware.FlashError, "Erro ao exportar dados.", recordsPath)
		return
	}

	logrus.WithFields(logrus.Fields{"format": format, "records": len(records)}).Info("Handler.Export: Records exported")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", payload.Filename))
	c.Data(http.StatusOK, payload.ContentType, payload.Body)
}

// Statistics 显示按类型汇总、近 30 天趋势和商品排行
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.reportService.Statistics(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err, DashboardPath)
		return
	}
	var maxDaily int64
	for _, d := range stats.Daily {
		if d.Count > maxDaily {
			maxDaily = d.Count
		}
	}
	render(c, http.StatusOK, "admin_estatisticas.tmpl", gin.H{
		"Title":    "Estatísticas",
		"Stats":    stats,
		"MaxDaily": maxDaily,
	})
}

// PurgePage 显示批量清理页面
func (h *AdminHandler) PurgePage(c *gin.Context) {
	render(c, http.StatusOK, "admin_limpar.tmpl", gin.H{"Title": "Limpeza de Dados"})
}

// Purge 执行批量清理
func (h *AdminHandler) Purge(c *gin.Context) {
	var req PurgeRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Purge: Invalid input format")
		redirectWith(c, middleware.FlashError, msgInvalidForm, purgePath)
		return
	}

	removed, err := h.curationService.Purge(c.Request.Context(), req.Action, req.Confirmation)
	if err != nil {
		HandleServiceError(c, err, purgePath)
		return
	}

	message := fmt.Sprintf("Todos os %d registros foram removidos.", removed)
	if req.Action == service.PurgeOlderThan30Days {
		message = fmt.Sprintf("%d registros anteriores a 30 dias foram removidos.", removed)
	}
	redirectWith(c, middleware.FlashSuccess, message, DashboardPath)
}

// EditRecordPage 显示记录编辑表单
func (h *AdminHandler) EditRecordPage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		renderNotFound(c, "Registro não encontrado.")
		return
	}
	record, err := h.curationService.GetRecord(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err, recordsPath)
		return
	}
	render(c, http.StatusOK, "admin_editar_avaria.tmpl", gin.H{"Title": "Editar Registro", "Record": record})
}

// EditRecord 处理记录编辑表单
func (h *AdminHandler) EditRecord(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		renderNotFound(c, "Registro não encontrado.")
		return
	}
	var req EditRecordRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.EditRecord: Invalid input format")
		h.rerenderRecord(c, id, msgInvalidForm)
		return
	}

	ctx := c.Request.Context()
	weight, weightOK := parseWeight(req.Weight)
	quantity, quantityOK := parseQuantity(req.Quantity)
	if !weightOK || !quantityOK {
		message := "Peso inválido."
		if !quantityOK {
			message = "Quantidade inválida."
		}
		h.rerenderRecord(c, id, message)
		return
	}

	record, err := h.curationService.EditRecord(ctx, id, service.RecordEdit{
		Name:       req.ProductName,
		Barcode:    req.Barcode,
		Weight:     weight,
		Quantity:   quantity,
		Notes:      req.Notes,
		RecordedAt: req.RecordedAt,
	})
	if err != nil {
		if record == nil || service.IsNotFound(err) {
			HandleServiceError(c, err, recordsPath)
			return
		}
		render(c, formStatus(err), "admin_editar_avaria.tmpl", gin.H{"Title": "Editar Registro", "Record": record}, errorFlash(userMessage(err)))
		return
	}
	redirectWith(c, middleware.FlashSuccess, fmt.Sprintf("Registro #%d atualizado com sucesso!", record.ID), recordsPath)
}

// rerenderRecord 重新读取记录并带着错误提示显示编辑表单
func (h *AdminHandler) rerenderRecord(c *gin.Context, id uint, message string) {
	record, err := h.curationService.GetRecord(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err, recordsPath)
		return
	}
	render(c, http.StatusBadRequest, "admin_editar_avaria.tmpl", gin.H{"Title": "Editar Registro", "Record": record}, errorFlash(message))
}

// EditProductPage 显示商品编辑表单
func (h *AdminHandler) EditProductPage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		renderNotFound(c, "Produto não encontrado.")
		return
	}
	product, err := h.curationService.GetProduct(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err, productsPath)
		return
	}
	render(c, http.StatusOK, "admin_editar_produto.tmpl", gin.H{"Title": "Editar Produto", "Product": product})
}

// EditProduct 处理商品编辑表单
func (h *AdminHandler) EditProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		renderNotFound(c, "Produto não encontrado.")
		return
	}
	var req EditProductRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.EditProduct: Invalid input format")
		product, err := h.curationService.GetProduct(c.Request.Context(), id)
		if err != nil {
			HandleServiceError(c, err, productsPath)
			return
		}
		render(c, http.StatusBadRequest, "admin_editar_produto.tmpl", gin.H{"Title": "Editar Produto", "Product": product}, errorFlash(msgInvalidForm))
		return
	}

	product, err := h.curationService.EditProduct(c.Request.Context(), id, service.ProductEdit{Name: req.Name, Barcode: req.Barcode})
	if err != nil {
		if product == nil || service.IsNotFound(err) {
			HandleServiceError(c, err, productsPath)
			return
		}
		render(c, formStatus(err), "admin_editar_produto.tmpl", gin.H{"Title": "Editar Produto", "Product": product}, errorFlash(userMessage(err)))
		return
	}
	redirectWith(c, middleware.FlashSuccess, fmt.Sprintf("Produto \"%s\" atualizado com sucesso!", product.Name), productsPath)
}

// Products 分页显示商品及其记录数
func (h *AdminHandler) Products(c *gin.Context) {
	var q ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logrus.WithError(err).Warn("Handler.Products: Invalid query")
		redirectWith(c, middleware.FlashError, msgInvalidForm, DashboardPath)
		return
	}
	page, err := h.reportService.ListProducts(c.Request.Context(), q.Type, q.Search, pageParam(c), service.ProductsPerPage)
	if err != nil {
		HandleServiceError(c, err, DashboardPath)
		return
	}
	if q.Type == "" {
		q.Type = domain.ProductTypeAll
	}
	render(c, http.StatusOK, "admin_produtos.tmpl", gin.H{
		"Title":    "Produtos",
		"Products": page,
		"Filters":  q,
		"Query":    filterQuery(c),
	})
}

// DeleteRecord 删除一条记录
func (h *AdminHandler) DeleteRecord(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		renderNotFound(c, "Registro não encontrado.")
		return
	}
	record, err := h.curationService.DeleteRecord(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err, recordsPath)
		return
	}
	redirectWith(c, middleware.FlashSuccess,
		fmt.Sprintf("Registro de avaria #%d (%s) deletado com sucesso!", record.ID, record.Product.Name),
		recordsPath)
}

// DeleteProduct 删除商品及其全部记录
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		renderNotFound(c, "Produto não encontrado.")
		return
	}
	product, removed, err := h.curationService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err, productsPath)
		return
	}
	redirectWith(c, middleware.FlashSuccess,
		fmt.Sprintf("Produto \"%s\" e %d registros de avaria deletados com sucesso!", product.Name, removed),
		productsPath)
}

// Users 显示账号列表，只有管理员可以访问
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err, DashboardPath)
		return
	}
	render(c, http.StatusOK, "admin_usuarios.tmpl", gin.H{"Title": "Usuários", "Users": users})
}

// ToggleAdmin 切换账号的管理员标记
func (h *AdminHandler) ToggleAdmin(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		renderNotFound(c, "Usuário não encontrado.")
		return
	}
	target, err := h.userService.ToggleAdmin(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		fallback := usersPath
		if errors.Is(err, service.ErrForbidden) {
			fallback = DashboardPath
		}
		HandleServiceError(c, err, fallback)
		return
	}

	status := "removido de"
	if target.IsAdmin {
		status = "promovido a"
	}
	redirectWith(c, middleware.FlashSuccess, fmt.Sprintf("Usuário %s %s administrador.", target.Username, status), usersPath)
}
