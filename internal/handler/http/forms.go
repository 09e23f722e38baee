package http

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// LoginRequest 是登录表单
type LoginRequest struct {
	Username   string `form:"username"`
	Password   string `form:"password"`
	RememberMe string `form:"remember_me"`
}

// RegisterRequest 是注册表单
type RegisterRequest struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
	AdminKey        string `form:"admin_key"`
}

// ChangePasswordRequest 是修改密码表单
type ChangePasswordRequest struct {
	CurrentPassword string `form:"current_password"`
	NewPassword     string `form:"new_password"`
	ConfirmPassword string `form:"confirm_password"`
}

// ProduceRequest 是蔬果类登记表单，peso 接受小数点或小数逗号。
type ProduceRequest struct {
	ProductName string `form:"nome_produto"`
	Weight      string `form:"peso"`
}

// InternalRequest 是内部商品登记表单
type InternalRequest struct {
	Barcode     string `form:"codigo_barras"`
	ProductName string `form:"nome_produto"`
	Quantity    string `form:"quantidade"`
}

// EditRecordRequest 是记录编辑表单
type EditRecordRequest struct {
	ProductName string `form:"nome_produto"`
	Barcode     string `form:"codigo_barras"`
	Weight      string `form:"peso"`
	Quantity    string `form:"quantidade"`
	Notes       string `form:"observacoes"`
	RecordedAt  string `form:"data_registro"`
}

// EditProductRequest 是商品编辑表单
type EditProductRequest struct {
	Name    string `form:"nome"`
	Barcode string `form:"codigo_barras"`
}

// PurgeRequest 是批量清理表单
type PurgeRequest struct {
	Action       string `form:"acao"`
	Confirmation string `form:"senha_confirmacao"`
}

// ProductQuery 是商品列表的筛选参数
type ProductQuery struct {
	Type   string `form:"tipo"`
	Search string `form:"busca"`
}

// parseWeight 解析可选的重量，空字符串返回 nil。
func parseWeight(s string) (*float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// parseQuantity 解析可选的数量，空字符串返回 nil。
func parseQuantity(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// pageParam 读取 page 参数，无效时为 1。
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// idParam 读取路径中的数字 ID。
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
