package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/middleware"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// LoadTemplates 解析内嵌的页面模板，供 gin 的 SetHTMLTemplate 使用。
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
}

var templateFuncs = template.FuncMap{
	"fmtDate": func(t time.Time) string {
		return t.In(time.Local).Format("02/01/2006 15:04")
	},
	"fmtDateTime": func(t *time.Time) string {
		if t == nil {
			return "Nunca"
		}
		return t.In(time.Local).Format("02/01/2006 15:04")
	},
	"fmtDateInput": func(t time.Time) string {
		return t.In(time.Local).Format("2006-01-02T15:04")
	},
	"fmtWeight": func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	},
	"fmtTotal": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"fmtQuantity": func(v *int) string {
		if v == nil {
			return ""
		}
		return strconv.Itoa(*v)
	},
	"fmtNotes": func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	},
	"typeLabel": typeLabel,
	"percent": func(v, max int64) int64 {
		if max <= 0 {
			return 0
		}
		return v * 100 / max
	},
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, errors.New("dict: odd number of arguments")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	"pageLink": func(path string, q url.Values, page int) template.URL {
		next := url.Values{}
		for k, v := range q {
			next[k] = v
		}
		next.Set("page", strconv.Itoa(page))
		return template.URL(path + "?" + next.Encode())
	},
	"withQuery": func(path string, q url.Values) template.URL {
		if len(q) == 0 {
			return template.URL(path)
		}
		return template.URL(path + "?" + q.Encode())
	},
}

func typeLabel(t string) string {
	switch t {
	case domain.ProductTypeProduce:
		return "Hortifruti"
	case domain.ProductTypeInternal:
		return "Uso Interno"
	}
	return t
}

// render 渲染页面，自动附带当前用户和待显示的提示消息。
// inline 是本次请求直接显示的消息 (例如表单校验失败)。
func render(c *gin.Context, status int, name string, data gin.H, inline ...middleware.Flash) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.CurrentUser(c)
	data["Flashes"] = append(middleware.PopFlashes(c), inline...)
	data["Path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

func errorFlash(message string) middleware.Flash {
	return middleware.Flash{Category: middleware.FlashError, Message: message}
}

// redirectWith 写入一条提示后重定向。
func redirectWith(c *gin.Context, category, message, location string) {
	middleware.AddFlash(c, category, message)
	c.Redirect(http.StatusFound, location)
}
