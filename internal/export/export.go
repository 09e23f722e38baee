// Package export 把损耗记录渲染成可下载的 CSV、TXT 或 JSON 文件。
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

// 支持的导出格式
const (
	FormatCSV  = "csv"
	FormatTXT  = "txt"
	FormatJSON = "json"
)

// DateLayout 是导出文件中日期的格式 (dd/mm/yyyy HH:MM:SS)。
const DateLayout = "02/01/2006 15:04:05"

var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Columns 是 CSV 表头，也是 JSON 中每条记录的字段名。
var Columns = []string{"id", "produto_nome", "produto_tipo", "codigo_barras", "peso", "quantidade", "data_registro"}

// Payload 是一个待下载的文件。
type Payload struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Row 是一条记录的导出形式。
type Row struct {
	ID          uint     `json:"id"`
	ProductName string   `json:"produto_nome"`
	ProductType string   `json:"produto_tipo"`
	Barcode     string   `json:"codigo_barras"`
	Weight      *float64 `json:"peso"`
	Quantity    *int     `json:"quantidade"`
	RecordedAt  string   `json:"data_registro"`
}

// NewRow 把记录转换为导出行，记录必须已经加载了商品。
func NewRow(r domain.DamageRecord) Row {
	return Row{
		ID:          r.ID,
		ProductName: r.Product.Name,
		ProductType: r.Product.Type,
		Barcode:     r.Product.BarcodeValue(),
		Weight:      r.Weight,
		Quantity:    r.Quantity,
		RecordedAt:  r.RecordedAt.In(time.Local).Format(DateLayout),
	}
}

// Supported 报告 format 是否可以导出。
func Supported(format string) bool {
	switch format {
	case FormatCSV, FormatTXT, FormatJSON:
		return true
	}
	return false
}

// Render 按 format 渲染记录，now 决定文件名和报告中的生成时间。
func Render(records []domain.DamageRecord, format string, now time.Time) (*Payload, error) {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = NewRow(r)
	}

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatCSV:
		body, err = renderCSV(rows)
		contentType = "text/csv; charset=utf-8"
	case FormatTXT:
		body = renderTXT(rows, now)
		contentType = "text/plain; charset=utf-8"
	case FormatJSON:
		body, err = renderJSON(rows, now)
		contentType = "application/json; charset=utf-8"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("export: render %s: %w", format, err)
	}

	return &Payload{
		Body:        body,
		ContentType: contentType,
		Filename:    Filename(format, now),
	}, nil
}

// Filename 返回 avarias_export_YYYYMMDD_HHMMSS.<ext>。
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("avarias_export_%s.%s", now.Format("20060102_150405"), format)
}

// Fields 返回行在 CSV 中的各列，缺失的值为空字符串。
func (r Row) Fields() []string {
	weight, quantity := "", ""
	if r.Weight != nil {
		weight = formatWeight(*r.Weight)
	}
	if r.Quantity != nil {
		quantity = strconv.Itoa(*r.Quantity)
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.ProductName,
		r.ProductType,
		r.Barcode,
		weight,
		quantity,
		r.RecordedAt,
	}
}

func renderCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderTXT(rows []Row, now time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteString("=== RELATÓRIO DE AVARIAS ===\n")
	fmt.Fprintf(&buf, "Gerado em: %s\n", now.Format(DateLayout))
	fmt.Fprintf(&buf, "Total de registros: %d\n\n", len(rows))

	for i, row := range rows {
		fmt.Fprintf(&buf, "--- Registro %d ---\n", i+1)
		fmt.Fprintf(&buf, "ID: %d\n", row.ID)
		fmt.Fprintf(&buf, "Produto: %s\n", row.ProductName)
		fmt.Fprintf(&buf, "Tipo: %s\n", row.ProductType)
		if row.Barcode != "" {
			fmt.Fprintf(&buf, "Código de Barras: %s\n", row.Barcode)
		}
		if row.Weight != nil {
			fmt.Fprintf(&buf, "Peso: %s kg\n", formatWeight(*row.Weight))
		}
		if row.Quantity != nil {
			fmt.Fprintf(&buf, "Quantidade: %d\n", *row.Quantity)
		}
		fmt.Fprintf(&buf, "Data: %s\n\n", row.RecordedAt)
	}
	return buf.Bytes()
}

type metadata struct {
	GeneratedAt  string `json:"generated_at"`
	TotalRecords int    `json:"total_records"`
	Format       string `json:"format"`
}

// Document 是 JSON 导出的顶层结构。
type Document struct {
	Metadata metadata `json:"metadata"`
	Data     []Row    `json:"data"`
}

func renderJSON(rows []Row, now time.Time) ([]byte, error) {
	doc := Document{
		Metadata: metadata{
			GeneratedAt:  now.Format("2006-01-02T15:04:05"),
			TotalRecords: len(rows),
			Format:       FormatJSON,
		},
		Data: rows,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
