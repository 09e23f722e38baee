package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/domain"
)

var exportNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)

func sampleRecords() []domain.DamageRecord {
	weight := 1.5
	quantity := 3
	barcode := "7891234567890"
	return []domain.DamageRecord{
		{
			ID: 2, Quantity: &quantity,
			RecordedAt: time.Date(2024, 3, 4, 9, 30, 0, 0, time.Local),
			Product:    domain.Product{ID: 8, Name: "Sabão, em pó", Barcode: &barcode, Type: domain.ProductTypeInternal},
		},
		{
			ID: 1, Weight: &weight,
			RecordedAt: time.Date(2024, 3, 1, 8, 0, 5, 0, time.Local),
			Product:    domain.Product{ID: 3, Name: "Banana", Type: domain.ProductTypeProduce},
		},
	}
}

func TestRender_CSV(t *testing.T) {
	payload, err := Render(sampleRecords(), FormatCSV, exportNow)
	require.NoError(t, err)

	assert.Equal(t, "text/csv; charset=utf-8", payload.ContentType)
	assert.Equal(t, "avarias_export_20240305_140709.csv", payload.Filename)

	lines, err := csv.NewReader(bytes.NewReader(payload.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, Columns, lines[0])
	assert.Equal(t, []string{"2", "Sabão, em pó", "interno", "7891234567890", "", "3", "04/03/2024 09:30:00"}, lines[1])
	assert.Equal(t, []string{"1", "Banana", "hortifruti", "", "1.5", "", "01/03/2024 08:00:05"}, lines[2])
}

func TestRender_CSVEmptyHasHeader(t *testing.T) {
	payload, err := Render(nil, FormatCSV, exportNow)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Columns, ",")+"\n", string(payload.Body))
}

func TestRender_TXT(t *testing.T) {
	payload, err := Render(sampleRecords(), FormatTXT, exportNow)
	require.NoError(t, err)

	body := string(payload.Body)
	assert.Equal(t, "text/plain; charset=utf-8", payload.ContentType)
	assert.True(t, strings.HasPrefix(body, "=== RELATÓRIO DE AVARIAS ===\nGerado em: 05/03/2024 14:07:09\nTotal de registros: 2\n\n"))
	assert.Contains(t, body, "--- Registro 1 ---\nID: 2\nProduto: Sabão, em pó\nTipo: interno\nCódigo de Barras: 7891234567890\nQuantidade: 3\nData: 04/03/2024 09:30:00\n\n")
	assert.Contains(t, body, "--- Registro 2 ---\nID: 1\nProduto: Banana\nTipo: hortifruti\nPeso: 1.5 kg\nData: 01/03/2024 08:00:05\n\n")
}

func TestRender_JSON(t *testing.T) {
	payload, err := Render(sampleRecords(), FormatJSON, exportNow)
	require.NoError(t, err)
	assert.Equal(t, "application/json; charset=utf-8", payload.ContentType)
	assert.Contains(t, string(payload.Body), "\n  \"metadata\"", "JSON deve ser indentado")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload.Body, &raw))
	meta := raw["metadata"].(map[string]any)
	assert.Equal(t, float64(2), meta["total_records"])
	assert.Equal(t, "json", meta["format"])
	assert.Equal(t, "2024-03-05T14:07:09", meta["generated_at"])

	data := raw["data"].([]any)
	internal := data[0].(map[string]any)
	produce := data[1].(map[string]any)
	assert.Nil(t, internal["peso"])
	assert.Equal(t, float64(3), internal["quantidade"])
	assert.Equal(t, "", produce["codigo_barras"])
	assert.Equal(t, 1.5, produce["peso"])
	assert.Nil(t, produce["quantidade"])
}

// JSON 和 CSV 描述同一组记录
func TestRender_JSONMatchesCSV(t *testing.T) {
	records := sampleRecords()
	csvPayload, err := Render(records, FormatCSV, exportNow)
	require.NoError(t, err)
	jsonPayload, err := Render(records, FormatJSON, exportNow)
	require.NoError(t, err)

	lines, err := csv.NewReader(bytes.NewReader(csvPayload.Body)).ReadAll()
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(jsonPayload.Body, &doc))

	require.Len(t, doc.Data, len(lines)-1)
	for i, row := range doc.Data {
		assert.Equal(t, lines[i+1], row.Fields())
	}
}

func TestRender_Unsupported(t *testing.T) {
	_, err := Render(sampleRecords(), "xml", exportNow)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Supported("xml"))
	assert.True(t, Supported(FormatTXT))
}
