package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

func str(s string) *string { return &s }

func sampleChurches() []*models.Church {
	return []*models.Church{
		{
			Name:       "Zion Chapel",
			Status:     models.StatusListed,
			CountyName: str("Utah"),
			Language:   "English",
			Gatherings: []models.Gathering{{Time: "Sunday 9:00 AM"}, {Time: "Sunday 11:00 AM"}},
		},
		{
			Name:         "Grace Church",
			Status:       models.StatusUnlisted,
			CountyName:   str("Salt Lake"),
			Website:      str("https://grace.example.com"),
			Language:     "English",
			Affiliations: []models.Affiliation{{Name: "Acts 29"}},
		},
		{
			Name:       "Hope Fellowship",
			Status:     models.StatusListed,
			CountyName: str("Salt Lake"),
			Language:   "Spanish",
		},
	}
}

// Порядок детерминирован: по округу, затем по имени.
func TestFlattenOrder(t *testing.T) {
	rows := flatten(sampleChurches())
	require.Len(t, rows, 3)
	assert.Equal(t, "Grace Church", rows[0].Name)
	assert.Equal(t, "Hope Fellowship", rows[1].Name)
	assert.Equal(t, "Zion Chapel", rows[2].Name)
}

func TestJSONExport(t *testing.T) {
	data, err := JSON(sampleChurches())
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Grace Church", rows[0]["name"])
	assert.Equal(t, "https://grace.example.com", rows[0]["website"])
	// Пустые поля опускаются
	_, hasWebsite := rows[1]["website"]
	assert.False(t, hasWebsite)
}

func TestYAMLExport(t *testing.T) {
	data, err := YAML(sampleChurches())
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Zion Chapel", rows[2]["name"])
	assert.Equal(t, "Sunday 9:00 AM; Sunday 11:00 AM", rows[2]["gatherings"])
}

func TestCSVExport(t *testing.T) {
	data, err := CSV(sampleChurches())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // заголовок + 3 строки
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Grace Church", records[1][0])
	assert.Equal(t, "Acts 29", records[1][9])
}

func TestXLSXExport(t *testing.T) {
	data, err := XLSX(sampleChurches())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Churches")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Grace Church", rows[1][0])
	assert.Equal(t, "Zion Chapel", rows[3][0])
}

func TestExportEmptyCatalog(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // только заголовок

	jsonData, err := JSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(jsonData))
}
