package common

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"ers/src/models"
	"ers/src/types"

	"github.com/stretchr/testify/assert"
)

func exportFixture() []models.Registration {
	return []models.Registration{
		{ID: "REG1234", Name: "Ada Lovelace", Email: "ada@example.com", GroupSize: 2, Scans: 1, MaxScans: 2, HasQR: true, Status: types.REGISTRATION_CHECKEDIN},
		{ID: "REG5678", Name: "Grace Hopper", Email: "grace@example.com", GroupSize: 1, MaxScans: 1, Status: types.REGISTRATION_PENDING},
	}
}

func TestExportCSV(t *testing.T) {
	data, filename, contentType, err := Export("csv", exportFixture())
	assert.Nil(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, filename, ".csv")

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	assert.Nil(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, "REG1234", records[1][0])
	assert.Equal(t, "checked-in", records[1][6])
	assert.Equal(t, "REG5678", records[2][0])
}

func TestExportJSON(t *testing.T) {
	data, filename, contentType, err := Export("json", exportFixture())
	assert.Nil(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, filename, ".json")

	var regs []models.Registration
	assert.Nil(t, json.Unmarshal(data, &regs))
	assert.Len(t, regs, 2)
	assert.Equal(t, "REG1234", regs[0].ID)
}

func TestExportXLSX(t *testing.T) {
	data, _, contentType, err := Export("xlsx", exportFixture())
	assert.Nil(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType)
	assert.NotEmpty(t, data)
}

func TestExportPDF(t *testing.T) {
	data, _, contentType, err := Export("pdf", exportFixture())
	assert.Nil(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, _, _, err := Export("yaml", exportFixture())
	assert.NotNil(t, err)
}
