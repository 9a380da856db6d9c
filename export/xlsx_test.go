package export

import (
	"path/filepath"
	"testing"

	"billing-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.xlsx")
	records := []models.Record{
		{"timestamp": "04/06/2025, 05:08 PM", "email": "djzhao@ucsd.edu", "action": "create", "cost": "1.20"},
		{"timestamp": "04/06/2025, 05:10 PM", "action": "terminate", "cost": "0.40"},
	}

	require.NoError(t, WriteXLSX(path, records, []string{"timestamp", "email", "action"}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"timestamp", "email", "action", "cost"}, rows[0])
	assert.Equal(t, []string{"04/06/2025, 05:08 PM", "djzhao@ucsd.edu", "create", "1.20"}, rows[1])
	assert.Equal(t, []string{"04/06/2025, 05:10 PM", "", "terminate", "0.40"}, rows[2])
}

func TestWriteXLSX_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, nil, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
