package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetSpec struct {
	name string
	rows [][]interface{}
}

// workbook renders sheets into an in-memory xlsx upload.
func workbook(t *testing.T, filename string, sheets ...sheetSpec) Upload {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		switch {
		case i == 0 && s.name != "Sheet1":
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		case i > 0:
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return Upload{Filename: filename, Body: bytes.NewReader(buf.Bytes())}
}

func csvUpload(filename string, lines ...string) Upload {
	return Upload{Filename: filename, Body: strings.NewReader(strings.Join(lines, "\n") + "\n")}
}
