package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

const sampleExport = "Customer Group\tCustomer\tProduct\t2024\t2024\n" +
	"\t\t\tJanuary\tFebruary\n" +
	"Whole Foods CO\tWF Boulder\tEthiopia\t10\t20\n" +
	"Grand Total\t\t\t10\t20\n"

type fixture struct {
	dir    string
	loader *Loader
}

func setupFixture(t *testing.T) *fixture {
	return &fixture{
		dir:    t.TempDir(),
		loader: NewLoader(Options{}),
	}
}

func (f *fixture) write(t *testing.T, name string, content []byte) string {
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("success - utf8 tab separated", func(t *testing.T) {
		f := setupFixture(t)
		path := f.write(t, "export.csv", []byte(sampleExport))

		records, err := f.loader.Load(ctx, path)
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, []string{"Whole Foods CO", "WF Boulder", "Ethiopia", "10", "20"}, records[2].Fields)
		assert.Equal(t, 3, records[2].Line)
	})

	t.Run("success - utf16 with bom", func(t *testing.T) {
		f := setupFixture(t)
		encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(sampleExport))
		require.NoError(t, err)
		path := f.write(t, "export.csv", encoded)

		records, err := f.loader.Load(ctx, path)
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, "Customer Group", records[0].Fields[0])
		assert.Equal(t, "February", records[1].Fields[4])
	})

	t.Run("success - utf8 bom is stripped", func(t *testing.T) {
		f := setupFixture(t)
		path := f.write(t, "export.csv", append([]byte("\xef\xbb\xbf"), []byte("a,b\n1,2\n")...))

		records, err := f.loader.Load(ctx, path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "a", records[0].Fields[0])
	})

	t.Run("success - xlsx workbook", func(t *testing.T) {
		f := setupFixture(t)
		path := filepath.Join(f.dir, "export.xlsx")

		wb := excelize.NewFile()
		sheet := wb.GetSheetName(0)
		require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"Customer Group", "Customer", "Product", "2024"}))
		require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"", "", "", "January"}))
		require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]interface{}{"Safeway CO", "Safeway #1", "Guatemala", 42}))
		require.NoError(t, wb.SaveAs(path))
		require.NoError(t, wb.Close())

		records, err := f.loader.Load(ctx, path)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"Safeway CO", "Safeway #1", "Guatemala", "42"}, records[2].Fields)
	})

	t.Run("error - missing file", func(t *testing.T) {
		f := setupFixture(t)
		_, err := f.loader.Load(ctx, filepath.Join(f.dir, "missing.csv"))
		assert.True(t, errors.Is(err, domain.ErrIO))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("error - directory", func(t *testing.T) {
		f := setupFixture(t)
		_, err := f.loader.Load(ctx, f.dir)
		assert.ErrorIs(t, err, domain.ErrIO)
	})

	t.Run("error - malformed quoting", func(t *testing.T) {
		f := setupFixture(t)
		path := f.write(t, "export.csv", []byte("a,\"b\n1,2\n"))
		_, err := f.loader.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("error - corrupt workbook", func(t *testing.T) {
		f := setupFixture(t)
		path := f.write(t, "export.xlsx", []byte("not a zip archive"))
		_, err := f.loader.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrParse)
	})
}

func TestParseDelimited(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		delimiter Delimiter
		expected  [][]string
		wantErr   bool
	}{
		{
			name:      "auto detects comma",
			content:   "a,b,c\n1,2,3\n",
			delimiter: DelimiterAuto,
			expected:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:      "auto skips leading blank lines",
			content:   "\n\na\tb\n",
			delimiter: DelimiterAuto,
			expected:  [][]string{{"a", "b"}},
		},
		{
			name:      "forced comma keeps tabs in fields",
			content:   "a\tb,c\n",
			delimiter: DelimiterComma,
			expected:  [][]string{{"a\tb", "c"}},
		},
		{
			name:      "ragged rows are allowed",
			content:   "a,b,c\n1\n",
			delimiter: DelimiterComma,
			expected:  [][]string{{"a", "b", "c"}, {"1"}},
		},
		{
			name:      "quoted thousands separator",
			content:   "a,\"1,200\"\n",
			delimiter: DelimiterAuto,
			expected:  [][]string{{"a", "1,200"}},
		},
		{
			name:      "tab keeps bare inch marks",
			content:   "Customer\tProducts\nKS #12\tBag 12\" Peru\t5\n",
			delimiter: DelimiterAuto,
			expected:  [][]string{{"Customer", "Products"}, {"KS #12", "Bag 12\" Peru", "5"}},
		},
		{
			name:      "comma rejects bare quotes",
			content:   "KS #12,Bag 12\" Peru,5\n",
			delimiter: DelimiterComma,
			wantErr:   true,
		},
		{
			name:      "unknown delimiter",
			content:   "a;b\n",
			delimiter: Delimiter("semicolon"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseDelimited([]byte(tt.content), tt.delimiter)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrParse)
				return
			}
			require.NoError(t, err)

			fields := make([][]string, 0, len(records))
			for _, r := range records {
				fields = append(fields, r.Fields)
			}
			assert.Equal(t, tt.expected, fields)
		})
	}
}
