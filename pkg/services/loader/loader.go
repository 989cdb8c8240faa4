package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Delimiter string

const (
	DelimiterAuto  Delimiter = "auto"
	DelimiterTab   Delimiter = "tab"
	DelimiterComma Delimiter = "comma"
)

type Options struct {
	Delimiter Delimiter
	// Sheet selects the worksheet of an .xlsx export; the first sheet when empty.
	Sheet string
}

// Loader reads a distributor export into raw records without interpreting them.
type Loader struct {
	opts Options
}

func NewLoader(opts Options) *Loader {
	if opts.Delimiter == "" {
		opts.Delimiter = DelimiterAuto
	}
	return &Loader{opts: opts}
}

func (l *Loader) Load(ctx context.Context, path string) ([]domain.RawRecord, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIO, "load", err)
	}
	if info.IsDir() {
		return nil, domain.NewError(domain.ErrIO, "load", "%s is a directory", path)
	}

	var records []domain.RawRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = l.loadWorkbook(path)
	default:
		records, err = l.loadDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("rows", len(records)).
		Msg("export loaded")
	return records, nil
}

func (l *Loader) loadDelimited(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIO, "load", err)
	}
	defer f.Close()

	// Tableau exports are UTF-16 with a BOM; anything without one is read as UTF-8.
	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	content, err := io.ReadAll(decoded)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIO, "load", fmt.Errorf("read %s: %w", path, err))
	}

	return ParseDelimited(content, l.opts.Delimiter)
}

// ParseDelimited splits decoded export content into raw records.
func ParseDelimited(content []byte, delimiter Delimiter) ([]domain.RawRecord, error) {
	sep, err := resolveDelimiter(content, delimiter)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "load", err)
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sep
	r.FieldsPerRecord = -1
	// tab exports quote nothing; a bare " is an inch mark in a product label
	r.LazyQuotes = sep == '\t'

	var records []domain.RawRecord
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.ErrParse, "load", err)
		}
		line, _ := r.FieldPos(0)
		records = append(records, domain.RawRecord{Line: line, Fields: fields})
	}
	return records, nil
}

func resolveDelimiter(content []byte, delimiter Delimiter) (rune, error) {
	switch delimiter {
	case DelimiterTab:
		return '\t', nil
	case DelimiterComma:
		return ',', nil
	case DelimiterAuto, "":
	default:
		return 0, fmt.Errorf("unsupported delimiter %q", delimiter)
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, "\t") > 0 {
			return '\t', nil
		}
		return ',', nil
	}
	return ',', nil
}

func (l *Loader) loadWorkbook(path string) ([]domain.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "load", fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.NewError(domain.ErrParse, "load", "workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "load", fmt.Errorf("read sheet %q: %w", sheet, err))
	}

	records := make([]domain.RawRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, domain.RawRecord{Line: i + 1, Fields: row})
	}
	return records, nil
}
