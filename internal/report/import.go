// Package report is the file-exchange boundary: CSV catalog import, CSV
// and XLSX exports, and ledger summary statistics.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/sound"
	"github.com/talkincode/fairpos/pkg/common"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const (
	maxImportPrice = 1_000_000
	maxImportStock = 1_000_000
)

// importRow keeps every field as text so each row can be validated
// individually and failures aggregated instead of aborting the decode.
type importRow struct {
	Name     string `csv:"商品名稱"`
	Price    string `csv:"價格"`
	Category string `csv:"分類"`
	Barcode  string `csv:"條碼"`
	Stock    string `csv:"庫存"`
}

type ImportLimits struct {
	MaxBytes int64
	MaxRows  int
}

func DefaultImportLimits() ImportLimits {
	return ImportLimits{MaxBytes: 1 << 20, MaxRows: 2000}
}

type Importer struct {
	catalog *catalog.Catalog
	sounds  *sound.Bus
	limits  ImportLimits
}

func NewImporter(cat *catalog.Catalog, sounds *sound.Bus, limits ImportLimits) *Importer {
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = DefaultImportLimits().MaxBytes
	}
	if limits.MaxRows <= 0 {
		limits.MaxRows = DefaultImportLimits().MaxRows
	}
	return &Importer{catalog: cat, sounds: sounds, limits: limits}
}

// Template returns the downloadable example CSV (BOM + header + one
// sample row), matching the import format exactly.
func (imp *Importer) Template() []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString("商品名稱,價格,分類,條碼,庫存\n範例商品,100,熱食,123456,50\n")
	return buf.Bytes()
}

// ImportCSV validates and applies a full catalog replace. The whole file
// is accepted or rejected: any row error aborts with the aggregated
// report and the catalog untouched. On success a new imported snapshot
// is captured.
func (imp *Importer) ImportCSV(filename string, data []byte) ([]domain.Product, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		imp.sounds.Play(domain.SoundError)
		return nil, &domain.ImportValidationError{
			RowErrors: []string{fmt.Sprintf("unsupported file type %q, expected .csv", filepath.Ext(filename))},
		}
	}
	if int64(len(data)) > imp.limits.MaxBytes {
		imp.sounds.Play(domain.SoundError)
		return nil, &domain.ImportValidationError{
			RowErrors: []string{fmt.Sprintf("file too large: %d bytes (limit %d)", len(data), imp.limits.MaxBytes)},
		}
	}

	text, err := decodeImportText(data)
	if err != nil {
		imp.sounds.Play(domain.SoundError)
		return nil, &domain.ImportValidationError{RowErrors: []string{err.Error()}}
	}

	// Row-count limit is enforced before the CSV decoder runs.
	if rows := countDataRows(text); rows > imp.limits.MaxRows {
		imp.sounds.Play(domain.SoundError)
		return nil, &domain.ImportValidationError{
			RowErrors: []string{fmt.Sprintf("too many rows: %d (limit %d)", rows, imp.limits.MaxRows)},
		}
	}

	var rows []importRow
	if err := gocsv.UnmarshalString(text, &rows); err != nil {
		imp.sounds.Play(domain.SoundError)
		return nil, &domain.ImportValidationError{
			RowErrors: []string{fmt.Sprintf("cannot parse CSV: %v", err)},
		}
	}
	if len(rows) == 0 {
		imp.sounds.Play(domain.SoundError)
		return nil, &domain.ImportValidationError{RowErrors: []string{"file contains no data rows"}}
	}

	var rowErrors []string
	products := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		rowNo := i + 2 // 1-based plus header line

		name := strings.TrimSpace(row.Name)
		if name == "" {
			name = fmt.Sprintf("未命名商品 %d", i+1)
		}
		category := common.IfEmptyStr(strings.TrimSpace(row.Category), "其他")
		barcode := catalog.NormalizeBarcode(row.Barcode)

		price, err := cast.ToInt64E(strings.TrimSpace(row.Price))
		if err != nil || price < 0 || price > maxImportPrice {
			rowErrors = append(rowErrors,
				fmt.Sprintf("row %d: invalid price %q", rowNo, row.Price))
			continue
		}
		stock, err := cast.ToInt64E(strings.TrimSpace(row.Stock))
		if err != nil || stock < 0 || stock > maxImportStock {
			rowErrors = append(rowErrors,
				fmt.Sprintf("row %d: invalid stock %q", rowNo, row.Stock))
			continue
		}

		products = append(products, domain.Product{
			ID:       common.UUID(),
			Name:     name,
			Price:    price,
			Category: category,
			Barcode:  barcode,
			Stock:    stock,
		})
	}

	if len(rowErrors) > 0 {
		imp.sounds.Play(domain.SoundError)
		zap.L().Warn("catalog import rejected",
			zap.Int("rows", len(rows)),
			zap.Int("errors", len(rowErrors)))
		return nil, &domain.ImportValidationError{RowErrors: rowErrors}
	}

	imp.catalog.ReplaceAll(products, true)
	imp.sounds.Play(domain.SoundCash)
	zap.L().Info("catalog imported", zap.Int("products", len(products)))
	return products, nil
}

// decodeImportText strips a UTF-8 BOM and decodes the payload, trying
// UTF-8 first and falling back to Big5 for files saved by legacy
// spreadsheet tools.
func decodeImportText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("file is neither UTF-8 nor Big5")
	}
	return string(decoded), nil
}

func countDataRows(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(strings.Trim(line, "\r")) != "" {
			n++
		}
	}
	if n > 0 {
		n-- // header
	}
	return n
}
