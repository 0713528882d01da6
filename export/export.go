// Package export serializes product records for copy and download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/use-agent/mallscan/models"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatCodes = "codes" // product codes only, one per line
)

var header = []string{"code", "name", "thumbnail_url", "product_url"}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case FormatCodes:
		return "text/plain; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns the download filename for a format.
func Filename(format string) string {
	switch format {
	case FormatTSV:
		return "products.tsv"
	case FormatCodes:
		return "product_codes.txt"
	default:
		return "products.csv"
	}
}

// Write serializes records to w in the given format, one record per line,
// in the order given.
func Write(w io.Writer, records []models.ProductRecord, format string) error {
	switch format {
	case FormatCodes:
		return writeCodes(w, records)
	case FormatTSV:
		return writeDelimited(w, records, '\t')
	case FormatCSV:
		return writeDelimited(w, records, ',')
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

func writeDelimited(w io.Writer, records []models.ProductRecord, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Code, rec.Name, rec.ThumbnailURL, rec.ProductURL}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write record %s: %w", rec.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeCodes is the original copy/download shape: nothing but codes.
func writeCodes(w io.Writer, records []models.ProductRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintln(w, rec.Code); err != nil {
			return fmt.Errorf("export: write code %s: %w", rec.Code, err)
		}
	}
	return nil
}
