// Package export renders click histories as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// Content types for the supported export formats.
const (
	ContentTypeCSV   = "text/csv; charset=utf-8"
	ContentTypeExcel = "application/vnd.ms-excel"
)

// utf8BOM makes Excel detect UTF-8 encoding.
const utf8BOM = "\ufeff"

// columns is the export header row.
var columns = []string{"date", "time", "ip", "country", "city", "device", "os", "browser", "referrer"}

// WriteCSV streams clicks as a CSV document with a UTF-8 BOM.
// The Excel format uses the same body under a different content type.
func WriteCSV(w io.Writer, clicks []*model.Click) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, click := range clicks {
		referrer := click.Referer
		if referrer == "" {
			referrer = "direct"
		}

		record := []string{
			click.CreatedAt.Format("2006-01-02"),
			click.CreatedAt.Format("15:04:05"),
			click.IP,
			click.Country,
			click.City,
			string(click.DeviceType),
			click.OS,
			click.Browser,
			referrer,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename builds the download filename for a link export.
func Filename(shortCode, format string) string {
	ext := "csv"
	if format == "excel" {
		ext = "xls"
	}
	return fmt.Sprintf("clicks-%s.%s", shortCode, ext)
}
