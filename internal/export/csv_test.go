package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 20, 14, 35, 12, 0, time.UTC)
	clicks := []*model.Click{
		{
			IP:         "203.0.113.7",
			Country:    "DE",
			City:       "Berlin",
			DeviceType: model.DeviceMobile,
			OS:         "Android",
			Browser:    "Chrome",
			Referer:    "https://instagram.com/",
			CreatedAt:  at,
		},
		{
			IP:         "unknown",
			DeviceType: model.DeviceDesktop,
			OS:         "Windows",
			Browser:    "Firefox",
			CreatedAt:  at.Add(time.Minute),
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, clicks); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Error("output missing UTF-8 BOM")
	}

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff")))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d rows, want header plus 2 clicks", len(records))
	}

	wantHeader := []string{"date", "time", "ip", "country", "city", "device", "os", "browser", "referrer"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	first := records[1]
	if first[0] != "2026-08-20" || first[1] != "14:35:12" {
		t.Errorf("first row date/time = %q %q", first[0], first[1])
	}
	if first[8] != "https://instagram.com/" {
		t.Errorf("first row referrer = %q", first[8])
	}

	// Empty referrer exported as direct
	if records[2][8] != "direct" {
		t.Errorf("second row referrer = %q, want direct", records[2][8])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(buf.String(), "\ufeff")), "\n")
	if len(lines) != 1 {
		t.Errorf("empty export has %d lines, want header only", len(lines))
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	if got := Filename("abc123", "csv"); got != "clicks-abc123.csv" {
		t.Errorf("Filename() = %q", got)
	}
	if got := Filename("abc123", "excel"); got != "clicks-abc123.xls" {
		t.Errorf("Filename() = %q", got)
	}
}
