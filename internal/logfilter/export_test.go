package logfilter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-console-backend/internal/model"
)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestEngine_ExportCSV(t *testing.T) {
	e := NewEngine(time.UTC, fixedClock(at("2024-01-02T10:30")))
	records := e.Apply(fixture()[:2], FilterSpec{})

	var buf bytes.Buffer
	warnings, err := e.ExportCSV(&buf, records)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	expected := "Vehicle Number,Type,Guest Name,Room,Phone,Entry Time,Exit Time,Duration,Amount,Status\n" +
		"WP-7788,bike,Bob Silva,202,,02/01/2024 09:00,-,1h 30m (Ongoing),-,parked\n" +
		"CAB-1234,car,Alice Perera,101,,01/01/2024 10:00,01/01/2024 12:30,2h 30m,500,exited\n"
	assert.Equal(t, expected, buf.String())
}

func TestEngine_ExportCSV_Escaping(t *testing.T) {
	e := NewEngine(time.UTC, fixedClock(at("2024-01-02T10:30")))
	records := []model.VehicleActivity{
		{ID: "q", VehicleNumber: "AB-1", VehicleType: model.VehicleCar, GuestName: "Doe, John", GuestRoom: `7"B`,
			EntryTime: at("2024-01-01T10:00"), ExitTime: ptrTime(at("2024-01-01T11:00")), Status: model.StatusExited, TotalAmount: ptrFloat(12.5)},
	}

	var buf bytes.Buffer
	_, err := e.ExportCSV(&buf, records)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"Doe, John","7""B"`)

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row, len(Header))
	}
	assert.Equal(t, "Doe, John", rows[1][2])
	assert.Equal(t, "12.5", rows[1][8])
}

func TestEngine_ExportCSV_NegativeDuration(t *testing.T) {
	e := NewEngine(time.UTC, fixedClock(at("2024-01-02T10:30")))
	records := []model.VehicleActivity{
		{ID: "bad", VehicleNumber: "X", Status: model.StatusExited, EntryTime: at("2024-01-01T10:00"),
			ExitTime: ptrTime(at("2024-01-01T08:00")), TotalAmount: ptrFloat(1)},
	}

	var buf bytes.Buffer
	warnings, err := e.ExportCSV(&buf, records)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnNegativeDuration, warnings[0].Kind)
	assert.Equal(t, "bad", warnings[0].RecordID)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "-", rows[1][7])
}

func TestEngine_ExportCSV_TimestampsInConsoleZone(t *testing.T) {
	colombo, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)
	e := NewEngine(colombo, fixedClock(at("2024-01-02T00:00")))

	var buf bytes.Buffer
	_, err = e.ExportCSV(&buf, []model.VehicleActivity{
		{ID: "z", Status: model.StatusParked, EntryTime: at("2024-01-01T20:00")},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "02/01/2024 01:30")
}

func TestEngine_ExportFilename(t *testing.T) {
	e := NewEngine(time.UTC)
	assert.Equal(t, "parking-log-2024-03-15.csv", e.ExportFilename(at("2024-03-15T23:00"), FormatCSV))
	assert.Equal(t, "parking-log-2024-03-15.pdf", e.ExportFilename(at("2024-03-15T23:00"), FormatPDF))

	colombo, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)
	assert.Equal(t, "parking-log-2024-03-16.csv", NewEngine(colombo).ExportFilename(at("2024-03-15T23:00"), FormatCSV))
}

func TestEngine_ExportPDF(t *testing.T) {
	e := NewEngine(time.UTC, fixedClock(at("2024-01-04T00:00")), WithCurrency("LKR"))
	records := e.Apply(fixture(), FilterSpec{})

	var buf bytes.Buffer
	warnings, err := e.ExportPDF(&buf, records, Aggregate(records))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFitCell(t *testing.T) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 8)
	avail := 42 - 2*pdf.GetCellMargin()

	assert.Equal(t, "Alice Perera", fitCell(pdf, "Alice Perera", 42))

	long := "Mr. and Mrs. Bartholomew Wijesinghe-Fernando and family"
	got := fitCell(pdf, long, 42)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, "...")))
	assert.LessOrEqual(t, pdf.GetStringWidth(got), avail)

	assert.Equal(t, "", fitCell(pdf, long, 1))
}

func TestEngine_ExportPDF_LongCells(t *testing.T) {
	e := NewEngine(time.UTC, fixedClock(at("2024-01-04T00:00")))
	records := fixture()
	records[0].GuestName = strings.Repeat("Wijesinghe ", 20)
	records[0].GuestRoom = strings.Repeat("9", 40)

	var buf bytes.Buffer
	_, err := e.ExportPDF(&buf, records, Aggregate(records))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFormat(t *testing.T) {
	assert.True(t, FormatCSV.Valid())
	assert.True(t, FormatPDF.Valid())
	assert.False(t, Format("xlsx").Valid())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}
