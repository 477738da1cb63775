package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportRecords = []DayRecord{
	{Date: "Day 1: Aug 20", Goal: "Read 50 pages", Milestone: "50 pages done"},
	{Date: "Day 2: Aug 21", Goal: "Read, then summarize", Milestone: "Summary; 1 page"},
}

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	WriteICS(&buf, ScheduleRequest{Task: "Read a book", StartDate: "2025-08-20", Deadline: "2025-08-21"}, "07:30", exportRecords)
	body := buf.String()

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ICSProductID,
		"X-WR-CALNAME:Schedule: Read a book",
		"BEGIN:VEVENT",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		assert.Contains(t, body, field)
	}

	// Day N lands on start + N-1 as an all-day event
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20250820")
	assert.Contains(t, body, "DTEND;VALUE=DATE:20250821")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20250821")
	assert.Contains(t, body, "DTEND;VALUE=DATE:20250822")

	assert.Contains(t, body, "SUMMARY:Read 50 pages")
	assert.Contains(t, body, `SUMMARY:Read\, then summarize`)
	assert.Contains(t, body, `DESCRIPTION:Milestone: Summary\; 1 page`)

	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
	assert.Equal(t, 2, strings.Count(body, "BEGIN:VALARM"))
	assert.Contains(t, body, "TRIGGER:PT7H30M")
}

func TestWriteICS_SkipsUnplaceableRecords(t *testing.T) {
	t.Run("record without day number", func(t *testing.T) {
		var buf bytes.Buffer
		WriteICS(&buf, ScheduleRequest{StartDate: "2025-08-20"}, "", []DayRecord{
			{Date: "Day 3: Fri", Goal: "Ship"},
			{Date: "Daily review", Goal: "Reflect"},
		})
		body := buf.String()

		assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
		assert.Contains(t, body, "DTSTART;VALUE=DATE:20250822")
		assert.NotContains(t, body, "BEGIN:VALARM")
	})

	t.Run("unparseable start date", func(t *testing.T) {
		var buf bytes.Buffer
		WriteICS(&buf, ScheduleRequest{StartDate: "next monday"}, "", exportRecords)
		body := buf.String()

		assert.NotContains(t, body, "BEGIN:VEVENT")
		assert.Contains(t, body, "END:VCALENDAR")
	})
}

func TestAddAlarm(t *testing.T) {
	tests := []struct {
		name        string
		alarmTime   string
		wantTrigger string
	}{
		{name: "morning", alarmTime: "07:00", wantTrigger: "TRIGGER:PT7H0M"},
		{name: "evening with minutes", alarmTime: "18:45", wantTrigger: "TRIGGER:PT18H45M"},
		{name: "midnight", alarmTime: "00:00", wantTrigger: "TRIGGER:PT0H0M"},
		{name: "missing colon", alarmTime: "0700"},
		{name: "not a number", alarmTime: "aa:bb"},
		{name: "out of range", alarmTime: "25:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			AddAlarm(&buf, tt.alarmTime, "Read")
			output := buf.String()

			if tt.wantTrigger == "" {
				assert.Empty(t, output)
				return
			}
			assert.Contains(t, output, "BEGIN:VALARM")
			assert.Contains(t, output, "ACTION:DISPLAY")
			assert.Contains(t, output, "DESCRIPTION:Reminder: Read")
			assert.Contains(t, output, tt.wantTrigger)
			assert.Contains(t, output, "END:VALARM")
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportRecords))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Day / Date", "Goal", "Milestone"}, rows[0])
	assert.Equal(t, []string{"Day 2: Aug 21", "Read, then summarize", "Summary; 1 page"}, rows[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	req := ScheduleRequest{Task: "Read", StartDate: "2025-08-20", Deadline: "2025-08-21"}
	require.NoError(t, WriteJSON(&buf, req, nil))

	var got Schedule
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Read", got.Task)
	assert.Equal(t, "2025-08-20", got.StartDate)
	assert.Equal(t, "2025-08-21", got.Deadline)
	assert.NotNil(t, got.Records)
	assert.Contains(t, buf.String(), `"records":[]`)
}

func TestExport(t *testing.T) {
	renderer := NewRenderer()

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			req := DownloadRequest{Task: "Read", StartDate: "2025-08-20", Format: format}
			require.NoError(t, Export(&buf, renderer, req, exportRecords))
			assert.NotZero(t, buf.Len())
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		err := Export(&buf, renderer, DownloadRequest{Format: "docx"}, exportRecords)
		assert.Error(t, err)
	})
}

func TestSetAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	SetAttachment(w, FormatCSV, "Plan ../my week")

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Plan_my_week.csv"`, w.Header().Get("Content-Disposition"))
}

func TestDayNumber(t *testing.T) {
	tests := []struct {
		date   string
		want   int
		wantOK bool
	}{
		{"Day 1: Aug 20", 1, true},
		{"day 12 - Monday", 12, true},
		{"Day3", 3, true},
		{"  Day 7: Sun", 7, true},
		{"Day 0: nothing", 0, false},
		{"Daily standup", 0, false},
		{"Day one", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			n, ok := DayNumber(tt.date)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}
