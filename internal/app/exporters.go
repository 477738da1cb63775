package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ContentTypes maps each export format to its MIME type
var ContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatJSON: "application/json; charset=utf-8",
	FormatICS:  "text/calendar; charset=utf-8",
}

var dayNumberPattern = regexp.MustCompile(`(?i)^day\s*(\d+)`)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// Export writes records in the requested format
func Export(w io.Writer, renderer *Renderer, req DownloadRequest, records []DayRecord) error {
	switch req.Format {
	case FormatPDF, "":
		return WritePDF(w, renderer, req.Task, records)
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, req.ScheduleRequest(), records)
	case FormatICS:
		WriteICS(w, req.ScheduleRequest(), req.ReminderTime, records)
		return nil
	default:
		return fmt.Errorf("%s: %q", ErrInvalidFormat, req.Format)
	}
}

// SetAttachment marks the response as a file download named after the task
func SetAttachment(w http.ResponseWriter, format, task string) {
	w.Header().Set("Content-Type", ContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, DownloadFilename(task, format)))
}

// WritePDF renders records as a table document
func WritePDF(w io.Writer, renderer *Renderer, task string, records []DayRecord) error {
	doc, err := renderer.RenderSchedule(DocumentTitle(task), records)
	if err != nil {
		return err
	}
	_, err = w.Write(doc)
	return err
}

// WriteCSV writes one row per day under the table header
func WriteCSV(w io.Writer, records []DayRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HeaderCells[:]); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Date, rec.Goal, rec.Milestone}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the request and the parsed records
func WriteJSON(w io.Writer, req ScheduleRequest, records []DayRecord) error {
	if records == nil {
		records = []DayRecord{}
	}
	return json.NewEncoder(w).Encode(Schedule{
		Task:      req.Task,
		StartDate: req.StartDate,
		Deadline:  req.Deadline,
		Records:   records,
	})
}

// WriteICS writes an iCalendar file with one all-day event per day.
// Day N is placed on StartDate + N-1. Records without a day number are
// skipped, and so is every record when StartDate is not YYYY-MM-DD.
func WriteICS(w io.Writer, req ScheduleRequest, reminderTime string, records []DayRecord) {
	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", ICSProductID)
	fmt.Fprintf(w, "X-WR-CALNAME:%s\n", icsEscaper.Replace(DocumentTitle(req.Task)))
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")

	start, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err == nil {
		stamp := time.Now().UTC().Format("20060102T150405Z")
		slug := DownloadFilename(req.Task, "")

		for _, rec := range records {
			n, ok := DayNumber(rec.Date)
			if !ok {
				continue
			}
			eventDate := start.AddDate(0, 0, n-1)
			summary := rec.Goal
			if summary == "" {
				summary = rec.Date
			}

			fmt.Fprintln(w, "BEGIN:VEVENT")
			fmt.Fprintf(w, "UID:%s-day%d-%s@ai-scheduler\n", eventDate.Format("20060102"), n, slug)
			fmt.Fprintf(w, "DTSTAMP:%s\n", stamp)
			fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\n", eventDate.Format("20060102"))
			fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\n", eventDate.AddDate(0, 0, 1).Format("20060102"))
			fmt.Fprintf(w, "SUMMARY:%s\n", icsEscaper.Replace(summary))
			if rec.Milestone != "" {
				fmt.Fprintf(w, "DESCRIPTION:Milestone: %s\n", icsEscaper.Replace(rec.Milestone))
			}
			if reminderTime != "" {
				AddAlarm(w, reminderTime, summary)
			}
			fmt.Fprintln(w, "END:VEVENT")
		}
	}

	fmt.Fprintln(w, "END:VCALENDAR")
}

// AddAlarm adds a same-day reminder at alarmTime (HH:MM) to an all-day event
func AddAlarm(w io.Writer, alarmTime string, description string) {
	hourStr, minuteStr, ok := strings.Cut(alarmTime, ":")
	if !ok {
		return
	}
	hour, err1 := strconv.Atoi(hourStr)
	minute, err2 := strconv.Atoi(minuteStr)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return
	}

	// all-day events start at midnight, so the offset is the time of day
	fmt.Fprintln(w, "BEGIN:VALARM")
	fmt.Fprintln(w, "ACTION:DISPLAY")
	fmt.Fprintf(w, "DESCRIPTION:Reminder: %s\n", icsEscaper.Replace(description))
	fmt.Fprintf(w, "TRIGGER:PT%dH%dM\n", hour, minute)
	fmt.Fprintln(w, "END:VALARM")
}

// DayNumber reads N from a "Day N..." date cell
func DayNumber(date string) (int, bool) {
	m := dayNumberPattern.FindStringSubmatch(strings.TrimSpace(date))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
