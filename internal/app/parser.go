package app

import (
	"strings"
)

// Reasons a line is left out of the parsed schedule
const (
	ReasonUnrecognized    = "unrecognized"
	ReasonOrphanMilestone = "milestone before any day"
)

const (
	dayKeyword       = "day"
	milestoneKeyword = "milestone"
	daySeparator     = " - "
)

// IgnoredLine is a non-empty input line that did not contribute to any record
type IgnoredLine struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// ParseReport is the parser output plus diagnostics about dropped lines
type ParseReport struct {
	Records []DayRecord
	Ignored []IgnoredLine
}

type parseState int

const (
	stateNoRecord parseState = iota
	stateInRecord
)

// scheduleParser accumulates records line by line
type scheduleParser struct {
	state   parseState
	current DayRecord
	report  ParseReport
}

// ParseSchedule converts generator output into day records in input order.
// Text that contains no "Day" lines, including an error message, yields no records.
func ParseSchedule(text string) []DayRecord {
	return ParseScheduleReport(text).Records
}

// ParseScheduleReport parses like ParseSchedule and also reports every line
// that was dropped and why.
func ParseScheduleReport(text string) ParseReport {
	p := &scheduleParser{}
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		p.feed(i+1, line)
	}
	p.commit()

	if p.report.Records == nil {
		p.report.Records = []DayRecord{}
	}
	return p.report
}

func (p *scheduleParser) feed(lineNo int, line string) {
	lower := strings.ToLower(line)

	switch {
	case strings.HasPrefix(lower, dayKeyword):
		p.commit()
		date, goal, found := strings.Cut(line, daySeparator)
		if !found {
			date, goal = line, ""
		}
		p.current = DayRecord{Date: strings.TrimSpace(date), Goal: strings.TrimSpace(goal)}
		p.state = stateInRecord

	case strings.HasPrefix(lower, milestoneKeyword):
		if p.state != stateInRecord {
			p.ignore(lineNo, line, ReasonOrphanMilestone)
			return
		}
		p.current.Milestone = milestoneText(line)

	default:
		p.ignore(lineNo, line, ReasonUnrecognized)
	}
}

// commit appends the in-progress record if it has a date
func (p *scheduleParser) commit() {
	if p.state == stateInRecord && p.current.Date != "" {
		p.report.Records = append(p.report.Records, p.current)
	}
	p.current = DayRecord{}
	p.state = stateNoRecord
}

func (p *scheduleParser) ignore(lineNo int, line, reason string) {
	p.report.Ignored = append(p.report.Ignored, IgnoredLine{Line: lineNo, Text: line, Reason: reason})
}

// milestoneText returns everything after the first colon, or after the
// keyword when the line has no colon
func milestoneText(line string) string {
	if _, after, found := strings.Cut(line, ":"); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(skipRunes(line, len(milestoneKeyword)))
}

// skipRunes drops the first n runes of s. The keyword match runs on the
// lowered line, which can differ from the original in byte length.
func skipRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}
