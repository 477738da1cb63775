package app

// DayRecord represents a single parsed schedule entry
type DayRecord struct {
	Date      string `json:"date"`
	Goal      string `json:"goal"`
	Milestone string `json:"milestone"`
}

// ScheduleRequest holds the three caller-supplied strings of one generation
type ScheduleRequest struct {
	Task      string
	StartDate string
	Deadline  string
}

// DownloadRequest is the body of POST /api/schedule
type DownloadRequest struct {
	Task         string `json:"task" form:"task"`
	StartDate    string `json:"start_date" form:"start_date"`
	Deadline     string `json:"deadline" form:"deadline"`
	Format       string `json:"format" form:"format"`
	ReminderTime string `json:"reminder_time" form:"reminder_time"`
}

// ScheduleRequest returns the generation inputs of the download
func (d DownloadRequest) ScheduleRequest() ScheduleRequest {
	return ScheduleRequest{Task: d.Task, StartDate: d.StartDate, Deadline: d.Deadline}
}

// Schedule is the JSON export document
type Schedule struct {
	Task      string      `json:"task"`
	StartDate string      `json:"start_date"`
	Deadline  string      `json:"deadline"`
	Records   []DayRecord `json:"records"`
}
