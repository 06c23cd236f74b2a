package api

// AttendanceCreateRequest is the payload for POST /attendances, forwarded to
// Personio as-is.
type AttendanceCreateRequest struct {
	Attendances []AttendancePeriod `json:"attendances"`
}

// AttendancePeriod is one worked period. Times are HH:MM.
type AttendancePeriod struct {
	Employee  int64  `json:"employee"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Break     int    `json:"break"`
	Comment   string `json:"comment,omitempty"`
	ProjectID *int64 `json:"project_id,omitempty"`
}

// TimeOffCreateRequest is the payload for POST /time-offs.
type TimeOffCreateRequest struct {
	EmployeeID    int64  `json:"employee_id"`
	TimeOffTypeID int64  `json:"time_off_type_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	HalfDayStart  bool   `json:"half_day_start"`
	HalfDayEnd    bool   `json:"half_day_end"`
	Comment       string `json:"comment,omitempty"`
	SkipApproval  bool   `json:"skip_approval,omitempty"`
}
