package api

import (
	"errors"
	"fmt"
	"time"
)

var errEmptyBody = errors.New("request body is required")

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Validate checks that AttendanceCreateRequest has all required fields.
func (r *AttendanceCreateRequest) Validate() error {
	if len(r.Attendances) == 0 {
		return fmt.Errorf("attendances must not be empty")
	}
	for i, p := range r.Attendances {
		if err := p.validate(); err != nil {
			return fmt.Errorf("attendances[%d]: %w", i, err)
		}
	}
	return nil
}

func (p *AttendancePeriod) validate() error {
	if p.Employee <= 0 {
		return fmt.Errorf("employee is required")
	}
	if _, err := time.Parse(dateLayout, p.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	start, err := time.Parse(clockLayout, p.StartTime)
	if err != nil {
		return fmt.Errorf("start_time must be HH:MM")
	}
	end, err := time.Parse(clockLayout, p.EndTime)
	if err != nil {
		return fmt.Errorf("end_time must be HH:MM")
	}
	if !end.After(start) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if p.Break < 0 {
		return fmt.Errorf("break must not be negative")
	}
	return nil
}

// Validate checks that TimeOffCreateRequest has all required fields.
func (r *TimeOffCreateRequest) Validate() error {
	if r.EmployeeID <= 0 {
		return fmt.Errorf("employee_id is required")
	}
	if r.TimeOffTypeID <= 0 {
		return fmt.Errorf("time_off_type_id is required")
	}
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return fmt.Errorf("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}
