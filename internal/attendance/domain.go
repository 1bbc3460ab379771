package attendance

import "time"

// Record represents one attendance entry for an employee. ClockOut stays nil
// until the employee clocks out.
type Record struct {
	ID         int64
	EmployeeID int64
	ClockIn    time.Time
	ClockOut   *time.Time
	Note       string
}
