package datetime

import (
	"encoding/json"
	"time"
)

// Date is a calendar day that serializes as an ISO-8601 date string.
type Date struct {
	time.Time
}

// NewDate wraps t, dropping its clock part.
func NewDate(t time.Time) Date {
	return Date{Time: Truncate(t)}
}

// String renders the date in DateLayout.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON emits the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
