package models

import "time"

const (
	// DateFormat is the only format accepted for submitted dates.
	DateFormat        = "2006-01-02"
	displayDateFormat = "January 2, 2006"
)

// ParseDate coerces a submitted date into a concrete value. Empty or
// malformed input yields nil.
func ParseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders a date the way it's submitted, for form inputs.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateFormat)
}

func DisplayDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(displayDateFormat)
}
