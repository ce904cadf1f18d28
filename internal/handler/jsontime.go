package handler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// DateTime 接受 RFC3339、不带时区的 ISO 时间或纯日期，无时区时按 UTC 处理
type DateTime struct {
	time.Time
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	t, err := parseDateTime(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Date 只保留日期部分
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := parseDateTime(raw)
	if err != nil {
		return err
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func parseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", raw)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDateTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDateTime(*t)
	return &s
}

func optionalTime(v *DateTime) *time.Time {
	if v == nil {
		return nil
	}
	t := v.Time
	return &t
}
