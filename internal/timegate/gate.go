// Package timegate restricts the chat to a single hour of the local day.
package timegate

import (
	"fmt"
	"time"
)

// DefaultHour is the hour the gate opens.
const DefaultHour = 3

// CheckInterval is how often clients re-evaluate the gate.
const CheckInterval = 10 * time.Second

// Gate is open during Hour (local time), or always when Override is set.
type Gate struct {
	Hour     int
	Override bool
}

func New(hour int, override bool) Gate {
	if hour < 0 || hour > 23 {
		hour = DefaultHour
	}
	return Gate{Hour: hour, Override: override}
}

// Open reports whether the gate is open at t.
func (g Gate) Open(t time.Time) bool {
	return g.Override || t.Hour() == g.Hour
}

// Until returns the time from t to the next start of the gate hour. Once the
// hour has started the next opening is the following day.
func (g Gate) Until(t time.Time) time.Duration {
	next := time.Date(t.Year(), t.Month(), t.Day(), g.Hour, 0, 0, 0, t.Location())
	if t.Hour() >= g.Hour {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(t)
}

// Status is the gate state at a point in time.
type Status struct {
	Open         bool   `json:"open" example:"false"`
	Hour         int    `json:"hour" example:"3"`
	Override     bool   `json:"override" example:"false"`
	Countdown    string `json:"countdown" example:"5h 12m"`
	UntilSeconds int64  `json:"untilSeconds" example:"18720"`
}

func (g Gate) Status(t time.Time) Status {
	until := g.Until(t)
	return Status{
		Open:         g.Open(t),
		Hour:         g.Hour,
		Override:     g.Override,
		Countdown:    FormatCountdown(until),
		UntilSeconds: int64(until / time.Second),
	}
}

// FormatCountdown renders d as "Xh Ym", truncating to whole minutes.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}
