// Package schedule evaluates the fixed schedule vocabulary used by tick
// jobs: a small set of human aliases (every-minute, hourly, daily, ...)
// and their 5-field cron equivalents.
//
// Evaluation is pure and happens in UTC. Expressions outside the
// vocabulary degrade to a conservative 5-minute step; callers decide
// whether that deserves a warning.
package schedule

import (
	"strings"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// Supported aliases. Each also has a 5-field cron equivalent that is
// accepted interchangeably.
const (
	EveryMinute    = "every-minute"
	Every5Minutes  = "every-5-minutes"
	Every15Minutes = "every-15-minutes"
	Every30Minutes = "every-30-minutes"
	Hourly         = "hourly"
	Daily          = "daily"
	Weekly         = "weekly"
)

// FallbackInterval is the conservative step applied to expressions
// outside the vocabulary, keeping the job alive rather than parking it.
const FallbackInterval = 5 * time.Minute

// spec describes how one vocabulary entry advances time. The minute
// family uses plain addition (seconds preserved); the hour-and-up family
// delegates to the parsed cron equivalent, whose activation semantics
// (strictly future, sub-minute fields zeroed) match the contract.
type spec struct {
	every time.Duration
	cron  cronlib.Schedule
}

// parser accepts standard 5-field expressions, minute through day-of-week.
var parser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

var cronEquivalent = map[string]string{
	EveryMinute:    "* * * * *",
	Every5Minutes:  "*/5 * * * *",
	Every15Minutes: "*/15 * * * *",
	Every30Minutes: "*/30 * * * *",
	Hourly:         "0 * * * *",
	Daily:          "0 0 * * *",
	Weekly:         "0 0 * * 0",
}

var (
	vocabulary = map[string]spec{}
	aliasOf    = map[string]string{}
)

func init() {
	intervals := map[string]time.Duration{
		EveryMinute:    time.Minute,
		Every5Minutes:  5 * time.Minute,
		Every15Minutes: 15 * time.Minute,
		Every30Minutes: 30 * time.Minute,
	}

	for alias, expr := range cronEquivalent {
		s := spec{every: intervals[alias]}
		if s.every == 0 {
			parsed, err := parser.Parse(expr)
			if err != nil {
				panic("schedule: bad canonical expression " + expr + ": " + err.Error())
			}
			s.cron = parsed
		}
		vocabulary[alias] = s
		aliasOf[alias] = alias
		aliasOf[normalize(expr)] = alias
	}
}

// normalize lowercases, trims, and collapses internal whitespace so
// "0 0  * * *" and "0 0 * * *" resolve identically.
func normalize(expr string) string {
	return strings.Join(strings.Fields(strings.ToLower(expr)), " ")
}

// Canonical resolves expr (alias or cron form, case-insensitive) to its
// human alias. The second return is false when expr is outside the
// vocabulary.
func Canonical(expr string) (string, bool) {
	alias, ok := aliasOf[normalize(expr)]
	return alias, ok
}

// Known reports whether expr is in the supported vocabulary.
// The empty expression counts as known: it means "never reschedule".
func Known(expr string) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}
	_, ok := Canonical(expr)
	return ok
}

// Next computes the next run instant for expr strictly after from, in UTC.
//
// The boolean reports whether expr was recognized. Unrecognized non-empty
// expressions return from + FallbackInterval with known=false so the job
// keeps running on a conservative cadence. An empty expression returns the
// zero time with known=true: the job is never auto-rescheduled.
func Next(expr string, from time.Time) (next time.Time, known bool) {
	if strings.TrimSpace(expr) == "" {
		return time.Time{}, true
	}

	from = from.UTC()

	alias, ok := Canonical(expr)
	if !ok {
		return from.Add(FallbackInterval), false
	}

	s := vocabulary[alias]
	if s.every > 0 {
		return from.Add(s.every), true
	}
	return s.cron.Next(from), true
}
