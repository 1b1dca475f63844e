// Package ledger tracks what the bot has already posted and how much of
// each external API budget the current day and month have consumed. The
// durable record lives in a Google Sheet; a local bbolt cache keeps URL
// dedupe cheap between runs.
package ledger

import (
	"errors"
	"time"
)

// Budget errors. Callers treat an exhausted budget as a successful
// no-op run, not a failure.
var (
	ErrNewsBudgetExhausted      = errors.New("monthly news API request budget exhausted")
	ErrDailyPostBudgetReached   = errors.New("daily post budget reached")
	ErrMonthlyPostBudgetReached = errors.New("monthly post budget reached")
)

// Budgets caps external API spend.
type Budgets struct {
	NewsRequestsPerMonth int
	PostsPerDay          int
	PostsPerMonth        int
}

// Usage holds the spend counters carried in the ledger.
type Usage struct {
	NewsAPIRequests int
	PostsToday      int
	PostsThisMonth  int
	LastPostTime    time.Time
}

// State is one loaded ledger snapshot.
type State struct {
	PostedURLs []string
	Usage      Usage
}

// Rollover resets the day and month counters when now has crossed a
// calendar boundary since the last post.
func (u *Usage) Rollover(now time.Time) {
	if u.LastPostTime.IsZero() {
		return
	}

	ly, lm, ld := u.LastPostTime.Date()
	ny, nm, nd := now.Date()

	if ly != ny || lm != nm || ld != nd {
		u.PostsToday = 0
	}
	if ly != ny || lm != nm {
		u.PostsThisMonth = 0
	}
}

// CheckNewsBudget reports whether another news API request fits the
// monthly budget.
func (u Usage) CheckNewsBudget(b Budgets) error {
	if u.NewsAPIRequests >= b.NewsRequestsPerMonth {
		return ErrNewsBudgetExhausted
	}
	return nil
}

// CheckPostBudget reports whether another post fits the daily and
// monthly budgets. Counters must be rolled over first.
func (u Usage) CheckPostBudget(b Budgets) error {
	if u.PostsToday >= b.PostsPerDay {
		return ErrDailyPostBudgetReached
	}
	if u.PostsThisMonth >= b.PostsPerMonth {
		return ErrMonthlyPostBudgetReached
	}
	return nil
}

// RecordNewsRequest counts one news API request.
func (u *Usage) RecordNewsRequest() {
	u.NewsAPIRequests++
}

// RecordPost counts one published post at the given time.
func (u *Usage) RecordPost(now time.Time) {
	u.PostsToday++
	u.PostsThisMonth++
	u.LastPostTime = now
}
