// Package schedule holds the time-relative booking rules: the join
// window gate and the upcoming/past lifecycle partition. Both take the
// current time as an argument and must be re-evaluated per call; the
// results are never cached.
package schedule

import (
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
)

// JoinWindow is how long before its scheduled time a session becomes
// joinable.
const JoinWindow = 10 * time.Minute

// Joinable reports whether a session scheduled at scheduledAt can be
// joined at now: strictly in the future, and no more than JoinWindow
// away. Exactly JoinWindow out is joinable; a session whose time has
// passed is not.
func Joinable(scheduledAt, now time.Time) bool {
	return scheduledAt.After(now) && !scheduledAt.After(now.Add(JoinWindow))
}

// Classification partitions bookings for display. Every booking lands
// in exactly one bucket.
type Classification struct {
	Upcoming []domain.Booking `json:"upcoming"`
	Past     []domain.Booking `json:"past"`
}

// Classify buckets each booking: upcoming iff scheduled strictly in the
// future and not in a terminal status, past otherwise. Input order is
// preserved within each bucket; callers sort before classifying.
func Classify(bookings []domain.Booking, now time.Time) Classification {
	c := Classification{
		Upcoming: []domain.Booking{},
		Past:     []domain.Booking{},
	}
	for _, b := range bookings {
		if b.ScheduledAt.After(now) && !b.Status.Terminal() {
			c.Upcoming = append(c.Upcoming, b)
		} else {
			c.Past = append(c.Past, b)
		}
	}
	return c
}
