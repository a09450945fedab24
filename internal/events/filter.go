package events

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
)

// DateBucket is a named window relative to the current day.
type DateBucket string

const (
	DateToday     DateBucket = "today"
	DateTomorrow  DateBucket = "tomorrow"
	DateThisWeek  DateBucket = "this-week"
	DateThisMonth DateBucket = "this-month"
)

// PriceFilter selects free or paid events.
type PriceFilter string

const (
	PriceFree PriceFilter = "free"
	PricePaid PriceFilter = "paid"
)

// Filter holds the optional list constraints. Zero values mean no
// constraint; all set fields must match.
type Filter struct {
	Search   string
	Category models.Category
	Location string
	Date     DateBucket
	Price    PriceFilter
}

// ParseFilter reads a filter from query parameters, rejecting unknown
// enum values.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: models.Category(strings.TrimSpace(q.Get("category"))),
		Location: strings.TrimSpace(q.Get("location")),
		Date:     DateBucket(strings.TrimSpace(q.Get("date"))),
		Price:    PriceFilter(strings.TrimSpace(q.Get("price"))),
	}

	verr := &apperr.ValidationError{}
	if f.Category != "" && !f.Category.Valid() {
		verr.Add("category", fmt.Sprintf("%s is not a valid category", f.Category))
	}
	switch f.Date {
	case "", DateToday, DateTomorrow, DateThisWeek, DateThisMonth:
	default:
		verr.Add("date", fmt.Sprintf("%s is not a valid date filter", f.Date))
	}
	switch f.Price {
	case "", PriceFree, PricePaid:
	default:
		verr.Add("price", fmt.Sprintf("%s is not a valid price filter", f.Price))
	}
	return f, verr.Err()
}

// Window returns the [from, to) range of bucket b for the day containing
// now, in now's location. ok is false for an empty or unknown bucket.
func (b DateBucket) Window(now time.Time) (from, to time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch b {
	case DateToday:
		return today, today.AddDate(0, 0, 1), true
	case DateTomorrow:
		return today.AddDate(0, 0, 1), today.AddDate(0, 0, 2), true
	case DateThisWeek:
		return today, today.AddDate(0, 0, 7), true
	case DateThisMonth:
		return today, time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, time.Time{}, false
}

// Matches reports whether e satisfies every set field of f.
func (f Filter) Matches(e *models.Event, now time.Time) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) {
			return false
		}
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Location != "" && e.Location != f.Location {
		return false
	}
	if from, to, ok := f.Date.Window(now); ok {
		if e.Date.Before(from) || !e.Date.Before(to) {
			return false
		}
	}
	switch f.Price {
	case PriceFree:
		if e.Price != 0 {
			return false
		}
	case PricePaid:
		if e.Price <= 0 {
			return false
		}
	}
	return true
}

// List returns the events matching f ordered by date. Events sharing a
// date keep their input order. The input slice is not reordered.
func List(all []*models.Event, f Filter, now time.Time) []*models.Event {
	out := make([]*models.Event, 0, len(all))
	for _, e := range all {
		if f.Matches(e, now) {
			out = append(out, e)
		}
	}
	sortByDate(out)
	return out
}

// CreatedBy returns the events userID created, ordered by date.
func CreatedBy(all []*models.Event, userID string) []*models.Event {
	var out []*models.Event
	for _, e := range all {
		if e.Creator == userID {
			out = append(out, e)
		}
	}
	sortByDate(out)
	return out
}

// AttendingAs returns the events where userID holds a going RSVP,
// ordered by date.
func AttendingAs(all []*models.Event, userID string) []*models.Event {
	var out []*models.Event
	for _, e := range all {
		if i := e.AttendeeFor(userID); i >= 0 && e.Attendees[i].Status == models.RSVPStatusGoing {
			out = append(out, e)
		}
	}
	sortByDate(out)
	return out
}

func sortByDate(es []*models.Event) {
	sort.SliceStable(es, func(i, j int) bool {
		return es[i].Date.Before(es[j].Date)
	})
}
