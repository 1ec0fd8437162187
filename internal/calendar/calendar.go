package calendar

import (
	"slices"
	"time"

	"heavymetal-notifier/internal/components/assert"
)

// Releases maps a day of the month (1-31, not validated against the month's
// length) to the releases of that day in insertion order.
type Releases map[int][]Release

// Calendar holds one year of releases indexed by month and day.
//
// A Calendar is owned by whoever is building it, it is not safe for
// concurrent mutation.
type Calendar struct {
	Year   int
	months [12]Releases
}

// New creates an empty calendar, every month is present.
func New(year int) *Calendar {
	c := &Calendar{Year: year}
	for i := range c.months {
		c.months[i] = Releases{}
	}
	return c
}

// AddRelease appends a release to a day unless an equal release is already there.
func (c *Calendar) AddRelease(month time.Month, day int, release Release) {
	assert.ValidMonth(month)

	releases := c.months[month-1]
	for _, existing := range releases[day] {
		if existing.Equal(release) {
			return
		}
	}
	releases[day] = append(releases[day], release)
}

// Releases returns the releases of a given day, nil if there are none.
func (c *Calendar) Releases(month time.Month, day int) []Release {
	assert.ValidMonth(month)
	return c.months[month-1][day]
}

// Month returns the day map of a month, it is never nil.
func (c *Calendar) Month(month time.Month) Releases {
	assert.ValidMonth(month)
	return c.months[month-1]
}

// Days returns the days of a month that have at least one release, ascending.
func (c *Calendar) Days(month time.Month) []int {
	releases := c.Month(month)
	days := make([]int, 0, len(releases))
	for day, list := range releases {
		if len(list) == 0 {
			continue
		}
		days = append(days, day)
	}
	slices.Sort(days)
	return days
}

// Each calls fn for every release, months and days ascending, releases of
// the same day in insertion order.
func (c *Calendar) Each(fn func(month time.Month, day int, release Release)) {
	for month := time.January; month <= time.December; month++ {
		for _, day := range c.Days(month) {
			for _, release := range c.months[month-1][day] {
				fn(month, day, release)
			}
		}
	}
}

// Len is the total number of releases in the calendar.
func (c *Calendar) Len() int {
	n := 0
	for _, releases := range c.months {
		for _, list := range releases {
			n += len(list)
		}
	}
	return n
}

// Map returns a copy of the calendar with fn applied to every release.
// fn must not change the artist or album of a release.
func (c *Calendar) Map(fn func(month time.Month, day int, release Release) Release) *Calendar {
	out := New(c.Year)
	c.Each(func(month time.Month, day int, release Release) {
		out.AddRelease(month, day, fn(month, day, release))
	})
	return out
}
