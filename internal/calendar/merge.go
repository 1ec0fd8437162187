package calendar

import (
	"fmt"
	"time"

	"github.com/antzucaro/matchr"
)

// Merge unions two calendars of the same year into a new one, neither input
// is modified. Releases of a come first, then the releases of b that a did
// not already have on that day.
func Merge(a, b *Calendar) *Calendar {
	out := New(a.Year)
	add := func(month time.Month, day int, release Release) {
		out.AddRelease(month, day, release)
	}
	a.Each(add)
	b.Each(add)
	return out
}

// Date is a month and day inside a calendar's year.
type Date struct {
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%s %d", d.Month, d.Day)
}

// ConflictKind describes why two releases were flagged.
type ConflictKind int

const (
	// CONFLICT_DATE is the same release listed on different days.
	CONFLICT_DATE ConflictKind = iota
	// CONFLICT_SPELLING is two nearly identical releases on the same day.
	CONFLICT_SPELLING
)

func (k ConflictKind) String() string {
	switch k {
	case CONFLICT_DATE:
		return "date"
	case CONFLICT_SPELLING:
		return "spelling"
	default:
		return fmt.Sprintf("ConflictKind(%d)", int(k))
	}
}

// Conflict is a data quality issue between two calendars, merging keeps
// both sides regardless.
type Conflict struct {
	Kind  ConflictKind
	Left  Release
	Right Release
	// LeftDate and RightDate are equal for CONFLICT_SPELLING.
	LeftDate   Date
	RightDate  Date
	Similarity float64
}

// similarityThreshold is the Jaro-Winkler score above which two different
// "artist - album" strings are considered a spelling variant.
const similarityThreshold = 0.97

// Conflicts lists the releases of a and b that disagree: the same release
// listed on different days, and near-identical spellings on the same day.
func Conflicts(a, b *Calendar) []Conflict {
	type located struct {
		date    Date
		release Release
	}

	leftIndex := map[string][]located{}
	a.Each(func(month time.Month, day int, release Release) {
		key := release.String()
		leftIndex[key] = append(leftIndex[key], located{
			date:    Date{Month: month, Day: day},
			release: release,
		})
	})

	var conflicts []Conflict
	b.Each(func(month time.Month, day int, right Release) {
		rightDate := Date{Month: month, Day: day}

		matches := leftIndex[right.String()]
		sameDay := false
		for _, left := range matches {
			if left.date == rightDate {
				sameDay = true
				break
			}
		}
		if len(matches) > 0 && !sameDay {
			conflicts = append(conflicts, Conflict{
				Kind:       CONFLICT_DATE,
				Left:       matches[0].release,
				Right:      right,
				LeftDate:   matches[0].date,
				RightDate:  rightDate,
				Similarity: 1,
			})
			return
		}
		if sameDay {
			return
		}

		for _, left := range a.Releases(month, day) {
			similarity := matchr.JaroWinkler(left.String(), right.String(), false)
			if similarity < similarityThreshold {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Kind:       CONFLICT_SPELLING,
				Left:       left,
				Right:      right,
				LeftDate:   rightDate,
				RightDate:  rightDate,
				Similarity: similarity,
			})
			break
		}
	})
	return conflicts
}
