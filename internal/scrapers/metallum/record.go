package metallum

import (
	"context"
	"fmt"
	"strings"
	"time"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/errs"
	"heavymetal-notifier/lib/htmlutil"
)

const (
	field_artist = iota
	field_album
	field_release_type
	field_genre
	field_date
	field_extra
	field_count
)

// Record is one row of the album search, fields in column order:
// artist cell, album cell, release type, genre, release date and a column
// that is not used.
type Record [field_count]string

func recordFromFields(fields []string) Record {
	var r Record
	copy(r[:], fields)
	return r
}

// ReleaseParts is a decoded Record.
type ReleaseParts struct {
	Artist string
	Album  string
	Date   time.Time
	Info   calendar.MetallumInfo
}

// Release builds the calendar release of the parts.
func (p ReleaseParts) Release() calendar.Release {
	return calendar.NewMetallumRelease(p.Artist, p.Album, p.Info)
}

// DecodeRecord reads a record's embedded HTML. Split releases list one
// anchor per band in the artist cell, their names are joined with " / " and
// only the first band's link is kept.
func DecodeRecord(ctx context.Context, record Record) (ReleaseParts, error) {
	artists, err := htmlutil.FragmentAnchors(ctx, record[field_artist])
	if err != nil {
		return ReleaseParts{}, fmt.Errorf("artist cell: %w: %w", errs.ErrScraperFail, err)
	}
	if len(artists) == 0 {
		return ReleaseParts{}, fmt.Errorf("artist cell %q: %w", record[field_artist], errs.ErrNoItem)
	}

	albums, err := htmlutil.FragmentAnchors(ctx, record[field_album])
	if err != nil {
		return ReleaseParts{}, fmt.Errorf("album cell: %w: %w", errs.ErrScraperFail, err)
	}
	if len(albums) == 0 {
		return ReleaseParts{}, fmt.Errorf("album cell %q: %w", record[field_album], errs.ErrNoItem)
	}

	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}

	dateText, err := htmlutil.FragmentText(record[field_date])
	if err != nil {
		return ReleaseParts{}, fmt.Errorf("date cell: %w: %w", errs.ErrScraperFail, err)
	}
	date, err := calendar.ParseFreeTextDate(dateText)
	if err != nil {
		return ReleaseParts{}, err
	}

	return ReleaseParts{
		Artist: strings.Join(names, " / "),
		Album:  albums[0].Name,
		Date:   date,
		Info: calendar.MetallumInfo{
			ArtistLink:  artists[0].Href,
			AlbumLink:   albums[0].Href,
			ReleaseType: strings.TrimSpace(record[field_release_type]),
			Genre:       strings.TrimSpace(record[field_genre]),
		},
	}, nil
}
