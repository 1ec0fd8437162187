package calendar

import (
	"net/url"
)

// MetallumInfo is the extra metadata only known for releases scraped from
// the metal archives.
type MetallumInfo struct {
	ArtistLink  string
	AlbumLink   string
	ReleaseType string
	Genre       string
}

// Links are the places a release can be listened to.
type Links struct {
	Youtube  string
	Bandcamp string
}

// Release is one album by one artist (or a split by several, joined with " / ").
//
// Fields are unexported so the only way to obtain a Release is through
// NewRelease or NewMetallumRelease, both of which normalize the album title.
type Release struct {
	artist   string
	album    string
	metallum *MetallumInfo
	links    Links
}

func NewRelease(artist, album string) Release {
	r := Release{
		artist: collapseWhitespace(artist),
		album:  NormalizeAlbumTitle(album),
	}
	r.links.Youtube = youtubeSearchLink(r.artist, r.album)
	return r
}

func NewMetallumRelease(artist, album string, info MetallumInfo) Release {
	r := NewRelease(artist, album)
	r.metallum = &info
	return r
}

func youtubeSearchLink(artist, album string) string {
	query := url.Values{}
	query.Set("search_query", artist+" "+album)
	return "https://www.youtube.com/results?" + query.Encode()
}

func (r Release) Artist() string {
	return r.artist
}

func (r Release) Album() string {
	return r.album
}

// Metallum returns the metal archives metadata, ok is false for releases
// that did not come from there.
func (r Release) Metallum() (info MetallumInfo, ok bool) {
	if r.metallum == nil {
		return MetallumInfo{}, false
	}
	return *r.metallum, true
}

func (r Release) Links() Links {
	return r.links
}

// WithBandcamp returns a copy of the release linking to the given bandcamp page.
func (r Release) WithBandcamp(link *url.URL) Release {
	if link == nil {
		return r
	}
	if r.metallum != nil {
		info := *r.metallum
		r.metallum = &info
	}
	r.links.Bandcamp = link.String()
	return r
}

// Equal reports whether two releases are the same album, metadata and links
// are not compared.
func (r Release) Equal(other Release) bool {
	return r.artist == other.artist && r.album == other.album
}

func (r Release) String() string {
	return r.artist + " - " + r.album
}
