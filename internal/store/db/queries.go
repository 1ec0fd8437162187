package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const deleteReleasesOfYear = `-- name: DeleteReleasesOfYear :exec
delete from releases where year = ?
`

func (q *Queries) DeleteReleasesOfYear(ctx context.Context, year int64) error {
	_, err := q.db.ExecContext(ctx, deleteReleasesOfYear, year)
	return err
}

const upsertArtist = `-- name: UpsertArtist :one
insert into artists (name, genre, url_bandcamp, url_metallum)
values (?, ?, ?, ?)
on conflict (name) do update set
    genre = coalesce(excluded.genre, artists.genre),
    url_bandcamp = coalesce(excluded.url_bandcamp, artists.url_bandcamp),
    url_metallum = coalesce(excluded.url_metallum, artists.url_metallum)
returning id
`

type UpsertArtistParams struct {
	Name        string
	Genre       sql.NullString
	UrlBandcamp sql.NullString
	UrlMetallum sql.NullString
}

func (q *Queries) UpsertArtist(ctx context.Context, arg UpsertArtistParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertArtist,
		arg.Name,
		arg.Genre,
		arg.UrlBandcamp,
		arg.UrlMetallum,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createRelease = `-- name: CreateRelease :exec
insert into releases (year, month, day, artist_id, album, release_type, url_youtube, url_metallum)
values (?, ?, ?, ?, ?, ?, ?, ?)
on conflict do nothing
`

type CreateReleaseParams struct {
	Year        int64
	Month       int64
	Day         int64
	ArtistID    int64
	Album       string
	ReleaseType sql.NullString
	UrlYoutube  string
	UrlMetallum sql.NullString
}

func (q *Queries) CreateRelease(ctx context.Context, arg CreateReleaseParams) error {
	_, err := q.db.ExecContext(ctx, createRelease,
		arg.Year,
		arg.Month,
		arg.Day,
		arg.ArtistID,
		arg.Album,
		arg.ReleaseType,
		arg.UrlYoutube,
		arg.UrlMetallum,
	)
	return err
}

const getReleasesOn = `-- name: GetReleasesOn :many
select
    artists.name, releases.album, releases.release_type,
    artists.genre, releases.url_youtube, artists.url_bandcamp,
    artists.url_metallum, releases.url_metallum
from releases
inner join artists on artists.id = releases.artist_id
where releases.year = ? and releases.month = ? and releases.day = ?
order by releases.id asc
`

type GetReleasesOnParams struct {
	Year  int64
	Month int64
	Day   int64
}

type GetReleasesOnRow struct {
	Artist            string
	Album             string
	ReleaseType       sql.NullString
	Genre             sql.NullString
	UrlYoutube        string
	UrlBandcamp       sql.NullString
	ArtistUrlMetallum sql.NullString
	AlbumUrlMetallum  sql.NullString
}

func (q *Queries) GetReleasesOn(ctx context.Context, arg GetReleasesOnParams) ([]GetReleasesOnRow, error) {
	rows, err := q.db.QueryContext(ctx, getReleasesOn, arg.Year, arg.Month, arg.Day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetReleasesOnRow
	for rows.Next() {
		var i GetReleasesOnRow
		if err := rows.Scan(
			&i.Artist,
			&i.Album,
			&i.ReleaseType,
			&i.Genre,
			&i.UrlYoutube,
			&i.UrlBandcamp,
			&i.ArtistUrlMetallum,
			&i.AlbumUrlMetallum,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countReleasesOfYear = `-- name: CountReleasesOfYear :one
select count(*) from releases where year = ?
`

func (q *Queries) CountReleasesOfYear(ctx context.Context, year int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countReleasesOfYear, year)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createFeed = `-- name: CreateFeed :exec
insert into feeds (date, feed) values (?, ?)
on conflict (date) do nothing
`

type CreateFeedParams struct {
	Date int64
	Feed string
}

func (q *Queries) CreateFeed(ctx context.Context, arg CreateFeedParams) error {
	_, err := q.db.ExecContext(ctx, createFeed, arg.Date, arg.Feed)
	return err
}

const deleteFeed = `-- name: DeleteFeed :exec
delete from feeds where date = ?
`

func (q *Queries) DeleteFeed(ctx context.Context, date int64) error {
	_, err := q.db.ExecContext(ctx, deleteFeed, date)
	return err
}

const getFeed = `-- name: GetFeed :one
select date, feed from feeds where date = ?
`

type Feed struct {
	Date int64
	Feed string
}

func (q *Queries) GetFeed(ctx context.Context, date int64) (Feed, error) {
	row := q.db.QueryRowContext(ctx, getFeed, date)
	var i Feed
	err := row.Scan(&i.Date, &i.Feed)
	return i, err
}

const getLatestFeeds = `-- name: GetLatestFeeds :many
select date, feed from feeds order by date desc limit ?
`

func (q *Queries) GetLatestFeeds(ctx context.Context, limit int64) ([]Feed, error) {
	rows, err := q.db.QueryContext(ctx, getLatestFeeds, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Feed
	for rows.Next() {
		var i Feed
		if err := rows.Scan(&i.Date, &i.Feed); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
