// Package errs holds the sentinel errors shared by the scrapers, callers
// should match them with errors.Is.
package errs

import "errors"

var (
	// ErrRequestFail is a transport level failure while fetching a source.
	ErrRequestFail = errors.New("request failed")
	// ErrNoItem is a required element missing from a scraped record.
	ErrNoItem = errors.New("no item")
	// ErrParseFail is a date or number that could not be parsed.
	ErrParseFail = errors.New("parse failed")
	// ErrScraperFail is a selector or decoder that could not run at all.
	ErrScraperFail = errors.New("scraper failed")
)
