package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("heavymetal.lib.htmlutil")

// GetText concatenates the text nodes under node, comments are skipped.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims the text, drops non-printable runes and collapses inner
// whitespace.
func CleanText(text string) string {
	text = removeNonPrintable(text)
	text = strings.Trim(text, " \t\n\r")
	text = innerWhitespace.ReplaceAllString(text, " ")
	return text
}

// GetAnchors reads the name and href of every node in sel, nodes with an
// unparsable href are skipped.
func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := CleanText(GetText(n))

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}

// ParseFragment parses a snippet of HTML (ex. a single table cell) into a
// document.
func ParseFragment(fragment string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(fragment))
}

// FragmentAnchors returns every <a> inside an HTML snippet.
func FragmentAnchors(ctx context.Context, fragment string) ([]Anchor, error) {
	doc, err := ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	return GetAnchors(ctx, doc.Find("a")), nil
}

// FragmentText returns the cleaned text of an HTML snippet, comments and
// tags removed.
func FragmentText(fragment string) (string, error) {
	doc, err := ParseFragment(fragment)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, n := range doc.Nodes {
		out.WriteString(GetText(n))
	}
	return CleanText(out.String()), nil
}
