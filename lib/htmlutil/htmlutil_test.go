package htmlutil

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFragmentAnchors(t *testing.T) {
	fragment := `<a href="https://www.metal-archives.com/bands/Kill_the_Lord/3540526717">Kill the Lord</a> / ` +
		`<a href="https://www.metal-archives.com/bands/Fessus/3540441563">Fessus</a>`

	anchors, err := FragmentAnchors(context.Background(), fragment)
	require.NoError(t, err)

	diff := cmp.Diff([]Anchor{
		{Name: "Kill the Lord", Href: "https://www.metal-archives.com/bands/Kill_the_Lord/3540526717"},
		{Name: "Fessus", Href: "https://www.metal-archives.com/bands/Fessus/3540441563"},
	}, anchors)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFragmentAnchorsCleansNames(t *testing.T) {
	anchors, err := FragmentAnchors(context.Background(), "<a href=\"/albums/x\">\n  Hell,   Fire\tand Damnation \n</a>")
	require.NoError(t, err)
	require.Len(t, anchors, 1)
	require.Equal(t, "Hell, Fire and Damnation", anchors[0].Name)
	require.Equal(t, "/albums/x", anchors[0].Href)
}

func TestFragmentAnchorsEmpty(t *testing.T) {
	anchors, err := FragmentAnchors(context.Background(), "no links here")
	require.NoError(t, err)
	require.Empty(t, anchors)
}

func TestFragmentText(t *testing.T) {
	text, err := FragmentText("November 15th, 2024 <!-- 2024-11-15 -->")
	require.NoError(t, err)
	require.Equal(t, "November 15th, 2024", text)

	text, err = FragmentText("<b>Full-length</b>")
	require.NoError(t, err)
	require.Equal(t, "Full-length", text)
}
