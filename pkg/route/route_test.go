package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func folder(s string) *string { return &s }

func testTable() []Destination {
	return []Destination{
		{Folder: folder("camA"), ChatID: -100100, TopicID: 318},
		{Folder: folder("camB"), ChatID: -100200, TopicID: 668},
		{Folder: nil, ChatID: -100900},
	}
}

func TestRouteExactFolder(t *testing.T) {
	r := NewRouter(testTable())

	d, err := r.Route("/camA")
	require.NoError(t, err)
	assert.Equal(t, int64(-100100), d.ChatID)
	assert.Equal(t, 318, d.TopicID)

	d, err = r.Route("/camB")
	require.NoError(t, err)
	assert.Equal(t, int64(-100200), d.ChatID)
}

func TestRouteIgnoresNestingDepth(t *testing.T) {
	r := NewRouter(testTable())

	shallow, err := r.Route("/camA")
	require.NoError(t, err)
	deep, err := r.Route("/camA/sub/deep")
	require.NoError(t, err)
	assert.Equal(t, shallow, deep)
}

func TestRouteRootUsesCatchAll(t *testing.T) {
	r := NewRouter(testTable())

	d, err := r.Route("/")
	require.NoError(t, err)
	assert.True(t, d.IsCatchAll())
	assert.Equal(t, int64(-100900), d.ChatID)
}

func TestRouteUnmatchedUsesCatchAll(t *testing.T) {
	r := NewRouter(testTable())

	d, err := r.Route("/unknown")
	require.NoError(t, err)
	assert.Equal(t, int64(-100900), d.ChatID)
}

func TestRouteTotalWithCatchAll(t *testing.T) {
	r := NewRouter(testTable())
	for _, p := range []string{"/", "/camA", "/x", "/x/y/z", "//camB//", ""} {
		_, err := r.Route(p)
		assert.NoError(t, err, "path %q", p)
	}
}

func TestRouteNoCatchAll(t *testing.T) {
	r := NewRouter([]Destination{{Folder: folder("camA"), ChatID: 1}})
	assert.False(t, r.HasCatchAll())

	_, err := r.Route("/camA")
	assert.NoError(t, err)

	_, err = r.Route("/other")
	assert.ErrorIs(t, err, ErrNoDestination)
}

func TestRouteTrimsSeparators(t *testing.T) {
	r := NewRouter(testTable())
	d, err := r.Route("//camA//")
	require.NoError(t, err)
	assert.Equal(t, int64(-100100), d.ChatID)
}

func TestFolders(t *testing.T) {
	r := NewRouter(testTable())
	assert.ElementsMatch(t, []string{"camA", "camB"}, r.Folders())
}

func TestDuplicateEntries(t *testing.T) {
	r := NewRouter([]Destination{
		{Folder: folder("cam"), ChatID: 1},
		{Folder: folder("cam"), ChatID: 2},
		{Folder: nil, ChatID: 10},
		{Folder: nil, ChatID: 20},
	})

	d, err := r.Route("/cam")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ChatID, "first folder entry wins")

	d, err = r.Route("/")
	require.NoError(t, err)
	assert.Equal(t, int64(10), d.ChatID, "first catch-all wins")
}
