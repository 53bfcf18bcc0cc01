package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/session"
	"github.com/sparkcrackers/storefront/pkg/storage"
)

func TestContentDefaults_Embedded(t *testing.T) {
	defaults, err := builtinDefaults()
	require.NoError(t, err)

	for _, id := range []string{"hero_title", "testimonials", "features", "how_it_works"} {
		assert.Contains(t, defaults, id)
	}
	assert.Equal(t, models.KindTestimonials, defaults["testimonials"].Type)
}

func TestParseContentDefaults_Rejects(t *testing.T) {
	_, err := ParseContentDefaults([]byte("sections:\n  - title: no id\n"))
	assert.ErrorContains(t, err, "no contentId")

	_, err = ParseContentDefaults([]byte("sections:\n  - contentId: x\n    type: carousel\n"))
	assert.ErrorContains(t, err, "unknown type")

	_, err = ParseContentDefaults([]byte("sections: [oops"))
	assert.Error(t, err)
}

func TestContent_UnknownIDIsZero(t *testing.T) {
	f := newFakeAPI(t)
	sf, _ := newStorefront(t, f)

	assert.Equal(t, "", sf.Content.Value("no_such_section"))
	assert.Equal(t, map[string]any{}, sf.Content.Metadata("no_such_section"))
	assert.Equal(t, []models.Testimonial{}, sf.Content.Testimonials("no_such_section"))
	assert.Equal(t, []models.Feature{}, sf.Content.Features("no_such_section"))
	assert.Equal(t, []models.Step{}, sf.Content.Steps("no_such_section"))
	assert.Equal(t, models.ContentKind(""), sf.Content.Kind("no_such_section"))
	assert.Equal(t, "fallback", sf.Content.ValueOr("no_such_section", "fallback"))
}

func TestContent_DefaultsServedBeforeFetch(t *testing.T) {
	f := newFakeAPI(t)
	sf, _ := newStorefront(t, f)

	assert.Equal(t, "Light Up Every Celebration", sf.Content.Value("hero_title"))
	assert.Len(t, sf.Content.Testimonials("testimonials"), 3)
	assert.Len(t, sf.Content.Steps("how_it_works"), 3)
	assert.Zero(t, f.total())
}

func TestContent_FetchMergesOverDefaults(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/content", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"_id":"db1","contentId":"hero_title","title":"Hero","content":"Diwali Mega Sale","type":"text"},
			{"_id":"db2","contentId":"sale_banner","content":"50% off","metadata":{"color":"red"}},
			{"_id":"db3","contentId":"features","type":"features","metadata":{"items":[{"title":"Fast","description":"2 day delivery","icon":"truck"}]}}
		]`))
	})
	sf, _ := newStorefront(t, f)

	require.NoError(t, sf.Content.Fetch(context.Background()))

	assert.Equal(t, "Diwali Mega Sale", sf.Content.Value("hero_title"))
	assert.Equal(t, "50% off", sf.Content.Value("sale_banner"))
	assert.Equal(t, models.KindText, sf.Content.Kind("sale_banner"))
	assert.Equal(t, map[string]any{"color": "red"}, sf.Content.Metadata("sale_banner"))
	assert.Equal(t, []models.Feature{{Title: "Fast", Description: "2 day delivery", Icon: "truck"}}, sf.Content.Features("features"))
	assert.Len(t, sf.Content.Testimonials("testimonials"), 3, "sections the backend lacks keep their defaults")

	s, ok := sf.Content.Section("hero_title")
	require.True(t, ok)
	assert.Equal(t, "db1", s.ID)
	assert.Empty(t, sf.Content.Value("db1"), "lookups go by contentId only")
}

func TestContent_FetchedTableMatchesDefaultsPlusServer(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []models.ContentSection{{ID: "db9", ContentID: "about_text", Type: models.KindText, Content: "Since 1990"}})
	})
	sf, _ := newStorefront(t, f)
	require.NoError(t, sf.Content.Fetch(context.Background()))

	defaults, err := builtinDefaults()
	require.NoError(t, err)
	want := make([]models.ContentSection, 0, len(defaults))
	for id, s := range defaults {
		if id == "about_text" {
			s = models.ContentSection{ID: "db9", ContentID: "about_text", Type: models.KindText, Content: "Since 1990"}
		}
		want = append(want, s)
	}

	diff := cmp.Diff(want, sf.Content.All(),
		cmpopts.SortSlices(func(a, b models.ContentSection) bool { return a.ContentID < b.ContentID }),
		cmpopts.EquateEmpty(),
	)
	assert.Empty(t, diff)
}

func TestContent_FetchFailureServesDefaults(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/content", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	sf, _ := newStorefront(t, f)

	err := sf.Content.Fetch(context.Background())
	assert.EqualError(t, err, "Failed to fetch content")
	assert.Equal(t, err, sf.Content.Err())
	assert.False(t, sf.Content.Loading())
	assert.Equal(t, "Light Up Every Celebration", sf.Content.Value("hero_title"))
}

func TestContent_UpdateAdminOnly(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	sf, _ := newStorefront(t, f)

	err := sf.Content.Update(context.Background(), []models.ContentSection{{ContentID: "hero_title", Content: "x"}})
	assert.ErrorIs(t, err, ErrAdminOnly)

	signIn(t, sf, shopper)
	err = sf.Content.Update(context.Background(), []models.ContentSection{{ContentID: "hero_title", Content: "x"}})
	assert.ErrorIs(t, err, ErrAdminOnly)
	assert.Zero(t, f.count("PUT /api/content"))
}

func TestContent_UpdateWritesBackStorageID(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("GET /api/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []models.ContentSection{{ID: "db1", ContentID: "hero_title", Content: "Old"}})
	})
	var sent []models.ContentSection
	f.handle("PUT /api/content", func(w http.ResponseWriter, r *http.Request) {
		decode(f.t, r, &sent)
		writeJSON(w, 200, sent)
	})
	sf, _ := newStorefront(t, f)
	signIn(t, sf, admin)
	require.NoError(t, sf.Content.Fetch(context.Background()))

	require.NoError(t, sf.Content.Update(context.Background(), []models.ContentSection{
		{ContentID: "hero_title", Type: models.KindText, Content: "New"},
		{Content: "dropped, no contentId"},
	}))

	require.Len(t, sent, 1)
	assert.Equal(t, "db1", sent[0].ID)
	assert.Equal(t, "New", sf.Content.Value("hero_title"))
}

func TestContent_UploadImage(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	f.handle("PUT /api/content", func(w http.ResponseWriter, r *http.Request) {
		var in []models.ContentSection
		decode(f.t, r, &in)
		writeJSON(w, 200, in)
	})

	disk, err := storage.NewLocal(t.TempDir(), "http://cdn.test/media")
	require.NoError(t, err)

	sf := Open(f.URL(), session.NewMemory(), Deps{Media: disk})
	t.Cleanup(sf.Close)
	signIn(t, sf, admin)

	url, err := sf.Content.UploadImage(context.Background(), "hero_image", "Banner.PNG", []byte("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://cdn.test/media/content/hero_image/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
	assert.Equal(t, url, sf.Content.Value("hero_image"))
	assert.Equal(t, models.KindImage, sf.Content.Kind("hero_image"))
	assert.Equal(t, "Banner.PNG", sf.Content.Metadata("hero_image")["filename"])

	key := strings.TrimPrefix(url, "http://cdn.test/media/")
	data, err := disk.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestContent_UploadWithoutMediaDisk(t *testing.T) {
	f := newFakeAPI(t)
	(&cartHandler{}).mount(f)
	sf, _ := newStorefront(t, f)
	signIn(t, sf, admin)

	_, err := sf.Content.UploadImage(context.Background(), "hero_image", "a.png", []byte("x"))
	assert.ErrorContains(t, err, "no media disk")
}
