package search

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pictor/internal/database"
	"pictor/internal/index"
	"pictor/internal/metadata"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return db
}

var uploadClock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// seed indexes an image with the given metadata. Successive calls get
// strictly increasing upload dates so ordering assertions are stable.
func seed(t *testing.T, db *gorm.DB, m metadata.Metadata) string {
	t.Helper()

	uploadClock = uploadClock.Add(time.Minute)
	img := &database.Image{
		ID:         uuid.New().String(),
		FileName:   "seed.jpg",
		FileSize:   100,
		MimeType:   "image/jpeg",
		UploadDate: uploadClock,
		Metadata:   m,
	}
	if err := index.NewStore(db).IndexImage(context.Background(), img); err != nil {
		t.Fatalf("seed image: %v", err)
	}
	return img.ID
}

func ids(images []database.Image) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.ID)
	}
	return out
}

func TestEvaluateEmptyCriteriaReturnsAllNewestFirst(t *testing.T) {
	db := testDB(t)
	first := seed(t, db, metadata.Metadata{Medium: "Photography"})
	second := seed(t, db, metadata.Metadata{Medium: "Painting"})

	got, err := Evaluate(context.Background(), db, Criteria{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 2 || got[0].ID != second || got[1].ID != first {
		t.Fatalf("empty criteria = %v, want [%s %s]", ids(got), second, first)
	}
}

func TestEvaluateBlankFiltersAreEmptyCriteria(t *testing.T) {
	db := testDB(t)
	seed(t, db, metadata.Metadata{Medium: "Photography"})

	c := Criteria{Query: "   ", Filters: map[string]string{"style": "  "}}
	got, err := Evaluate(context.Background(), db, c)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("blank criteria should fall back to the collection, got %d images", len(got))
	}
}

func TestEvaluateQueryTermMatchesAnyField(t *testing.T) {
	db := testDB(t)
	byStyle := seed(t, db, metadata.Metadata{Style: "Vintage"})
	byScene := seed(t, db, metadata.Metadata{Scene: "A vintage storefront window."})
	seed(t, db, metadata.Metadata{Medium: "Digital Art"})

	got, err := Evaluate(context.Background(), db, Criteria{Query: "vintage"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("query matched %v, want the style and scene images", ids(got))
	}
	found := map[string]bool{got[0].ID: true, got[1].ID: true}
	if !found[byStyle] || !found[byScene] {
		t.Fatalf("query matched %v, want [%s %s]", ids(got), byStyle, byScene)
	}
}

func TestEvaluateFilterIsFieldScoped(t *testing.T) {
	db := testDB(t)
	byStyle := seed(t, db, metadata.Metadata{Style: "Vintage"})
	seed(t, db, metadata.Metadata{Scene: "A vintage storefront window."})

	c := Criteria{Filters: map[string]string{"style": "vintage"}}
	got, err := Evaluate(context.Background(), db, c)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0].ID != byStyle {
		t.Fatalf("scoped filter = %v, want [%s]", ids(got), byStyle)
	}
}

func TestEvaluateConditionsAreANDed(t *testing.T) {
	db := testDB(t)
	both := seed(t, db, metadata.Metadata{Style: "Vintage", Mood: "Calm"})
	seed(t, db, metadata.Metadata{Style: "Vintage", Mood: "Energetic"})
	seed(t, db, metadata.Metadata{Style: "Modern", Mood: "Calm"})

	c := Criteria{Filters: map[string]string{"style": "vintage", "mood": "calm"}}
	got, err := Evaluate(context.Background(), db, c)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0].ID != both {
		t.Fatalf("ANDed filters = %v, want [%s]", ids(got), both)
	}
}

func TestEvaluateQueryAndFilterCombine(t *testing.T) {
	db := testDB(t)
	hit := seed(t, db, metadata.Metadata{Environment: "Outdoor", Scene: "Hiking along mountain trails."})
	seed(t, db, metadata.Metadata{Environment: "Indoor", Scene: "Mountain painting hanging indoors."})

	c := Criteria{Query: "mountain", Filters: map[string]string{"environment": "outdoor"}}
	got, err := Evaluate(context.Background(), db, c)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0].ID != hit {
		t.Fatalf("query+filter = %v, want [%s]", ids(got), hit)
	}
}

func TestEvaluateNoMatchReturnsEmptyNotFallback(t *testing.T) {
	db := testDB(t)
	seed(t, db, metadata.Metadata{Medium: "Photography"})

	got, err := Evaluate(context.Background(), db, Criteria{Query: "zebra"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got == nil {
		t.Fatal("no-match result must be an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Fatalf("no-match query returned %v", ids(got))
	}
}

func TestEvaluatePeopleFilter(t *testing.T) {
	db := testDB(t)
	two := 2
	byCount := seed(t, db, metadata.Metadata{People: &metadata.People{Number: &two}})
	byGender := seed(t, db, metadata.Metadata{People: &metadata.People{Gender: "Female"}})
	seed(t, db, metadata.Metadata{Medium: "Landscape"})

	got, err := Evaluate(context.Background(), db, Criteria{Filters: map[string]string{"people": "2"}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0].ID != byCount {
		t.Fatalf("people=2 = %v, want [%s]", ids(got), byCount)
	}

	got, err = Evaluate(context.Background(), db, Criteria{Filters: map[string]string{"people": "female"}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0].ID != byGender {
		t.Fatalf("people=female = %v, want [%s]", ids(got), byGender)
	}
}

func TestEvaluateMultipleTermsAllRequired(t *testing.T) {
	db := testDB(t)
	hit := seed(t, db, metadata.Metadata{Scene: "Sailing boats racing near the harbor."})
	seed(t, db, metadata.Metadata{Scene: "Sailing lessons inside the marina."})

	got, err := Evaluate(context.Background(), db, Criteria{Query: "sailing racing"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 1 || got[0].ID != hit {
		t.Fatalf("multi-term query = %v, want [%s]", ids(got), hit)
	}
}

func TestEvaluateResultsNewestFirst(t *testing.T) {
	db := testDB(t)
	older := seed(t, db, metadata.Metadata{Style: "Vintage"})
	newer := seed(t, db, metadata.Metadata{Style: "Vintage"})

	got, err := Evaluate(context.Background(), db, Criteria{Filters: map[string]string{"style": "vintage"}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(got) != 2 || got[0].ID != newer || got[1].ID != older {
		t.Fatalf("order = %v, want [%s %s]", ids(got), newer, older)
	}
}
