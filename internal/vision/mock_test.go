package vision

import (
	"context"
	"reflect"
	"testing"
)

func TestMockExtractorRecognizesVocabulary(t *testing.T) {
	c, err := MockExtractor{}.ExtractCriteria(context.Background(), "Find happy photography of people dancing outdoor")
	if err != nil {
		t.Fatalf("ExtractCriteria: %v", err)
	}

	if c.Medium != "Photography" {
		t.Errorf("medium = %q", c.Medium)
	}
	if c.Mood != "Happy" {
		t.Errorf("mood = %q", c.Mood)
	}
	if c.Environment != "Outdoor" {
		t.Errorf("environment = %q", c.Environment)
	}
	if c.Actions != "Dancing" {
		t.Errorf("actions = %q", c.Actions)
	}
	if c.People == nil || c.People.Number == nil || *c.People.Number != 1 {
		t.Errorf("people = %+v, want number 1", c.People)
	}
}

func TestMockExtractorGender(t *testing.T) {
	c, _ := MockExtractor{}.ExtractCriteria(context.Background(), "photos of a woman person sitting")
	if c.People == nil || c.People.Gender != "Female" {
		t.Fatalf("people = %+v, want Female", c.People)
	}

	c, _ = MockExtractor{}.ExtractCriteria(context.Background(), "a man standing in person")
	if c.People == nil || c.People.Gender != "Male" {
		t.Fatalf("people = %+v, want Male", c.People)
	}

	c, _ = MockExtractor{}.ExtractCriteria(context.Background(), "a group of people")
	if c.People == nil || c.People.Number == nil || *c.People.Number != 3 {
		t.Fatalf("people = %+v, want number 3", c.People)
	}
}

func TestMockExtractorColorsAndKeywords(t *testing.T) {
	c, _ := MockExtractor{}.ExtractCriteria(context.Background(), "find red and blue lighthouse images")

	if !reflect.DeepEqual(c.Colors, []string{"Red", "Blue"}) {
		t.Fatalf("colors = %v", c.Colors)
	}
	if !reflect.DeepEqual(c.Keywords, []string{"lighthouse"}) {
		t.Fatalf("keywords = %v, want the non-vocabulary leftovers only", c.Keywords)
	}
}

func TestMockExtractorEmptyQuery(t *testing.T) {
	c, err := MockExtractor{}.ExtractCriteria(context.Background(), "")
	if err != nil {
		t.Fatalf("ExtractCriteria: %v", err)
	}
	filters, query := c.Filters()
	if len(filters) != 0 || query != "" {
		t.Fatalf("empty query produced filters=%v query=%q", filters, query)
	}
}

func TestCriteriaFilters(t *testing.T) {
	two := 2
	c := Criteria{
		Medium:      "Photography",
		Style:       "Vintage",
		Mood:        "Calm",
		Environment: "Outdoor",
		People:      &CriteriaPeople{Number: &two, Gender: "Female"},
		Actions:     "Running",
		Clothes:     "Casual",
		Colors:      []string{"Red", "Blue"},
		Keywords:    []string{"lighthouse", "cliff"},
	}

	filters, query := c.Filters()

	want := map[string]string{
		"medium":      "Photography",
		"style":       "Vintage",
		"mood":        "Calm",
		"environment": "Outdoor",
		"people":      "Female",
		"actions":     "Running",
		"clothes":     "Casual",
		"colors":      "Red",
	}
	if !reflect.DeepEqual(filters, want) {
		t.Fatalf("filters = %v, want %v", filters, want)
	}
	if query != "lighthouse cliff" {
		t.Fatalf("query = %q", query)
	}
}

func TestCriteriaFiltersPeopleNumberFallback(t *testing.T) {
	three := 3
	c := Criteria{People: &CriteriaPeople{Number: &three}}

	filters, _ := c.Filters()
	if filters["people"] != "3" {
		t.Fatalf("people filter = %q, want count when no gender extracted", filters["people"])
	}
}

func TestMockAnalyzer(t *testing.T) {
	m, err := MockAnalyzer{}.Analyze(context.Background(), []byte("bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if m.Medium == "" || m.Scene == "" {
		t.Fatalf("mock metadata incomplete: %+v", m)
	}
}
