package metadata

import (
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func sampleMetadata() Metadata {
	return Metadata{
		Medium:      "Photography",
		People:      &People{Number: intPtr(2), Gender: "Mixed group"},
		Actions:     "Running",
		Clothes:     "Casual",
		Environment: "Outdoor",
		Colors:      []string{"Red", "Blue"},
		Style:       "Vintage",
		Mood:        "Happy",
		Scene:       "A bustling city street with people walking and cars passing by.",
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	m := sampleMetadata()

	first := Normalize(m)
	second := Normalize(m)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalizing twice produced different postings:\n%v\n%v", first, second)
	}
}

func TestNormalizeCaseFoldsValues(t *testing.T) {
	postings := Normalize(sampleMetadata())
	for _, p := range postings {
		if p.Value != lower(p.Value) {
			t.Errorf("posting %s=%q is not lowercased", p.Field, p.Value)
		}
	}
}

func lower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

func TestNormalizeSkipsAbsentFields(t *testing.T) {
	postings := Normalize(Metadata{Medium: "Sketch"})

	if len(postings) != 1 {
		t.Fatalf("expected a single posting, got %v", postings)
	}
	if postings[0].Field != FieldMedium || postings[0].Value != "sketch" {
		t.Fatalf("unexpected posting %v", postings[0])
	}
}

func TestNormalizeIndexesZeroPeople(t *testing.T) {
	m := Metadata{People: &People{Number: intPtr(0)}}

	postings := Normalize(m)
	if len(postings) != 1 {
		t.Fatalf("expected one people_number posting, got %v", postings)
	}
	if postings[0].Field != FieldPeopleNumber || postings[0].Value != "0" {
		t.Fatalf("a present zero people count must be indexed, got %v", postings[0])
	}
}

func TestNormalizeOnePostingPerColor(t *testing.T) {
	m := Metadata{Colors: []string{"Red", "Blue", "Green"}}

	postings := Normalize(m)
	if len(postings) != 3 {
		t.Fatalf("expected 3 color postings, got %v", postings)
	}
	for _, p := range postings {
		if p.Field != FieldColors {
			t.Errorf("unexpected field %s", p.Field)
		}
	}
}

func TestSceneWords(t *testing.T) {
	got := SceneWords("A red car speeds past quickly.")
	want := []string{"speeds", "past", "quickly"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SceneWords = %v, want %v", got, want)
	}
}

func TestSceneWordsDropPunctuationInsideWords(t *testing.T) {
	got := SceneWords("Don't stop, keep dancing!")
	want := []string{"dont", "stop", "keep", "dancing"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SceneWords = %v, want %v", got, want)
	}
}

func TestSceneWordsDeduplicate(t *testing.T) {
	got := SceneWords("Trees behind trees behind TREES")
	want := []string{"trees", "behind"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SceneWords = %v, want %v", got, want)
	}
}

func TestSceneWordsEmpty(t *testing.T) {
	if got := SceneWords(""); got != nil {
		t.Fatalf("SceneWords(\"\") = %v, want nil", got)
	}
}

func TestMockProducesKnownVocabulary(t *testing.T) {
	known := func(v string, table []string) bool {
		for _, c := range table {
			if v == c {
				return true
			}
		}
		return false
	}

	for i := 0; i < 50; i++ {
		m := Mock()
		if !known(m.Medium, Mediums) {
			t.Fatalf("unknown medium %q", m.Medium)
		}
		if !known(m.Style, Styles) {
			t.Fatalf("unknown style %q", m.Style)
		}
		if m.People != nil {
			if m.People.Number == nil || *m.People.Number < 1 {
				t.Fatalf("people present but count missing: %+v", m.People)
			}
			if m.Actions == "" || m.Clothes == "" {
				t.Fatal("people present but actions/clothes missing")
			}
		} else if m.Actions != "" || m.Clothes != "" {
			t.Fatal("actions/clothes set without people")
		}
	}
}
