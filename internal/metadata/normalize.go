package metadata

import (
	"strconv"
	"strings"
	"unicode"
)

// minSceneWordLen: scene words this short ("car", "red", "the") carry too
// little signal to be worth a posting.
const minSceneWordLen = 3

// Posting is a single (field, token) indexing fact for one image. Tokens
// are always case-folded before they leave this package.
type Posting struct {
	Field Field
	Value string
}

// Normalize flattens m into the posting set for one image. It is a pure
// function: the same metadata always yields the same set (order follows
// field declaration order, scene words in first-seen order).
func Normalize(m Metadata) []Posting {
	var postings []Posting

	add := func(f Field, v string) {
		if v == "" {
			return
		}
		postings = append(postings, Posting{Field: f, Value: strings.ToLower(v)})
	}

	add(FieldMedium, m.Medium)
	if m.People != nil {
		// A present zero is indexed on purpose: "0 people" is searchable.
		if m.People.Number != nil {
			add(FieldPeopleNumber, strconv.Itoa(*m.People.Number))
		}
		add(FieldPeopleGender, m.People.Gender)
	}
	add(FieldActions, m.Actions)
	add(FieldClothes, m.Clothes)
	add(FieldEnvironment, m.Environment)
	for _, color := range m.Colors {
		add(FieldColors, color)
	}
	add(FieldStyle, m.Style)
	add(FieldMood, m.Mood)
	add(FieldScene, m.Scene)
	for _, word := range SceneWords(m.Scene) {
		add(FieldSceneWord, word)
	}

	return postings
}

// SceneWords extracts the indexable words from a scene description:
// case-folded, punctuation stripped, whitespace split, longer than
// minSceneWordLen characters, deduplicated preserving first occurrence.
func SceneWords(scene string) []string {
	if scene == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			// Punctuation is dropped entirely, not replaced by a space,
			// so "don't" becomes "dont" rather than two fragments.
			return -1
		}
	}, scene)

	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= minSceneWordLen || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}
