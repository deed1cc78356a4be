// Package metadata defines the vision metadata attached to every gallery
// image and the normalization rules that turn it into search postings.
package metadata

// Field identifies one indexed metadata dimension. The set is closed:
// query building switches over it exhaustively, so string typos cannot
// reach the index.
type Field string

const (
	FieldMedium       Field = "medium"
	FieldPeopleNumber Field = "people_number"
	FieldPeopleGender Field = "people_gender"
	FieldActions      Field = "actions"
	FieldClothes      Field = "clothes"
	FieldEnvironment  Field = "environment"
	FieldColors       Field = "colors"
	FieldStyle        Field = "style"
	FieldMood         Field = "mood"
	FieldScene        Field = "scene"
	FieldSceneWord    Field = "scene_word"

	// FieldPeople is a synthetic filter-only key. It is never stored;
	// lookups expand it to people_number OR people_gender.
	FieldPeople Field = "people"
)

var storageFields = map[Field]bool{
	FieldMedium:       true,
	FieldPeopleNumber: true,
	FieldPeopleGender: true,
	FieldActions:      true,
	FieldClothes:      true,
	FieldEnvironment:  true,
	FieldColors:       true,
	FieldStyle:        true,
	FieldMood:         true,
	FieldScene:        true,
	FieldSceneWord:    true,
}

// IsStorageField reports whether f names a dimension that postings are
// actually stored under.
func IsStorageField(f Field) bool {
	return storageFields[f]
}

// IsFilterField reports whether f is accepted as a search filter key.
// This is the storage set plus the synthetic "people" key.
func IsFilterField(f Field) bool {
	return f == FieldPeople || storageFields[f]
}

// People describes detected people in an image. Number is a pointer so a
// count of zero survives the trip through the analyzer: zero people is a
// valid, indexable fact, distinct from "not reported".
type People struct {
	Number *int   `json:"number,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Metadata is the structured description produced by the vision analyzer.
// It is immutable once attached to an image. String fields use "" for
// "absent"; Colors may be empty; People is nil when the analyzer did not
// report on people at all.
type Metadata struct {
	Medium      string   `json:"medium,omitempty"`
	People      *People  `json:"people,omitempty"`
	Actions     string   `json:"actions,omitempty"`
	Clothes     string   `json:"clothes,omitempty"`
	Environment string   `json:"environment,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Style       string   `json:"style,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	Scene       string   `json:"scene,omitempty"`
}

// Placeholder is the fallback metadata used when the vision analyzer fails
// and the server is configured to keep the upload anyway.
func Placeholder() Metadata {
	zero := 0
	return Metadata{
		Medium:      "Unknown",
		People:      &People{Number: &zero},
		Environment: "Unknown",
		Colors:      []string{"Unknown"},
		Style:       "Unknown",
		Mood:        "Unknown",
		Scene:       "Could not analyze this image. The content might be unclear or the analysis service encountered an error.",
	}
}
