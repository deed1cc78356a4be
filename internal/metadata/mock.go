package metadata

import "math/rand"

// Vocabulary tables shared by the mock analyzer and the mock criteria
// extractor. Values mirror what the real vision model tends to return.
var (
	Mediums      = []string{"Photography", "Painting", "Digital Art", "Illustration", "Sketch"}
	Styles       = []string{"Abstract", "Realistic", "Vintage", "Modern", "Minimalist", "Surreal"}
	Moods        = []string{"Happy", "Sad", "Dramatic", "Nostalgic", "Peaceful", "Mysterious"}
	Environments = []string{"Indoor", "Outdoor", "Urban", "Nature", "Studio", "Beach"}
	Colors       = []string{"Red", "Blue", "Green", "Yellow", "Purple", "Orange", "Black", "White"}
	Actions      = []string{"Standing", "Running", "Sitting", "Dancing", "Jumping", "Sleeping"}
	Clothes      = []string{"Formal", "Casual", "Sportswear", "Traditional", "Vintage", "Elegant"}
	Genders      = []string{"Male", "Female", "Mixed group"}

	sceneDescriptions = []string{
		"A serene landscape with mountains in the background and a calm lake reflecting the sky.",
		"A bustling city street with people walking and cars passing by.",
		"A cozy living room with a fireplace and comfortable furniture.",
		"A beautiful sunset over the ocean with waves crashing on the shore.",
		"A forest path with sunlight filtering through the trees.",
		"An abstract composition of shapes and colors creating a vibrant pattern.",
		"A portrait of a person with an expressive facial expression.",
		"A still life arrangement of fruits and flowers on a table.",
		"A macro shot of a flower with intricate details visible.",
		"A snowy winter scene with trees covered in white.",
	}
)

// Mock returns randomized but structurally valid metadata, used when the
// server runs without a vision API key.
func Mock() Metadata {
	peopleCount := rand.Intn(6)

	m := Metadata{
		Medium:      pick(Mediums),
		Environment: pick(Environments),
		Colors:      []string{pick(Colors), pick(Colors)},
		Style:       pick(Styles),
		Mood:        pick(Moods),
		Scene:       pick(sceneDescriptions),
	}

	if peopleCount > 0 {
		m.People = &People{Number: &peopleCount, Gender: pick(Genders)}
		m.Actions = pick(Actions)
		m.Clothes = pick(Clothes)
	}

	return m
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}
