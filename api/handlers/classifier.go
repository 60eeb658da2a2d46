package handlers

import (
	"math/rand"

	"github.com/ecotrack/waste-report-api/models"
)

// Classifier annotates a submitted image with a waste classification.
// The annotation is attached to the report as-is and never influences
// lifecycle transitions.
type Classifier interface {
	Classify(imageURL string) (*models.Classification, error)
}

var wasteTypes = []string{
	"plastic",
	"organic",
	"metal",
	"glass",
	"e-waste",
	"mixed",
}

// RandomClassifier stands in for the hosted model endpoint. It produces a
// plausible-looking annotation from a PRNG, which is all the upstream
// "model" does as well.
type RandomClassifier struct{}

// Classify returns a random waste classification
func (RandomClassifier) Classify(imageURL string) (*models.Classification, error) {
	return &models.Classification{
		IsWaste:    true,
		WasteType:  wasteTypes[rand.Intn(len(wasteTypes))],
		Confidence: 0.5 + rand.Float64()*0.5,
	}, nil
}
