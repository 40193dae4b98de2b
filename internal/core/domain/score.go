package domain

const unknownDescription = "Unknown"

// Method selects how opposition is measured against the reference set.
type Method string

// Available scoring methods.
const (
	// MethodPairwise compares each candidate against every reference
	// item and aggregates (minimum distance, mean angle). Rewards
	// candidates opposite to every reference item, not merely opposite
	// on average.
	MethodPairwise Method = "pairwise"

	// MethodCentroid reduces the reference set to its element-wise mean
	// and compares each candidate against that single vector. Cheaper,
	// but can mask opposition to individual references when the
	// reference set spans multiple directions.
	MethodCentroid Method = "centroid"
)

// IsValid returns true if the method is recognised.
func (m Method) IsValid() bool {
	switch m {
	case MethodPairwise, MethodCentroid:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Method) String() string {
	return string(m)
}

// Description returns a human-readable description of the method.
func (m Method) Description() string {
	switch m {
	case MethodPairwise:
		return "Pairwise (min distance, mean angle across references)"
	case MethodCentroid:
		return "Centroid (distance and angle to the reference mean)"
	default:
		return unknownDescription
	}
}

// OppositionScore holds the opposition metrics for one candidate.
//
// For MethodPairwise, Distance is the minimum cosine distance to any
// reference item and Angle is the mean angle across all reference items.
// For MethodCentroid, both are measured against the single centroid.
type OppositionScore struct {
	// Distance is the cosine distance, in [0, 2].
	Distance float64 `json:"distance"`

	// Angle is the angular separation in degrees, in [0, 180].
	Angle float64 `json:"angle"`

	// Method records which strategy produced the score.
	Method Method `json:"method"`
}

// RankedResult pairs a candidate with its opposition score.
// Results are ephemeral: produced per query, never persisted.
type RankedResult struct {
	Item  Item            `json:"item"`
	Score OppositionScore `json:"score"`
}

// Comparison holds the full set of pairwise metrics between two items.
type Comparison struct {
	Similarity float64 `json:"cosine_similarity"`
	Distance   float64 `json:"cosine_distance"`
	Angle      float64 `json:"angle_degrees"`
	Euclidean  float64 `json:"euclidean_distance"`

	// Relationship is a coarse label derived from the angle.
	Relationship Relationship `json:"relationship"`
}

// Relationship classifies the angular separation between two items.
type Relationship string

// Relationship labels, by increasing angular separation.
const (
	RelationshipVerySimilar          Relationship = "very_similar"
	RelationshipSimilar              Relationship = "similar"
	RelationshipDifferent            Relationship = "different"
	RelationshipOpposite             Relationship = "opposite"
	RelationshipDiametricallyOpposed Relationship = "diametrically_opposite"
)

// ClassifyAngle maps an angle in degrees to a relationship label.
// Boundaries: 30, 60, 120 and 150 degrees.
func ClassifyAngle(angle float64) Relationship {
	switch {
	case angle < 30:
		return RelationshipVerySimilar
	case angle < 60:
		return RelationshipSimilar
	case angle < 120:
		return RelationshipDifferent
	case angle < 150:
		return RelationshipOpposite
	default:
		return RelationshipDiametricallyOpposed
	}
}
