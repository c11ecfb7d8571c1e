package defs

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Epsilon replaces non-positive readings; neither glucose nor ketone can be
// zero or negative.
const Epsilon = 0.08

type Category int

const (
	Invalid Category = iota
	ContinuousGlucose
	FingerstickGlucose
	Ketone
)

var (
	categoryNames    = [...]string{"invalid", "cgm", "bg", "ketone"}
	categoryPrefixes = [...]string{"Err", "CGM", "BG", "BK"}
)

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[Invalid]
	}
	return categoryNames[c]
}

// Prefix is the bucket name prefix of a category.
func (c Category) Prefix() string {
	if c < 0 || int(c) >= len(categoryPrefixes) {
		return categoryPrefixes[Invalid]
	}
	return categoryPrefixes[c]
}

// ParseCategory maps a source column to a category. Order matters, the
// fingerstick and ketone sources share the "Blood" stem.
func ParseCategory(source string) Category {
	switch {
	case strings.HasPrefix(source, "Gluco"):
		return ContinuousGlucose
	case strings.HasPrefix(source, "BloodGluco"):
		return FingerstickGlucose
	case strings.HasPrefix(source, "BloodKetone"):
		return Ketone
	default:
		return Invalid
	}
}

type Sample struct {
	ID       *primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Time     time.Time           `bson:"time" json:"time"`
	Category Category            `bson:"category" json:"category"`
	Source   string              `bson:"source" json:"source"`
	Value    float64             `bson:"value" json:"value"`
}

func (s *Sample) GetTime() time.Time {
	return s.Time
}

// Clamped returns the value used for accumulation.
func (s Sample) Clamped() float64 {
	if s.Value <= 0 {
		return Epsilon
	}
	return s.Value
}
