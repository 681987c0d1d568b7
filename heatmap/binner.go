package heatmap

import (
	"fmt"

	"github.com/stsysd/bathtiles/model"
)

// ColorBucket is a discrete color class. Empty (ordinal 0) means no data or a
// zero count; data buckets are ordinals 1..N-1. A palette is indexed by Ordinal.
type ColorBucket int

// Empty is the bucket of days without posts.
const Empty ColorBucket = 0

// IsEmpty reports whether b is the no-data bucket.
func (b ColorBucket) IsEmpty() bool { return b == Empty }

// Ordinal returns the palette index of b.
func (b ColorBucket) Ordinal() int { return int(b) }

func (b ColorBucket) String() string {
	if b.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("bucket%d", int(b))
}

// Binner quantizes counts into color buckets over a [min, max] domain.
type Binner struct {
	min     int
	max     int
	buckets int
}

// NewBinner returns a Binner configured for [min, max] with buckets classes,
// one of which is Empty.
func NewBinner(min, max, buckets int) (*Binner, error) {
	b := &Binner{}
	if err := b.Configure(min, max, buckets); err != nil {
		return nil, err
	}
	return b, nil
}

// Configure sets the quantization domain. buckets must be at least 2.
func (b *Binner) Configure(min, max, buckets int) error {
	if buckets < 2 {
		return model.NewInvalidConfigurationError("buckets", fmt.Sprintf("must be at least 2, got %d", buckets))
	}
	b.min, b.max, b.buckets = min, max, buckets
	return nil
}

// Buckets returns the configured number of buckets including Empty.
func (b *Binner) Buckets() int {
	return b.buckets
}

// Bucket maps count to its bucket. Non-positive counts are Empty. Positive
// counts are split into buckets-1 equal-width classes over [min, max] and
// clamped; a degenerate domain (max <= min) puts every positive count in
// bucket 1.
func (b *Binner) Bucket(count int) ColorBucket {
	if count <= 0 {
		return Empty
	}
	classes := b.buckets - 1
	if b.max <= b.min {
		return 1
	}
	// (count-min)*classes may exceed int64
	i := int(float64(count-b.min) * float64(classes) / float64(b.max-b.min))
	i = min(max(i, 0), classes-1)
	return ColorBucket(i + 1)
}
