package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrueDistance_IdenticalPointsAreZero(t *testing.T) {
	assert.Zero(t, TrueDistance(41.0082, 28.9784, 41.0082, 28.9784))
	assert.Zero(t, TrueDistance(0, 0, 0, 0))
	assert.Zero(t, TrueDistance(-89.9, 179.9, -89.9, 179.9))
}

func TestTrueDistance_Symmetric(t *testing.T) {
	// Istanbul -> Ankara and back.
	ab := TrueDistance(41.0082, 28.9784, 39.9334, 32.8597)
	ba := TrueDistance(39.9334, 32.8597, 41.0082, 28.9784)
	assert.Equal(t, ab, ba)
}

func TestTrueDistance_KnownDistance(t *testing.T) {
	// Istanbul to Ankara is roughly 350 km as the crow flies.
	d := TrueDistance(41.0082, 28.9784, 39.9334, 32.8597)
	assert.InDelta(t, 350, d, 10)
}

func TestTrueDistance_NearbyPointsDoNotPanic(t *testing.T) {
	// Points a few metres apart drive the arc-cosine input very close to 1.
	d := TrueDistance(41.00820000, 28.97840000, 41.00820001, 28.97840001)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.Less(t, d, 0.01)
}

func TestRangeFor_BoundsOrdered(t *testing.T) {
	lower, upper := RangeFor(41.0082, 28.9784, 5)
	assert.Less(t, lower, upper)
}

func TestRangeFor_ContainsCenter(t *testing.T) {
	center := Encode(41.0082, 28.9784)
	lower, upper := RangeFor(41.0082, 28.9784, 5)
	assert.LessOrEqual(t, lower, center)
	assert.GreaterOrEqual(t, upper, center)
}

func TestRangeFor_WiderRadiusWidensRange(t *testing.T) {
	narrowLower, narrowUpper := RangeFor(41.0082, 28.9784, 1)
	wideLower, wideUpper := RangeFor(41.0082, 28.9784, 20)
	assert.LessOrEqual(t, wideLower, narrowLower)
	assert.GreaterOrEqual(t, wideUpper, narrowUpper)
}
