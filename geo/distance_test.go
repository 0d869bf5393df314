package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nashvilleLat = 36.1627
	nashvilleLon = -86.7816
	mtJulietLat  = 36.2001
	mtJulietLon  = -86.5186
)

func TestHaversineMilesSymmetry(t *testing.T) {
	d1 := HaversineMiles(nashvilleLat, nashvilleLon, mtJulietLat, mtJulietLon)
	d2 := HaversineMiles(mtJulietLat, mtJulietLon, nashvilleLat, nashvilleLon)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestHaversineMilesIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, HaversineMiles(nashvilleLat, nashvilleLon, nashvilleLat, nashvilleLon))
}

func TestHaversineMilesKnownDistance(t *testing.T) {
	// Nashville to Mt. Juliet is roughly 15 miles as the crow flies.
	d := HaversineMiles(nashvilleLat, nashvilleLon, mtJulietLat, mtJulietLon)
	assert.Greater(t, d, 10.0)
	assert.Less(t, d, 20.0)
}

func TestEstimateDriveTimeBuckets(t *testing.T) {
	// 5 mi at 25 mph = 12 min; 15 mi at 35 mph ~ 26 min; 30 mi at 45 mph = 40 min;
	// 55 mi at 55 mph = 60 min.
	assert.Equal(t, 12.0, EstimateDriveTimeMinutes(5))
	assert.Equal(t, 26.0, EstimateDriveTimeMinutes(15))
	assert.Equal(t, 40.0, EstimateDriveTimeMinutes(30))
	assert.Equal(t, 60.0, EstimateDriveTimeMinutes(55))
	assert.Equal(t, 0.0, EstimateDriveTimeMinutes(0))
}

func TestEstimateDriveTimeMonotonicWithinBuckets(t *testing.T) {
	// The speed buckets make the estimate discontinuous at 5/15/30 miles, so
	// monotonicity is only guaranteed within a bucket.
	buckets := [][2]float64{{0, 5}, {5.01, 15}, {15.01, 30}, {30.01, 100}}
	for _, b := range buckets {
		prev := EstimateDriveTimeMinutes(b[0])
		for d := b[0]; d <= b[1]; d += 0.25 {
			cur := EstimateDriveTimeMinutes(d)
			assert.GreaterOrEqual(t, cur, prev, "drive time must not decrease at %.2f mi", d)
			prev = cur
		}
	}
}

func testHubs() []Hub {
	return []Hub{
		{ID: "nashville", Name: "Nashville", Lat: nashvilleLat, Lon: nashvilleLon},
		{ID: "mt_juliet", Name: "Mt. Juliet", Lat: mtJulietLat, Lon: mtJulietLon},
	}
}

func TestProximityForMissingCoordinates(t *testing.T) {
	lat := nashvilleLat

	for _, tc := range [][2]*float64{
		{nil, nil},
		{&lat, nil},
		{nil, &lat},
	} {
		out := ProximityFor(tc[0], tc[1], testHubs(), 30)
		require.Len(t, out, 2)
		for _, hd := range out {
			assert.Nil(t, hd.DistanceMiles)
			assert.Nil(t, hd.DriveTimeMin)
			assert.False(t, hd.WithinThreshold)
		}
	}
}

func TestProximityForNearHub(t *testing.T) {
	lat, lon := nashvilleLat+0.01, nashvilleLon-0.01
	out := ProximityFor(&lat, &lon, testHubs(), 30)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].DistanceMiles)
	assert.Less(t, *out[0].DistanceMiles, 2.0)
	assert.True(t, out[0].WithinThreshold)
	assert.Equal(t, "nashville", out[0].HubID)
}
