package geospatial

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, delta            float64
	}{
		{"paris to lyon", 48.85, 2.35, 45.75, 4.85, 392.83, 0.01},
		{"quarter meridian", 0, 0, 90, 0, math.Pi * EarthRadiusKm / 2, 1e-6},
		{"antipodes", 0, 0, 0, 180, MaxDistanceKm, 1e-6},
		{"pole to pole", 90, 0, -90, 0, MaxDistanceKm, 1e-6},
		{"across antimeridian", 0, 179.99, 0, -179.99, 2.224, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HaversineKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestHaversineKm_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		lat1, lon1 := rng.Float64()*180-90, rng.Float64()*360-180
		lat2, lon2 := rng.Float64()*180-90, rng.Float64()*360-180

		assert.Zero(t, HaversineKm(lat1, lon1, lat1, lon1), "identity")

		ab := HaversineKm(lat1, lon1, lat2, lon2)
		ba := HaversineKm(lat2, lon2, lat1, lon1)
		assert.InDelta(t, ab, ba, 1e-9, "symmetry")
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, MaxDistanceKm)
	}
}

// destination walks distKm from (lat, lon) along bearing, in degrees.
func destination(lat, lon, bearing, distKm float64) (float64, float64) {
	d := distKm / EarthRadiusKm
	φ1, λ1, θ := toRad(lat), toRad(lon), toRad(bearing)
	φ2 := math.Asin(math.Sin(φ1)*math.Cos(d) + math.Cos(φ1)*math.Sin(d)*math.Cos(θ))
	λ2 := λ1 + math.Atan2(math.Sin(θ)*math.Sin(d)*math.Cos(φ1), math.Cos(d)-math.Sin(φ1)*math.Sin(φ2))
	return toDeg(φ2), toDeg(λ2)
}

func TestBoundingBoxKm_ContainsCircle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		lat, lon := rng.Float64()*140-70, rng.Float64()*300-150
		radius := rng.Float64() * 200

		minLat, minLon, maxLat, maxLon, ok := BoundingBoxKm(lat, lon, radius)
		if !ok {
			continue
		}
		for b := 0.0; b < 360; b += 7.5 {
			pLat, pLon := destination(lat, lon, b, radius)
			require.True(t, pLat >= minLat && pLat <= maxLat && pLon >= minLon && pLon <= maxLon,
				"point at bearing %.1f from (%.4f,%.4f) r=%.2f outside box", b, lat, lon, radius)
		}
	}
}

func TestBoundingBoxKm_Unbounded(t *testing.T) {
	_, _, _, _, ok := BoundingBoxKm(89.99, 0, 5)
	assert.False(t, ok, "circle reaching the pole")

	_, _, _, _, ok = BoundingBoxKm(0, 179.99, 10)
	assert.False(t, ok, "circle crossing the antimeridian")

	_, _, _, _, ok = BoundingBoxKm(0, 0, MaxDistanceKm)
	assert.False(t, ok, "radius covering a hemisphere")

	minLat, minLon, maxLat, maxLon, ok := BoundingBoxKm(48.85, 2.35, 5)
	require.True(t, ok)
	assert.Less(t, minLat, 48.85)
	assert.Greater(t, maxLat, 48.85)
	assert.Less(t, minLon, 2.35)
	assert.Greater(t, maxLon, 2.35)
}
