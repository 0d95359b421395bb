package discovery

import (
	"fmt"
	"strings"

	"store-locator-be/pkg/metadata"
	"store-locator-be/pkg/store"
)

// MockIDPrefix starts the id of every mock store.
const MockIDPrefix = "mock_"

// MockAddress marks stores served while every mirror is unreachable.
const MockAddress = "Vị trí giả lập (Mất kết nối API)"

var mockBases = []struct {
	name     string
	category string
}{
	{"Highlands Coffee", "cafe"},
	{"Phở Cồ", "restaurant"},
	{"WinMart+", "convenience"},
	{"Petrolimex", "fuel"},
}

// MockStores returns the fixed four-entry fallback set around the coordinate:
// ids mock_0..mock_3, offsets growing with the index and ascending distances.
func MockStores(synth *metadata.Synthesizer, lat, lng float64) []store.Store {
	stores := make([]store.Store, 0, len(mockBases))
	for i, base := range mockBases {
		step := float64(i + 1)
		s := store.Store{
			ID:          fmt.Sprintf("%s%d", MockIDPrefix, i),
			Name:        base.name,
			CategoryKey: base.category,
			Lat:         lat + 0.001*step,
			Lng:         lng + 0.001*step,
			DistanceKm:  0.1 * step,
			Address:     MockAddress,
		}
		s.Apply(synth.Synthesize(base.name, base.category))
		stores = append(stores, s)
	}
	return stores
}

// IsMock reports whether a result set is the mock fallback.
func IsMock(stores []store.Store) bool {
	return len(stores) > 0 && strings.HasPrefix(stores[0].ID, MockIDPrefix)
}
