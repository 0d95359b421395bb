package metadata

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key  string
		want Bucket
	}{
		{"mobile_phone", BucketMobile},
		{"Phone repair", BucketMobile},
		{"fuel", BucketFuel},
		{"cafe", BucketDrink},
		{"bubble_tea", BucketDrink},
		{"restaurant", BucketFood},
		{"fast_food", BucketFood},
		{"convenience", BucketShopping},
		{"pharmacy", BucketService},
		{"hairdresser", BucketService},
		{"atm", BucketService},
		{"phone_repair", BucketMobile},
		{"car_repair", BucketUnknown},
		{"shoe_repair", BucketUnknown},
		{"automobile", BucketUnknown},
		{"public_bookcase", BucketUnknown},
		{"steam_bath", BucketUnknown},
		{"sports_bar", BucketDrink},
		{"tea house", BucketDrink},
		{"unknown", BucketUnknown},
		{"", BucketUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.key))
		})
	}
}

func TestSynthesizeRepairIsNotPhoneShop(t *testing.T) {
	s := NewSynthesizer(rand.NewSource(3))

	meta := s.Synthesize("Garage Minh", "car_repair")
	assert.Equal(t, "Car_repair", meta.TypeDisplay)
	assert.NotContains(t, meta.Products, "Thay pin")
	assert.Equal(t, HoursDefault, meta.OpenHour)
}

func TestOpenHours(t *testing.T) {
	assert.Equal(t, HoursCafe, OpenHours("cafe"))
	assert.Equal(t, HoursCafe, OpenHours("pub"))
	assert.Equal(t, HoursAllDay, OpenHours("fuel"))
	assert.Equal(t, HoursAllDay, OpenHours("convenience"))
	assert.Equal(t, HoursDefault, OpenHours("restaurant"))
	assert.Equal(t, HoursDefault, OpenHours("bicycle"))
}

func TestSynthesizeRanges(t *testing.T) {
	s := NewSynthesizer(nil)
	keys := []string{"cafe", "restaurant", "fuel", "convenience", "pharmacy", "mobile_phone", "bank", "unknown", "bicycle", ""}

	for i := 0; i < 200; i++ {
		key := keys[i%len(keys)]
		meta := s.Synthesize("Test Store", key)

		assert.GreaterOrEqual(t, meta.Rating, MinRating, key)
		assert.LessOrEqual(t, meta.Rating, MaxRating, key)
		assert.GreaterOrEqual(t, meta.ReviewsCount, MinReviewsCount, key)
		assert.LessOrEqual(t, meta.ReviewsCount, MaxReviewsCount, key)
		assert.NotEmpty(t, meta.Products, key)
		assert.NotEmpty(t, meta.ReviewList, key)
		assert.LessOrEqual(t, len(meta.ReviewList), 2, key)
		assert.NotEmpty(t, meta.Description, key)
		assert.NotEmpty(t, meta.TypeDisplay, key)
		assert.NotEmpty(t, meta.OpenHour, key)
		assert.NotEmpty(t, meta.Tags, key)
	}
}

func TestSynthesizeKnownBucket(t *testing.T) {
	s := NewSynthesizer(rand.NewSource(42))

	meta := s.Synthesize("Petrolimex", "fuel")
	assert.Equal(t, "Trạm xăng", meta.TypeDisplay)
	assert.Equal(t, HoursAllDay, meta.OpenHour)
	require.Len(t, meta.ReviewList, 2)
	assert.NotEqual(t, meta.ReviewList[0], meta.ReviewList[1])
	for _, r := range meta.ReviewList {
		assert.Contains(t, reviewTemplates["fuel"], r)
	}
}

func TestSynthesizeUnknownCategory(t *testing.T) {
	s := NewSynthesizer(rand.NewSource(1))

	meta := s.Synthesize("Xe Đạp Minh", "bicycle")
	assert.Equal(t, []string{genericProduct}, meta.Products)
	assert.Equal(t, "Địa điểm Xe Đạp Minh.", meta.Description)
	assert.Equal(t, "Bicycle", meta.TypeDisplay)
	assert.Equal(t, HoursDefault, meta.OpenHour)
	assert.Equal(t, []string{genericReview}, meta.ReviewList)
}

func TestSynthesizeSeeded(t *testing.T) {
	a := NewSynthesizer(rand.NewSource(7)).Synthesize("A", "cafe")
	b := NewSynthesizer(rand.NewSource(7)).Synthesize("A", "cafe")
	assert.Equal(t, a, b)
}
