package metadata

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"store-locator-be/pkg/store"
)

// Bucket is a coarse category group used to pick canned metadata.
type Bucket string

const (
	BucketMobile   Bucket = "mobile"
	BucketFuel     Bucket = "fuel"
	BucketDrink    Bucket = "drink"
	BucketFood     Bucket = "food"
	BucketShopping Bucket = "shopping"
	BucketService  Bucket = "service"
	BucketUnknown  Bucket = "unknown"
)

// Bounds of synthesized values.
const (
	MinRating       = 4.0
	MaxRating       = 5.0
	MinReviewsCount = 10
	MaxReviewsCount = 150
)

const (
	HoursCafe    = "07:00 - 23:00"
	HoursAllDay  = "24/7"
	HoursDefault = "08:00 - 21:00"
)

type bucketRule struct {
	bucket   Bucket
	keywords []string // matched as substrings
	words    []string // matched as whole words split on "_", "-" or spaces
}

// Order matters: the first matching rule wins.
var bucketRules = []bucketRule{
	{BucketMobile, []string{"mobile_phone", "phone_repair", "điện thoại"}, []string{"mobile", "phone"}},
	{BucketFuel, []string{"fuel", "petrol", "gas_station", "xăng"}, nil},
	{BucketService, []string{"hairdresser", "barber", "beauty", "pharmacy", "chemist", "bank", "hotel", "laundry", "service"}, []string{"atm"}},
	{BucketFood, []string{"restaurant", "food", "bistro", "bakery", "noodle", "steak", "phở"}, nil},
	{BucketDrink, []string{"cafe", "coffee", "drink", "juice", "cà phê"}, []string{"tea", "bar", "pub"}},
	{BucketShopping, []string{"convenience", "supermarket", "mart", "clothes", "fashion", "electronics", "shop", "mall"}, nil},
}

type bucketTemplate struct {
	products    []string
	description string
	typeDisplay string
	reviewPool  string
}

var bucketTemplates = map[Bucket]bucketTemplate{
	BucketMobile: {
		products:    []string{"Sửa màn hình", "Thay pin", "Phụ kiện điện thoại"},
		description: "Sửa chữa điện thoại nhanh, lấy liền.",
		typeDisplay: "Sửa điện thoại",
		reviewPool:  "service",
	},
	BucketFuel: {
		products:    []string{"Xăng A95", "Xăng E5", "Dầu DO"},
		description: "Xăng dầu chất lượng.",
		typeDisplay: "Trạm xăng",
		reviewPool:  "fuel",
	},
	BucketDrink: {
		products:    []string{"Cafe muối", "Bạc xỉu", "Trà vải"},
		description: "Góc cafe chill.",
		typeDisplay: "Quán Cafe",
		reviewPool:  "food",
	},
	BucketFood: {
		products:    []string{"Món Á", "Món Âu", "Đặc sản"},
		description: "Ẩm thực trọn vị.",
		typeDisplay: "Nhà hàng",
		reviewPool:  "food",
	},
	BucketShopping: {
		products:    []string{"Mì ly", "Nước ngọt", "Bánh bao"},
		description: "Mua sắm tiện lợi.",
		typeDisplay: "Cửa hàng",
		reviewPool:  "service",
	},
	BucketService: {
		products:    []string{"Tư vấn", "Dịch vụ tận nơi", "Chăm sóc khách hàng"},
		description: "Dịch vụ uy tín.",
		typeDisplay: "Dịch vụ",
		reviewPool:  "service",
	},
}

// Exact upstream keys get a sharper label and product list than their bucket.
var keyTemplates = map[string]bucketTemplate{
	"cafe":        {products: []string{"Cafe muối", "Bạc xỉu", "Trà vải"}, description: "Góc cafe chill.", typeDisplay: "Quán Cafe"},
	"restaurant":  {products: []string{"Món Á", "Món Âu", "Đặc sản"}, description: "Ẩm thực trọn vị.", typeDisplay: "Nhà hàng"},
	"fast_food":   {products: []string{"Gà rán", "Burger", "Khoai tây"}, description: "Nhanh chóng, tiện lợi.", typeDisplay: "Đồ ăn nhanh"},
	"convenience": {products: []string{"Mì ly", "Nước ngọt", "Bánh bao"}, description: "Tiện lợi 24/7.", typeDisplay: "Tiện lợi"},
	"clothes":     {products: []string{"Áo thun", "Quần Jeans", "Váy"}, description: "Thời trang xu hướng.", typeDisplay: "Shop thời trang"},
	"pharmacy":    {products: []string{"Thuốc tây", "Khẩu trang", "Vitamin"}, description: "Dược phẩm uy tín.", typeDisplay: "Nhà thuốc"},
	"fuel":        {products: []string{"Xăng A95", "Xăng E5", "Dầu DO"}, description: "Xăng dầu chất lượng.", typeDisplay: "Trạm xăng"},
	"bank":        {products: []string{"Giao dịch", "ATM", "Tín dụng"}, description: "Dịch vụ ngân hàng.", typeDisplay: "Ngân hàng"},
}

var reviewTemplates = map[string][]string{
	"food":    {"Đồ ăn ngon, giá ổn.", "Không gian đẹp, check-in tốt.", "Phục vụ hơi chậm xíu.", "Sẽ quay lại lần sau."},
	"service": {"Dịch vụ chuyên nghiệp.", "Nhân viên nhiệt tình.", "Giá hơi cao nhưng chất lượng tốt."},
	"fuel":    {"Đổ xăng nhanh.", "Trạm rộng rãi.", "Nhân viên thân thiện."},
}

const (
	genericProduct = "Sản phẩm dịch vụ"
	genericReview  = "Dịch vụ tốt."
	defaultTag     = "Phổ biến"
)

// Synthesizer generates display-ready metadata for any category key. It is the
// guaranteed floor beneath AI enrichment.
type Synthesizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSynthesizer creates a synthesizer. A nil source is seeded from the clock;
// tests pass a fixed source for reproducible output.
func NewSynthesizer(src rand.Source) *Synthesizer {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Synthesizer{rnd: rand.New(src)}
}

// Classify maps a raw category key to its bucket. Short keywords only match
// whole words so "steam_bath" is not a tea shop.
func Classify(categoryKey string) Bucket {
	key := strings.ToLower(strings.TrimSpace(categoryKey))
	if key == "" {
		return BucketUnknown
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for _, rule := range bucketRules {
		for _, kw := range rule.keywords {
			if strings.Contains(key, kw) {
				return rule.bucket
			}
		}
		for _, w := range rule.words {
			if slices.Contains(words, w) {
				return rule.bucket
			}
		}
	}
	return BucketUnknown
}

// OpenHours returns the operating-hours heuristic for a category key.
func OpenHours(categoryKey string) string {
	key := strings.ToLower(categoryKey)
	if strings.Contains(key, "convenience") {
		return HoursAllDay
	}
	switch Classify(key) {
	case BucketDrink:
		return HoursCafe
	case BucketFuel:
		return HoursAllDay
	default:
		return HoursDefault
	}
}

// Synthesize builds metadata for a store name and category key.
func (s *Synthesizer) Synthesize(name, categoryKey string) store.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := store.Metadata{
		Rating:       math.Round((MinRating+s.rnd.Float64()*(MaxRating-MinRating))*10) / 10,
		ReviewsCount: MinReviewsCount + s.rnd.Intn(MaxReviewsCount-MinReviewsCount+1),
		Tags:         []string{defaultTag},
	}

	key := strings.ToLower(strings.TrimSpace(categoryKey))
	bucket := Classify(key)
	tmpl, ok := bucketTemplates[bucket]
	if !ok {
		meta.Products = []string{genericProduct}
		meta.Description = fmt.Sprintf("Địa điểm %s.", name)
		meta.TypeDisplay = capitalize(categoryKey)
		meta.OpenHour = HoursDefault
		meta.ReviewList = []string{genericReview}
		return meta
	}

	if exact, found := keyTemplates[key]; found {
		tmpl.products = exact.products
		tmpl.description = exact.description
		tmpl.typeDisplay = exact.typeDisplay
	}

	meta.Products = append([]string(nil), tmpl.products...)
	meta.Description = tmpl.description
	meta.TypeDisplay = tmpl.typeDisplay
	meta.OpenHour = OpenHours(key)
	meta.ReviewList = s.sampleReviews(tmpl.reviewPool, 2)
	return meta
}

// sampleReviews draws n reviews without replacement. Caller holds s.mu.
func (s *Synthesizer) sampleReviews(pool string, n int) []string {
	reviews, ok := reviewTemplates[pool]
	if !ok {
		reviews = reviewTemplates["service"]
	}
	if n > len(reviews) {
		n = len(reviews)
	}
	out := make([]string, 0, n)
	for _, idx := range s.rnd.Perm(len(reviews))[:n] {
		out = append(out, reviews[idx])
	}
	return out
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Địa điểm"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
