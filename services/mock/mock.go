// Package mock generates plausible service providers for when the store has
// none to offer. Output is a pure function of the location: the same input
// always yields the same providers.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"autocare/models"

	"github.com/google/uuid"
)

// ProviderSource is anything that can produce a provider list for a location.
type ProviderSource interface {
	GetServiceProviders(ctx context.Context, location string) ([]models.ServiceProvider, error)
}

// namespace scopes the generated ids so they never collide with store UUIDs.
var namespace = uuid.MustParse("6f1c1d1e-8a0b-4c55-9d2e-3b7a0f6c2e41")

type city struct {
	Name  string
	State string
	Lat   float64
	Lng   float64
	Zip   string
	Area  string
}

var cities = []city{
	{"Austin", "TX", 30.2672, -97.7431, "787", "512"},
	{"Seattle", "WA", 47.6062, -122.3321, "981", "206"},
	{"Denver", "CO", 39.7392, -104.9903, "802", "303"},
	{"Chicago", "IL", 41.8781, -87.6298, "606", "312"},
	{"Atlanta", "GA", 33.7490, -84.3880, "303", "404"},
	{"Phoenix", "AZ", 33.4484, -112.0740, "850", "602"},
	{"Boston", "MA", 42.3601, -71.0589, "021", "617"},
	{"Portland", "OR", 45.5152, -122.6784, "972", "503"},
	{"Nashville", "TN", 36.1627, -86.7816, "372", "615"},
	{"San Diego", "CA", 32.7157, -117.1611, "921", "619"},
	{"Miami", "FL", 25.7617, -80.1918, "331", "305"},
	{"Minneapolis", "MN", 44.9778, -93.2650, "554", "612"},
}

var serviceCatalogue = []string{
	"Oil Change",
	"Brake Service",
	"Tire Rotation",
	"Engine Diagnostics",
	"Battery Replacement",
	"Transmission Service",
	"Wheel Alignment",
	"AC Repair",
	"State Inspection",
	"Detailing",
}

var (
	namePrefixes = []string{"Precision", "Quick", "Elite", "Main Street", "Pro", "Reliable", "Summit", "Express", "Family", "Northside", "Ironclad", "Bluebonnet"}
	nameSuffixes = []string{"Auto Care", "Auto Repair", "Garage", "Motors", "Car Service", "Tire & Lube", "Automotive"}
	streets      = []string{"Main St", "Oak Ave", "Congress Ave", "Industrial Blvd", "Lamar Blvd", "Elm St", "Market St", "Route 9"}
	descriptions = []string{
		"Family-owned shop with certified technicians.",
		"Fast turnaround on routine maintenance.",
		"Dealer-quality service without the dealer prices.",
		"Specialists in diagnostics and electrical work.",
	}
)

// Generator is the deterministic ProviderSource.
type Generator struct {
	// PerLocation is the list length for a location-scoped request.
	PerLocation int
	// PerCity is how many providers each city contributes to the
	// location-agnostic list.
	PerCity int
}

func NewGenerator() *Generator {
	return &Generator{PerLocation: 8, PerCity: 2}
}

// GetServiceProviders returns providers spread over a fixed set of cities
// when location is blank, or clustered around location otherwise.
func (g *Generator) GetServiceProviders(ctx context.Context, location string) ([]models.ServiceProvider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	location = strings.TrimSpace(location)
	if location == "" {
		out := make([]models.ServiceProvider, 0, len(cities)*g.PerCity)
		for _, c := range cities {
			out = append(out, g.around(c, c.Name+", "+c.State, g.PerCity)...)
		}
		return out, nil
	}
	return g.around(resolve(location), location, g.PerLocation), nil
}

func (g *Generator) around(c city, seedText string, n int) []models.ServiceProvider {
	rng := rand.New(rand.NewSource(seed(seedText)))
	out := make([]models.ServiceProvider, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, provider(rng, c, seedText, i))
	}
	return out
}

func provider(rng *rand.Rand, c city, seedText string, i int) models.ServiceProvider {
	name := namePrefixes[rng.Intn(len(namePrefixes))] + " " + nameSuffixes[rng.Intn(len(nameSuffixes))]
	rating := math.Round((3.5+rng.Float64()*1.5)*10) / 10
	reviews := 5 + rng.Intn(495)
	verified := rng.Intn(3) > 0
	available := rng.Intn(2) == 0

	return models.ServiceProvider{
		ID:          uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s#%d", strings.ToLower(seedText), i))).String(),
		Name:        name,
		Description: descriptions[rng.Intn(len(descriptions))],
		Phone:       fmt.Sprintf("(%s) 555-%04d", c.Area, rng.Intn(10000)),
		Email:       slug(name) + "@example.com",
		Location: models.ProviderLocation{
			Address: fmt.Sprintf("%d %s", 100+rng.Intn(9900), streets[rng.Intn(len(streets))]),
			City:    c.Name,
			State:   c.State,
			Zip:     fmt.Sprintf("%s%02d", c.Zip, rng.Intn(100)),
			Coordinates: &models.Coordinates{
				Lat: round6(c.Lat + (rng.Float64()-0.5)*0.1),
				Lng: round6(c.Lng + (rng.Float64()-0.5)*0.1),
			},
		},
		Services:       pickServices(rng),
		Rating:         &rating,
		ReviewCount:    &reviews,
		Verified:       &verified,
		AvailableToday: &available,
	}
}

func pickServices(rng *rand.Rand) []string {
	perm := rng.Perm(len(serviceCatalogue))
	n := 3 + rng.Intn(4)
	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, serviceCatalogue[idx])
	}
	return out
}

// resolve parses "City, ST". Unknown places get a center derived from the name.
func resolve(location string) city {
	name, state, _ := strings.Cut(location, ",")
	name = strings.TrimSpace(name)
	state = strings.ToUpper(strings.TrimSpace(state))
	if name == "" {
		name = strings.Trim(location, " ,")
	}

	for _, c := range cities {
		if strings.EqualFold(c.Name, name) && (state == "" || state == c.State) {
			return c
		}
	}

	h := seed(strings.ToLower(location))
	return city{
		Name:  titleCase(name),
		State: state,
		Lat:   25 + float64(uint64(h)%2400)/100,
		Lng:   -70 - float64(uint64(h)/2400%5000)/100,
		Zip:   fmt.Sprintf("%03d", uint64(h)%1000),
		Area:  fmt.Sprintf("%03d", 200+uint64(h)%800),
	}
}

func seed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(s)))
	return int64(h.Sum64() & math.MaxInt64)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
