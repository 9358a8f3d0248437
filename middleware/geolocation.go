package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ctxGeo = "geoLocation"

// ErrLocationUnavailable is returned when an IP cannot be placed.
var ErrLocationUnavailable = errors.New("location unavailable")

// GeoLocation represents the geolocation information for an IP.
type GeoLocation struct {
	IP          string  `json:"ip"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	RegionCode  string  `json:"region_code"`
	Country     string  `json:"country_name"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
}

// Place formats the location the way provider lookups expect it ("City, ST").
func (g GeoLocation) Place() string {
	switch {
	case g.City == "":
		return ""
	case g.RegionCode == "":
		return g.City
	default:
		return g.City + ", " + g.RegionCode
	}
}

const defaultGeoCacheSize = 10000

type geoEntry struct {
	geo     *GeoLocation
	expires time.Time
}

// Geolocator resolves client IPs through an ipapi.co compatible endpoint and
// caches the answers per IP.
type Geolocator struct {
	endpoint string
	client   *http.Client
	ttl      time.Duration
	logger   *zap.Logger

	mu         sync.RWMutex
	cache      map[string]geoEntry
	maxEntries int
}

// NewGeolocator queries endpoint + "/<ip>/json/".
func NewGeolocator(endpoint string, logger *zap.Logger) *Geolocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Geolocator{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
		ttl:      6 * time.Hour,
		logger:   logger,
		cache:    make(map[string]geoEntry),

		maxEntries: defaultGeoCacheSize,
	}
}

// isPrivateIP checks if an IP is private, loopback or link-local.
func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsPrivate() || parsed.IsLoopback() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified()
}

// Locate returns the approximate location of ip. Private addresses and
// lookup failures yield ErrLocationUnavailable; failures are not cached.
func (g *Geolocator) Locate(ctx context.Context, ip string) (*GeoLocation, error) {
	if isPrivateIP(ip) {
		return nil, fmt.Errorf("%w: %q is not a public address", ErrLocationUnavailable, ip)
	}

	g.mu.RLock()
	e, ok := g.cache[ip]
	g.mu.RUnlock()
	if ok && time.Now().Before(e.expires) {
		return e.geo, nil
	}

	geo, err := g.fetch(ctx, ip)
	if err != nil {
		g.logger.Warn("Geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	g.store(ip, geo)

	g.logger.Info("Geolocation retrieved from external API", zap.String("ip", ip), zap.String("city", geo.City))
	return geo, nil
}

// store caches geo for ip. A full cache first drops expired entries, then
// arbitrary ones until there is room.
func (g *Geolocator) store(ip string, geo *GeoLocation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if len(g.cache) >= g.maxEntries {
		for k, e := range g.cache {
			if now.After(e.expires) {
				delete(g.cache, k)
			}
		}
	}
	for k := range g.cache {
		if len(g.cache) < g.maxEntries {
			break
		}
		delete(g.cache, k)
	}
	g.cache[ip] = geoEntry{geo: geo, expires: now.Add(g.ttl)}
}

func (g *Geolocator) fetch(ctx context.Context, ip string) (*GeoLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", g.endpoint, ip), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var body struct {
		GeoLocation
		Error  bool   `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if body.Error {
		return nil, fmt.Errorf("geolocation API refused lookup: %s", body.Reason)
	}
	if body.Latitude == 0 && body.Longitude == 0 {
		return nil, errors.New("geolocation API returned no coordinates")
	}
	geo := body.GeoLocation
	geo.IP = ip
	return &geo, nil
}

// Middleware resolves the client's location and stores it in the context.
// A failure is stored too, and the request always continues.
func (g *Geolocator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		geo, err := g.Locate(c.Request.Context(), c.ClientIP())
		c.Set(ctxGeo, geoResult{geo: geo, err: err})
		c.Next()
	}
}

type geoResult struct {
	geo *GeoLocation
	err error
}

// GeoFromContext returns what Middleware resolved for this request.
func GeoFromContext(c *gin.Context) (*GeoLocation, error) {
	v, ok := c.Get(ctxGeo)
	if !ok {
		return nil, ErrLocationUnavailable
	}
	r := v.(geoResult)
	return r.geo, r.err
}
