package services

import (
	"log"
	"net"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// Location is the result of a successful IP lookup. Every field is
// independently nullable: the source database may know the country of an
// address but not its city. A lookup either yields a Location or nil,
// never an error.
type Location struct {
	Country     *string  `json:"country,omitempty"`
	CountryCode *string  `json:"country_code,omitempty"`
	City        *string  `json:"city,omitempty"`
	Region      *string  `json:"region,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Timezone    *string  `json:"timezone,omitempty"`
}

// GeoIPService answers IP-to-location queries from a local MaxMind database.
// The service has two terminal states: Ready (database loaded) and Disabled
// (database absent or unreadable). Initialization never aborts the process
// and Lookup never raises; a disabled resolver simply answers "unknown".
type GeoIPService interface {
	Lookup(ip string) *Location
	Enabled() bool
	Close() error
}

type GeoIPServiceImpl struct {
	dbPath string

	initOnce sync.Once
	reader   *geoip2.Reader
	disabled bool
}

// NewGeoIPService creates a lazily initialized resolver for the database at
// dbPath. The file is not touched until the first Lookup or Enabled call.
func NewGeoIPService(dbPath string) GeoIPService {
	return &GeoIPServiceImpl{dbPath: dbPath}
}

func (s *GeoIPServiceImpl) init() {
	s.initOnce.Do(func() {
		reader, err := geoip2.Open(s.dbPath)
		if err != nil {
			log.Printf("GeoIP database unavailable, geolocation disabled: %v", err)
			s.disabled = true
			return
		}
		s.reader = reader
		log.Printf("GeoIP database loaded from %s", s.dbPath)
	})
}

// Enabled reports whether the resolver reached the Ready state
func (s *GeoIPServiceImpl) Enabled() bool {
	s.init()
	return !s.disabled
}

// Close releases the database reader
func (s *GeoIPServiceImpl) Close() error {
	if s.reader != nil {
		return s.reader.Close()
	}
	return nil
}

// Lookup resolves an IP address to a Location. It returns nil for empty,
// local, private, unknown, or unresolvable addresses.
func (s *GeoIPServiceImpl) Lookup(ip string) *Location {
	if ip == "" || strings.EqualFold(ip, "localhost") {
		return nil
	}

	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return nil
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return nil
	}

	s.init()
	if s.disabled {
		return nil
	}

	record, err := s.reader.City(parsed)
	if err != nil {
		// Malformed databases and truncated reads are worth a log line;
		// an address that simply is not in the database is not
		log.Printf("GeoIP lookup failed for %s: %v", ip, err)
		return nil
	}
	if record == nil || (record.Country.IsoCode == "" && record.City.GeoNameID == 0) {
		return nil
	}

	loc := &Location{}
	if name := record.Country.Names["en"]; name != "" {
		loc.Country = &name
	}
	if code := record.Country.IsoCode; code != "" {
		loc.CountryCode = &code
	}
	if name := record.City.Names["en"]; name != "" {
		loc.City = &name
	}
	if len(record.Subdivisions) > 0 {
		if name := record.Subdivisions[0].Names["en"]; name != "" {
			loc.Region = &name
		}
	}
	if tz := record.Location.TimeZone; tz != "" {
		loc.Timezone = &tz
	}
	lat, lon := record.Location.Latitude, record.Location.Longitude
	if lat != 0 || lon != 0 {
		loc.Latitude = &lat
		loc.Longitude = &lon
	}
	return loc
}
