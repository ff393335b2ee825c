// Package geoip resolves visitor IPs to country codes with a MaxMind
// GeoLite2-Country database. Lookups degrade to empty results when no
// database is configured, so analytics keeps working without one.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

var privateCIDRs []*net.IPNet

func init() {
	blocks := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",
		"fe80::/10",
	}
	for _, block := range blocks {
		if _, cidr, err := net.ParseCIDR(block); err == nil {
			privateCIDRs = append(privateCIDRs, cidr)
		}
	}
}

// Lookup wraps a GeoLite2-Country reader with hot-reload support.
type Lookup struct {
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
	enabled   bool
	mu        sync.RWMutex
}

type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup creates a lookup. Call Init before use.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Init loads the database at dbPath. An empty path disables lookups
// without error.
func (g *Lookup) Init(dbPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dbPath = dbPath
	if dbPath == "" {
		g.enabled = false
		return nil
	}
	return g.loadDatabase()
}

// loadDatabase opens or reopens the reader. Caller holds the write lock.
func (g *Lookup) loadDatabase() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		g.enabled = false
		return fmt.Errorf("geoip database stat: %w", err)
	}

	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	if g.db != nil {
		_ = g.db.Close()
		g.db = nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		g.enabled = false
		return fmt.Errorf("opening geoip database: %w", err)
	}

	g.db = db
	g.dbModTime = info.ModTime()
	g.enabled = true
	return nil
}

// Reload reopens the database if the file on disk changed. Safe to call
// from a cron schedule.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}
	return g.loadDatabase()
}

// LookupCountry returns the two-letter ISO code for ip, "LOCAL" for
// private and loopback addresses, or "" when the lookup is disabled or
// the address is unknown.
func (g *Lookup) LookupCountry(ip string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	if parsed.IsLoopback() || isPrivateIP(parsed) {
		return "LOCAL"
	}

	if !g.enabled || g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// IsEnabled reports whether a database is loaded.
func (g *Lookup) IsEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// Close releases the reader.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		err := g.db.Close()
		g.db = nil
		g.enabled = false
		return err
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
