package secclient

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// diskCache keeps the ticker table, ticker→CIK resolutions and fetched
// instance documents on disk so repeated runs stay off the network. Cache
// misses fall through silently; a broken cache is never fatal.
type diskCache struct {
	dir string
	mu  sync.Mutex
}

func newDiskCache(dir string) *diskCache {
	return &diskCache{dir: dir}
}

func (c *diskCache) tickerCachePath() string {
	return filepath.Join(c.dir, "ticker_cik_cache.json")
}

func (c *diskCache) tickerTablePath() string {
	return filepath.Join(c.dir, "company_tickers.json")
}

func (c *diskCache) instancePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, "instances", hex.EncodeToString(sum[:])+".xml")
}

func (c *diskCache) getTicker(ticker string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.readTickerMap()
	cik, ok := m[ticker]
	return cik, ok
}

func (c *diskCache) putTicker(ticker, cik string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.readTickerMap()
	m[ticker] = cik
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return
	}
	c.write(c.tickerCachePath(), data)
}

func (c *diskCache) readTickerMap() map[string]string {
	m := make(map[string]string)
	data, err := os.ReadFile(c.tickerCachePath())
	if err == nil {
		_ = json.Unmarshal(data, &m)
	}
	return m
}

func (c *diskCache) getTickerTable() ([]byte, bool) {
	data, err := os.ReadFile(c.tickerTablePath())
	return data, err == nil
}

func (c *diskCache) putTickerTable(data []byte) {
	c.write(c.tickerTablePath(), data)
}

func (c *diskCache) getInstance(url string) ([]byte, bool) {
	data, err := os.ReadFile(c.instancePath(url))
	return data, err == nil
}

func (c *diskCache) putInstance(url string, data []byte) {
	c.write(c.instancePath(url), data)
}

func (c *diskCache) write(path string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
