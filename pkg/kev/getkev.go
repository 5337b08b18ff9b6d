package kev

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	version2 "github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const dateFile = "date.txt"

type Options struct {
	URL   string
	Store string
	TTL   time.Duration

	// Reset drops the cache before updating.
	Reset bool
	// Skip uses the cache as is.
	Skip bool
}

// Fetch opens the catalog cache and refreshes it when expired. A failed
// download is logged and the existing cache is still returned.
func Fetch(ctx context.Context, opts Options) (*Client, error) {
	cli := &Client{
		Cli: &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				IdleConnTimeout: 60 * time.Second,
			},
			Timeout: 2 * time.Minute,
		},
		Store: opts.Store,
		URL:   opts.URL,
		TTL:   opts.TTL,
	}

	if opts.Reset {
		_ = os.Remove(filepath.Join(opts.Store, dateFile))
		_ = os.Remove(filepath.Join(opts.Store, dbName))
	}

	if err := cli.Init(); err != nil {
		return nil, fmt.Errorf("init KEV cache: %w", err)
	}

	if opts.Skip {
		log.Debug().Msg("skipping KEV catalog update")
		return cli, nil
	}

	if !checkExpired(opts.Store, opts.TTL, time.Now()) {
		log.Info().Msg("KEV catalog is up to date")
		return cli, nil
	}

	log.Info().Str("url", opts.URL).Msg("updating KEV catalog")
	if err := cli.Update(ctx); err != nil {
		log.Error().Err(err).Msg("failed to update KEV catalog, using cached data")
		return cli, nil
	}

	if err := writeLog(opts.Store, time.Now()); err != nil {
		log.Warn().Err(err).Msg("failed to write KEV date log")
	}

	return cli, nil
}

// Update downloads the catalog and stores it unless it is older than the cache.
func (c *Client) Update(ctx context.Context) error {
	data, err := c.download(ctx)
	if err != nil {
		return err
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return err
	}

	cached, err := c.CachedVersion()
	if err != nil {
		return err
	}

	if older(catalog.Version, cached) {
		log.Warn().Str("downloaded", catalog.Version).Str("cached", cached).
			Msg("downloaded KEV catalog is older than the cache, keeping the cache")
		return nil
	}

	if err := c.store(ctx, catalog); err != nil {
		return fmt.Errorf("store KEV catalog: %w", err)
	}

	log.Info().Str("title", catalog.Title).Str("version", catalog.Version).
		Str("released", catalog.Released).Int("entries", len(catalog.Entries)).
		Msg("KEV catalog stored")
	return nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.Cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	return io.ReadAll(res.Body)
}

// older reports whether downloaded is a strictly lower version than cached.
// Unparseable versions never count as older.
func older(downloaded, cached string) bool {
	if downloaded == "" || cached == "" {
		return false
	}

	d, err := version2.NewVersion(downloaded)
	if err != nil {
		return false
	}
	c, err := version2.NewVersion(cached)
	if err != nil {
		return false
	}

	return d.LessThan(c)
}

// ParseCatalog reads the CISA KEV JSON feed.
func ParseCatalog(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("KEV catalog is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	vulns := root.Get("vulnerabilities")
	if !vulns.IsArray() {
		return nil, errors.New("KEV catalog has no vulnerabilities")
	}

	catalog := &Catalog{
		Title:    root.Get("title").String(),
		Version:  root.Get("catalogVersion").String(),
		Released: root.Get("dateReleased").String(),
	}

	vulns.ForEach(func(_, v gjson.Result) bool {
		cve := Normalize(v.Get("cveID").String())
		if cve == "" {
			return true
		}

		catalog.Entries = append(catalog.Entries, &Entry{
			CVEID:                      cve,
			VendorProject:              v.Get("vendorProject").String(),
			Product:                    v.Get("product").String(),
			VulnerabilityName:          v.Get("vulnerabilityName").String(),
			DateAdded:                  v.Get("dateAdded").String(),
			ShortDescription:           v.Get("shortDescription").String(),
			RequiredAction:             v.Get("requiredAction").String(),
			DueDate:                    v.Get("dueDate").String(),
			KnownRansomwareCampaignUse: v.Get("knownRansomwareCampaignUse").String(),
			Notes:                      v.Get("notes").String(),
		})
		return true
	})

	return catalog, nil
}

// ReadCVEFile reads one CVE per line, ignoring blank lines.
func ReadCVEFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cves := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cves = append(cves, line)
	}

	return cves, scanner.Err()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mkFolder(path string) error {
	if !exists(path) {
		err := os.MkdirAll(path, os.FileMode(0755))
		if err != nil {
			return err
		}
	}
	return nil
}

func checkExpired(path string, ttl time.Duration, now time.Time) bool {
	value, err := os.ReadFile(filepath.Join(path, dateFile))
	if err != nil || len(value) < 1 {
		return true
	}

	logDate, err := time.Parse(time.RFC3339, strings.TrimSpace(string(value)))
	if err != nil {
		log.Debug().Msg("KEV date log format error, expired")
		return true
	}

	return now.After(logDate.Add(ttl))
}

func writeLog(path string, now time.Time) error {
	return os.WriteFile(filepath.Join(path, dateFile), []byte(now.Format(time.RFC3339)), 0644)
}
