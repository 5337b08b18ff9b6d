package kev

import (
	"database/sql"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	Cli *http.Client
	DB  *sql.DB

	Store string
	URL   string
	TTL   time.Duration
}

// Entry is one CISA Known Exploited Vulnerabilities record.
type Entry struct {
	CVEID                      string `json:"cveID"`
	VendorProject              string `json:"vendorProject"`
	Product                    string `json:"product"`
	VulnerabilityName          string `json:"vulnerabilityName"`
	DateAdded                  string `json:"dateAdded"`
	ShortDescription           string `json:"shortDescription"`
	RequiredAction             string `json:"requiredAction"`
	DueDate                    string `json:"dueDate"`
	KnownRansomwareCampaignUse string `json:"knownRansomwareCampaignUse"`
	Notes                      string `json:"notes"`
}

type Catalog struct {
	Title    string
	Version  string
	Released string
	Entries  []*Entry
}

// Normalize trims and upper-cases a CVE identifier for lookups.
func Normalize(cve string) string {
	return strings.ToUpper(strings.TrimSpace(cve))
}
