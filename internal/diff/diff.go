package diff

import (
	"sort"

	"github.com/kvesta/scandiff/internal/inventory"
)

const (
	StatusRemediated = "Remediated"
	StatusNew        = "New"
)

// Comparison holds the findings unique to each side. Findings present in
// both inventories are not reported.
type Comparison struct {
	// Remediated are in the baseline only, with the baseline severity.
	Remediated []inventory.Record `json:"remediated"`
	// New are in the comparison only, with the comparison severity.
	New []inventory.Record `json:"new"`
}

// Compare computes keys(a)-keys(b) and keys(b)-keys(a). A nil inventory is
// treated as empty.
func Compare(a, b inventory.Inventory) *Comparison {
	return &Comparison{
		Remediated: subtract(a, b),
		New:        subtract(b, a),
	}
}

func subtract(from, other inventory.Inventory) []inventory.Record {
	records := []inventory.Record{}

	for id, r := range from {
		if other.Has(id) {
			continue
		}
		records = append(records, r)
	}

	sortRecords(records)
	return records
}

func sortRecords(records []inventory.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Identity.Less(records[j].Identity)
	})
}

func (c *Comparison) Empty() bool {
	return c.Len() == 0
}

func (c *Comparison) Len() int {
	return len(c.Remediated) + len(c.New)
}

// CVEs lists the distinct vulnerability identifiers of both sides in order.
func (c *Comparison) CVEs() []string {
	seen := map[string]bool{}
	cves := []string{}

	for _, records := range [][]inventory.Record{c.Remediated, c.New} {
		for _, r := range records {
			if seen[r.CVE] {
				continue
			}
			seen[r.CVE] = true
			cves = append(cves, r.CVE)
		}
	}

	sort.Strings(cves)
	return cves
}
