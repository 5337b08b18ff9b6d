package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/kvesta/scandiff/config"
	"github.com/kvesta/scandiff/internal/diff"
	"github.com/kvesta/scandiff/internal/inventory"
	"github.com/kvesta/scandiff/pkg/kev"

	"github.com/olekukonko/tablewriter"
)

// PrintComparison prints the findings unique to each side, remediated first.
func PrintComparison(w io.Writer, labelA, labelB string, c *diff.Comparison) {

	fmt.Fprintf(w, "\n--- Comparison Results ---\n")
	fmt.Fprintf(w, "\nDetected %s differences | Remediated: %s New: %s\n",
		config.Yellow(c.Len()),
		config.Green(len(c.Remediated)),
		config.Red(len(c.New)))

	fmt.Fprintf(w, "\nA) Remediated Vulnerabilities (Present in '%s' but NOT in '%s'):\n", labelA, labelB)
	printRecords(w, c.Remediated, labelA)

	fmt.Fprintf(w, "\nB) New Vulnerabilities (Present in '%s' but NOT in '%s'):\n", labelB, labelA)
	printRecords(w, c.New, labelB)
}

func printRecords(w io.Writer, records []inventory.Record, label string) {
	if len(records) == 0 {
		fmt.Fprintf(w, "  (No unique vulnerabilities found only in '%s')\n", label)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Image", "CVE", "Package", "Severity"})
	table.SetAutoWrapText(false)
	table.SetRowLine(true)

	for i, r := range records {
		table.Append([]string{
			strconv.Itoa(i + 1), r.Image, r.CVE, r.Package, judgeSeverity(r.Severity),
		})
	}

	table.Render()
}

// PrintExploited lists the differing CVEs that appear in the KEV catalog.
func PrintExploited(w io.Writer, c *diff.Comparison, known map[string]*kev.Entry) {
	fmt.Fprintf(w, "\n--- Known Exploited Vulnerabilities ---\n")

	type hit struct {
		status string
		cve    string
		entry  *kev.Entry
	}

	hits := []hit{}
	for status, records := range map[string][]inventory.Record{
		diff.StatusRemediated: c.Remediated,
		diff.StatusNew:        c.New,
	} {
		seen := map[string]bool{}
		for _, r := range records {
			e, ok := known[kev.Normalize(r.CVE)]
			if !ok || seen[r.CVE] {
				continue
			}
			seen[r.CVE] = true
			hits = append(hits, hit{status: status, cve: r.CVE, entry: e})
		}
	}

	if len(hits) == 0 {
		fmt.Fprintf(w, "  (No differing CVE is in CISA's Known Exploited Vulnerabilities catalog)\n")
		return
	}

	// New before Remediated, then by CVE.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].status != hits[j].status {
			return hits[i].status == diff.StatusNew
		}
		return hits[i].cve < hits[j].cve
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Status", "CVE", "Vendor / Product", "Date Added", "Ransomware"})
	table.SetAutoWrapText(false)

	for _, h := range hits {
		status := h.status
		if status == diff.StatusNew {
			status = config.Red(status)
		} else {
			status = config.Green(status)
		}

		table.Append([]string{
			status, h.cve,
			fmt.Sprintf("%s / %s", h.entry.VendorProject, h.entry.Product),
			h.entry.DateAdded, h.entry.KnownRansomwareCampaignUse,
		})
	}

	table.Render()
}

// PrintKEVResults prints one row per requested CVE.
func PrintKEVResults(w io.Writer, cves []string, known map[string]*kev.Entry) {
	inCatalog := 0
	for _, cve := range cves {
		if _, ok := known[kev.Normalize(cve)]; ok {
			inCatalog++
		}
	}

	fmt.Fprintf(w, "\nChecked %s CVEs | Known exploited: %s\n\n",
		config.Yellow(len(cves)), config.Red(inCatalog))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CVE", "Known Exploited", "Vulnerability", "Date Added", "Due Date"})
	table.SetAutoWrapText(false)

	for _, cve := range cves {
		e, ok := known[kev.Normalize(cve)]
		if !ok {
			table.Append([]string{cve, config.Green("no"), "", "", ""})
			continue
		}
		table.Append([]string{cve, config.Red("yes"), e.VulnerabilityName, e.DateAdded, e.DueDate})
	}

	table.Render()
}

// severity is a free-form label; only its colour depends on the value.
func judgeSeverity(severity string) string {

	switch strings.ToLower(severity) {
	case "critical":
		return config.Red(severity)
	case "high":
		return config.Pink(severity)
	case "medium", "moderate":
		return config.Yellow(severity)
	case "low", "negligible":
		return config.Green(severity)
	default:
		// ignore
	}
	return severity
}
