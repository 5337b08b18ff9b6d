package inventory

// Identity is the key of a finding. Two rows with the same identity are the
// same finding, whatever their severity.
type Identity struct {
	Image   string `json:"image"`
	CVE     string `json:"cve"`
	Package string `json:"package"`
}

// Less orders identities by image, then CVE, then package.
func (id Identity) Less(o Identity) bool {
	if id.Image != o.Image {
		return id.Image < o.Image
	}
	if id.CVE != o.CVE {
		return id.CVE < o.CVE
	}
	return id.Package < o.Package
}

func (id Identity) complete() bool {
	return id.Image != "" && id.CVE != "" && id.Package != ""
}

type Record struct {
	Identity
	Severity string `json:"severity"`
}

// Inventory holds the findings of one report.
type Inventory map[Identity]Record

// Put stores r, replacing any record with the same identity.
func (inv Inventory) Put(r Record) {
	inv[r.Identity] = r
}

func (inv Inventory) Has(id Identity) bool {
	_, ok := inv[id]
	return ok
}

// Report is the outcome of parsing one input, successful or not.
type Report struct {
	Path string
	Name string

	// Readable is set once the file was opened.
	Readable bool
	Header   []string

	Rows    int
	Added   int
	Skipped int

	Inventory Inventory
}
