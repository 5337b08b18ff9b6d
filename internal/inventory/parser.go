package inventory

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	ColumnImage    = "image"
	ColumnCVE      = "vulnerability"
	ColumnPackage  = "packageName"
	ColumnSeverity = "severity"

	UnknownSeverity = "Unknown"
)

// RequiredColumns must all appear in the header, matched case-sensitively.
var RequiredColumns = []string{ColumnImage, ColumnCVE, ColumnPackage, ColumnSeverity}

// ParseFile reads the report at path. The returned report is never nil and
// its inventory is empty when err is not nil, except for KindRead where the
// rows read before the failure are kept.
func ParseFile(path string) (*Report, error) {
	rep := newReport(path)

	if strings.TrimSpace(path) == "" {
		return rep, &Error{Kind: KindEmptyPath}
	}

	if _, err := os.Stat(path); err != nil {
		return rep, &Error{Kind: KindNotFound, Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return rep, &Error{Kind: KindUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	rep.Readable = true
	log.Debug().Str("report", rep.Name).Msg("report opened")

	err = parse(f, rep)
	log.Debug().Str("report", rep.Name).
		Int("rows", rep.Rows).
		Int("added", rep.Added).
		Int("skipped", rep.Skipped).
		Int("unique", len(rep.Inventory)).
		Msg("report parsed")

	return rep, err
}

// Parse reads a report from r. name labels the report in errors.
func Parse(r io.Reader, name string) (*Report, error) {
	rep := newReport(name)
	rep.Readable = true

	return rep, parse(r, rep)
}

func newReport(path string) *Report {
	rep := &Report{
		Path:      path,
		Inventory: Inventory{},
	}
	if path != "" {
		rep.Name = filepath.Base(path)
	}
	return rep
}

func parse(r io.Reader, rep *Report) error {
	// Strip a UTF-8 BOM and substitute invalid sequences instead of failing.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	// Free-text columns may carry bare quotes, e.g. 5" widget.
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			err = errors.New("file is empty")
		}
		return &Error{Kind: KindNoHeader, Path: rep.Path, Err: err}
	}
	rep.Header = header

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &Error{Kind: KindMissingColumns, Path: rep.Path, Missing: missing, Header: header}
	}

	field := func(record []string, name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	for {
		record, err := reader.Read()
		if err == io.EOF && len(record) == 0 {
			break
		}

		// An unterminated quote runs to the end of input and comes back with io.EOF.
		last := err == io.EOF
		if err != nil && !last {
			return &Error{Kind: KindRead, Path: rep.Path, Err: err}
		}

		rep.Rows++

		id := Identity{
			Image:   field(record, ColumnImage),
			CVE:     field(record, ColumnCVE),
			Package: field(record, ColumnPackage),
		}
		if !id.complete() {
			rep.Skipped++
			continue
		}

		severity := field(record, ColumnSeverity)
		if severity == "" {
			severity = UnknownSeverity
		}

		rep.Inventory.Put(Record{Identity: id, Severity: severity})
		rep.Added++

		if last {
			break
		}
	}

	return nil
}
