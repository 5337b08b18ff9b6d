package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kvesta/scandiff/internal/diff"
	"github.com/kvesta/scandiff/internal/inventory"

	"k8s.io/apimachinery/pkg/util/json"
)

const (
	maxRecordName   = 150
	timestampLayout = "20060102_150405"
)

// RecordHeader is the header row of the comparison record.
var RecordHeader = []string{"Status", "Image", "CVE", "Package", "Severity"}

var createFile = os.Create

var nameReplacer = strings.NewReplacer(".csv", "", ".", "_", " ", "_", "(", "", ")", "")

// RecordName derives the record file name from both inputs. Names longer than
// the bound fall back to a generic timestamped name.
func RecordName(pathA, pathB string, now time.Time) string {
	stamp := now.Format(timestampLayout)

	name := fmt.Sprintf("comparison_%s_vs_%s_%s.csv",
		safeName(pathA), safeName(pathB), stamp)
	if len(name) > maxRecordName {
		name = fmt.Sprintf("vulnerability_comparison_%s.csv", stamp)
	}

	return name
}

func safeName(path string) string {
	return nameReplacer.Replace(filepath.Base(path))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mkFolder(path string) error {
	if path == "" || exists(path) {
		return nil
	}
	return os.MkdirAll(path, os.FileMode(0755))
}

// WriteRecord writes the comparison as CSV, remediated rows first.
func WriteRecord(filename string, c *diff.Comparison) (err error) {
	if err := mkFolder(filepath.Dir(filename)); err != nil {
		return err
	}

	f, err := createFile(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		// No partial record is left behind.
		if err != nil {
			os.Remove(filename)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(RecordHeader); err != nil {
		return fmt.Errorf("write record header: %w", err)
	}

	for _, group := range []struct {
		status  string
		records []inventory.Record
	}{
		{diff.StatusRemediated, c.Remediated},
		{diff.StatusNew, c.New},
	} {
		for _, r := range group.records {
			if err := w.Write([]string{group.status, r.Image, r.CVE, r.Package, r.Severity}); err != nil {
				return fmt.Errorf("write %s row: %w", group.status, err)
			}
		}
	}

	w.Flush()
	return w.Error()
}

// Meta describes the inputs of a comparison in the JSON record.
type Meta struct {
	Baseline   string `json:"baseline"`
	Comparison string `json:"comparison"`
	Timestamp  string `json:"timestamp"`
}

type jsonRecord struct {
	Meta Meta `json:"meta"`
	*diff.Comparison
}

// WriteJSON writes the JSON twin of the CSV record.
func WriteJSON(filename string, meta Meta, c *diff.Comparison) error {
	if err := mkFolder(filepath.Dir(filename)); err != nil {
		return err
	}

	data, err := json.Marshal(jsonRecord{Meta: meta, Comparison: c})
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
