package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/kvesta/scandiff/internal/inventory"
	"github.com/kvesta/scandiff/pkg/kev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

var fixedNow = func() time.Time { return time.Date(2024, 10, 15, 9, 30, 0, 0, time.UTC) }

const header = "image,vulnerability,packageName,severity\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDoCompare(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "scan-a.csv", header+
		"img1,CVE-2024-0001,pkg-a,High\n"+
		"img1,CVE-2024-0003,pkg-c,Low\n")
	b := writeFile(t, dir, "scan-b.csv", header+
		"img1,CVE-2024-0003,pkg-c,Critical\n"+
		"img1,CVE-2024-0002,pkg-b,Critical\n")
	outDir := filepath.Join(dir, "out")

	var buf bytes.Buffer
	res, err := DoCompare(context.Background(), CompareOptions{
		PathA: a, PathB: b, OutputDir: outDir, JSON: true, Out: &buf, Now: fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, res.ErrA)
	require.NoError(t, res.ErrB)

	require.Len(t, res.Comparison.Remediated, 1)
	assert.Equal(t, "CVE-2024-0001", res.Comparison.Remediated[0].CVE)
	assert.Equal(t, "High", res.Comparison.Remediated[0].Severity)
	require.Len(t, res.Comparison.New, 1)
	assert.Equal(t, "CVE-2024-0002", res.Comparison.New[0].CVE)

	assert.True(t, res.Saved())
	assert.Equal(t, filepath.Join(outDir, "comparison_scan-a_vs_scan-b_20241015_093000.csv"), res.RecordPath)
	data, err := os.ReadFile(res.RecordPath)
	require.NoError(t, err)
	assert.Equal(t, "Status,Image,CVE,Package,Severity\n"+
		"Remediated,img1,CVE-2024-0001,pkg-a,High\n"+
		"New,img1,CVE-2024-0002,pkg-b,Critical\n", string(data))
	assert.FileExists(t, res.JSONPath)

	out := buf.String()
	assert.Contains(t, out, "Attempting to compare 'scan-a.csv' and 'scan-b.csv'")
	assert.Contains(t, out, "Detailed results were also saved to")
	assert.NotContains(t, out, "NOT saved")
}

func TestDoCompareMissingSeverityColumn(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "image,vulnerability,packageName\nimg1,CVE-1,pkg-a\n")
	b := writeFile(t, dir, "b.csv", header+"img1,CVE-1,pkg-a,High\nimg2,CVE-2,pkg-b,\n")

	var buf bytes.Buffer
	res, err := DoCompare(context.Background(), CompareOptions{
		PathA: a, PathB: b, OutputDir: dir, Out: &buf, Now: fixedNow,
	})
	require.NoError(t, err)

	var perr *inventory.Error
	require.True(t, errors.As(res.ErrA, &perr))
	assert.Equal(t, inventory.KindMissingColumns, perr.Kind)
	assert.Empty(t, res.A.Inventory)

	assert.Empty(t, res.Comparison.Remediated)
	require.Len(t, res.Comparison.New, 2)
	assert.Equal(t, "Unknown", res.Comparison.New[1].Severity)

	// Both files existed, so the record is still written.
	assert.True(t, res.Saved())
	assert.Contains(t, buf.String(), "(No unique vulnerabilities found only in 'a.csv')")
}

func TestDoCompareNeitherExists(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	res, err := DoCompare(context.Background(), CompareOptions{
		PathA: filepath.Join(dir, "a.csv"), PathB: filepath.Join(dir, "b.csv"),
		OutputDir: dir, Out: &buf, Now: fixedNow,
	})
	require.NoError(t, err)

	assert.Error(t, res.ErrA)
	assert.Error(t, res.ErrB)
	assert.True(t, res.Comparison.Empty())
	assert.False(t, res.Saved())
	assert.NotEmpty(t, res.SkipReason)
	assert.Contains(t, buf.String(), "Detailed results were NOT saved")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDoCompareOneBlankPath(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.csv", header+"img1,CVE-1,pkg-a,High\n")

	var buf bytes.Buffer
	res, err := DoCompare(context.Background(), CompareOptions{PathB: b, OutputDir: dir, Out: &buf})
	require.NoError(t, err)

	assert.Len(t, res.Comparison.New, 1)
	assert.False(t, res.Saved())
	assert.Contains(t, buf.String(), "[Invalid Path A]")
}

func TestDoCompareNoInput(t *testing.T) {
	_, err := DoCompare(context.Background(), CompareOptions{PathA: " ", PathB: ""})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestDoCompareWriteFailure(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", header+"img1,CVE-1,pkg-a,High\n")
	b := writeFile(t, dir, "b.csv", header)
	blocker := writeFile(t, dir, "blocker", "x")

	var buf bytes.Buffer
	res, err := DoCompare(context.Background(), CompareOptions{
		PathA: a, PathB: b, OutputDir: blocker, Out: &buf, Now: fixedNow,
	})
	require.NoError(t, err)

	assert.Error(t, res.WriteErr)
	assert.False(t, res.Saved())
	assert.Len(t, res.Comparison.Remediated, 1)

	out := buf.String()
	assert.Contains(t, out, "CVE-1")
	assert.Contains(t, out, "Detailed results were NOT saved")
}

func TestDoCompareKEV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"catalogVersion": "2024.10.15", "vulnerabilities": [
			{"cveID": "CVE-2024-0002", "vendorProject": "Acme", "product": "Widget", "dateAdded": "2024-02-01"}]}`)
	}))
	defer server.Close()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", header+"img1,CVE-2024-0001,pkg-a,High\n")
	b := writeFile(t, dir, "b.csv", header+"img1,CVE-2024-0002,pkg-b,Critical\n")

	var buf bytes.Buffer
	_, err := DoCompare(context.Background(), CompareOptions{
		PathA: a, PathB: b, OutputDir: dir, Out: &buf, Now: fixedNow,
		KEV:        true,
		KEVOptions: kev.Options{URL: server.URL, Store: filepath.Join(dir, "kev"), TTL: time.Hour},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Known Exploited Vulnerabilities")
	assert.Contains(t, out, "Acme / Widget")
}
