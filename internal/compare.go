package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kvesta/scandiff/config"
	"github.com/kvesta/scandiff/internal/diff"
	"github.com/kvesta/scandiff/internal/inventory"
	"github.com/kvesta/scandiff/internal/report"
	"github.com/kvesta/scandiff/pkg/kev"

	"github.com/rs/zerolog/log"
)

// ErrNoInput is returned when neither report path was supplied.
var ErrNoInput = errors.New("no report paths supplied")

type CompareOptions struct {
	// PathA is the baseline (older) report, PathB the newer one.
	PathA string
	PathB string

	OutputDir string
	JSON      bool

	// KEV annotates differing CVEs with the CISA catalog.
	KEV        bool
	KEVOptions kev.Options

	Out io.Writer
	Now func() time.Time
}

type CompareResult struct {
	A    *inventory.Report
	B    *inventory.Report
	ErrA error
	ErrB error

	Comparison *diff.Comparison

	// RecordPath is empty when no record was saved.
	RecordPath string
	JSONPath   string
	// SkipReason explains a missing record.
	SkipReason string
	WriteErr   error
}

// Saved reports whether the comparison record was written.
func (r *CompareResult) Saved() bool {
	return r.RecordPath != ""
}

// DoCompare parses both reports, diffs them, prints the result and writes the
// comparison record. Parse and write failures are reported, not returned.
func DoCompare(ctx context.Context, opts CompareOptions) (*CompareResult, error) {
	if strings.TrimSpace(opts.PathA) == "" && strings.TrimSpace(opts.PathB) == "" {
		return nil, ErrNoInput
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	labelA := label(opts.PathA, "[Invalid Path A]")
	labelB := label(opts.PathB, "[Invalid Path B]")
	fmt.Fprintf(out, "\nAttempting to compare '%s' and '%s'...\n", labelA, labelB)

	res := &CompareResult{}
	res.A, res.ErrA = inventory.ParseFile(opts.PathA)
	logParse("A", res.A, res.ErrA)
	res.B, res.ErrB = inventory.ParseFile(opts.PathB)
	logParse("B", res.B, res.ErrB)

	res.Comparison = diff.Compare(res.A.Inventory, res.B.Inventory)

	switch {
	case !res.A.Readable || !res.B.Readable:
		res.SkipReason = "one or both input files were not found or paths were invalid"
		log.Warn().Msg("skipping comparison record: " + res.SkipReason)
	default:
		stamp := now()
		res.RecordPath = filepath.Join(opts.OutputDir, report.RecordName(opts.PathA, opts.PathB, stamp))

		log.Info().Str("file", res.RecordPath).Msg("writing comparison record")
		if err := report.WriteRecord(res.RecordPath, res.Comparison); err != nil {
			log.Error().Err(err).Str("file", res.RecordPath).Msg("could not write comparison record")
			res.WriteErr = err
			res.SkipReason = fmt.Sprintf("writing '%s' failed", res.RecordPath)
			res.RecordPath = ""
			break
		}

		if opts.JSON {
			jsonPath := strings.TrimSuffix(res.RecordPath, ".csv") + ".json"
			meta := report.Meta{Baseline: labelA, Comparison: labelB, Timestamp: stamp.Format(time.RFC3339)}
			if err := report.WriteJSON(jsonPath, meta, res.Comparison); err != nil {
				log.Error().Err(err).Str("file", jsonPath).Msg("could not write JSON record")
			} else {
				res.JSONPath = jsonPath
			}
		}
	}

	report.PrintComparison(out, labelA, labelB, res.Comparison)

	if opts.KEV {
		annotateKEV(ctx, out, opts.KEVOptions, res.Comparison)
	}

	fmt.Fprintf(out, "\n--- End of Comparison ---\n")
	if res.Saved() {
		fmt.Fprintf(out, "\nNOTE: Detailed results were also saved to '%s'.\n", config.Yellow(res.RecordPath))
		if res.JSONPath != "" {
			fmt.Fprintf(out, "NOTE: JSON results were saved to '%s'.\n", config.Yellow(res.JSONPath))
		}
	} else {
		fmt.Fprintf(out, "\nNOTE: Detailed results were NOT saved to a CSV file: %s.\n", res.SkipReason)
	}

	return res, nil
}

func annotateKEV(ctx context.Context, out io.Writer, opts kev.Options, c *diff.Comparison) {
	if c.Empty() {
		return
	}

	cli, err := kev.Fetch(ctx, opts)
	if err != nil {
		log.Error().Err(err).Msg("KEV lookup unavailable")
		return
	}
	defer cli.Close()

	known, err := cli.LookupAll(c.CVEs())
	if err != nil {
		log.Error().Err(err).Msg("KEV lookup failed")
		return
	}

	report.PrintExploited(out, c, known)
}

func label(path, fallback string) string {
	if strings.TrimSpace(path) == "" {
		return fallback
	}
	return filepath.Base(path)
}

func logParse(side string, rep *inventory.Report, err error) {
	if err == nil {
		log.Info().Str("report", side).Str("file", rep.Name).
			Int("findings", len(rep.Inventory)).Int("skipped", rep.Skipped).
			Msg("report parsed")
		return
	}

	var perr *inventory.Error
	if errors.As(err, &perr) && perr.Kind == inventory.KindRead {
		log.Error().Err(err).Str("report", side).Int("findings", len(rep.Inventory)).
			Msg("report read failed, using rows read so far")
		return
	}
	log.Error().Err(err).Str("report", side).Msg("report unusable, treating it as empty")
}
