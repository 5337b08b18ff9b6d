package internal

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/kvesta/scandiff/internal/report"
	"github.com/kvesta/scandiff/pkg/kev"

	"github.com/rs/zerolog/log"
)

type KEVCheckOptions struct {
	CVEs []string
	// File lists one CVE per line and is appended to CVEs.
	File string

	KEVOptions kev.Options
	Out        io.Writer
}

// DoKEVCheck looks every CVE up in the CISA KEV catalog and prints the result.
func DoKEVCheck(ctx context.Context, opts KEVCheckOptions) (map[string]*kev.Entry, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	cves := append([]string{}, opts.CVEs...)
	if opts.File != "" {
		fromFile, err := kev.ReadCVEFile(opts.File)
		if err != nil {
			return nil, err
		}
		cves = append(cves, fromFile...)
	}

	if len(cves) == 0 {
		return nil, errors.New("no CVE supplied")
	}

	cli, err := kev.Fetch(ctx, opts.KEVOptions)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	if n, err := cli.Count(); err == nil && n == 0 {
		log.Warn().Msg("KEV catalog cache is empty, every CVE will be reported as not listed")
	}

	known, err := cli.LookupAll(cves)
	if err != nil {
		return nil, err
	}

	report.PrintKEVResults(out, cves, known)
	return known, nil
}
