package internal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kvesta/scandiff/config"
	"github.com/kvesta/scandiff/pkg/inspector"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

const formattedImages = "formatted_images.txt"

var ageHeader = []string{"Image", "Build Date", "Age (days)", "Version"}

type AgeOptions struct {
	// InputFile holds Quay manifest URLs, one per line.
	InputFile string
	OutputDir string

	Authfile     string
	AuthPrefixes []string

	// Engine defaults to a client built from the environment.
	Engine *inspector.DockerApi
	Out    io.Writer
	Now    func() time.Time
}

type AgeResult struct {
	Images     []*inspector.ImageInfo
	ImagesFile string
	ReportFile string
}

// DoImageAge resolves the Quay URLs to images, inspects each one and writes
// the age report.
func DoImageAge(ctx context.Context, opts AgeOptions) (*AgeResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	f, err := os.Open(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("open URL list: %w", err)
	}
	images, err := inspector.ReformatQuayURLs(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("read URL list: %w", err)
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, os.FileMode(0755)); err != nil {
			return nil, err
		}
	}

	res := &AgeResult{ImagesFile: filepath.Join(opts.OutputDir, formattedImages)}
	if err := writeLines(res.ImagesFile, images); err != nil {
		return nil, err
	}
	log.Info().Str("file", res.ImagesFile).Int("images", len(images)).Msg("reformatted image list saved")

	engine := opts.Engine
	if engine == nil {
		engine, err = inspector.NewDockerApi()
		if err != nil {
			return nil, err
		}
		defer engine.Close()
	}

	today := now()
	for _, image := range images {
		auth := ""
		if inspector.NeedsAuth(image, opts.AuthPrefixes) && opts.Authfile != "" {
			auth, err = inspector.LoadRegistryAuth(opts.Authfile, image)
			if err != nil {
				log.Warn().Err(err).Str("image", image).Msg("pulling without credentials")
			}
		}

		log.Debug().Str("image", image).Msg("inspecting image")
		res.Images = append(res.Images, engine.GetImageInfo(ctx, image, auth, today))
	}

	res.ReportFile = filepath.Join(opts.OutputDir, fmt.Sprintf("image-age-%s.csv", today.Format("02.01.2006")))
	if err := writeAgeReport(res.ReportFile, res.Images); err != nil {
		return res, err
	}

	printAges(out, res.Images)
	fmt.Fprintf(out, "\nOutput saved to: %s\n", config.Yellow(res.ReportFile))

	return res, nil
}

func writeLines(filename string, lines []string) error {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return os.WriteFile(filename, []byte(sb.String()), 0644)
}

func writeAgeReport(filename string, images []*inspector.ImageInfo) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(ageHeader); err != nil {
		return err
	}
	for _, img := range images {
		if err := w.Write([]string{img.Image, img.BuildDate, img.Age, img.Version}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func printAges(w io.Writer, images []*inspector.ImageInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(ageHeader)
	table.SetAutoWrapText(false)

	for _, img := range images {
		age := img.Age
		if age == "Error" {
			age = config.Red(age)
		}
		table.Append([]string{img.Image, img.BuildDate, age, img.Version})
	}

	table.Render()
}
