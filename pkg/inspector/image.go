package inspector

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/rs/zerolog/log"
)

// PullImage pulls image and waits for the pull to finish.
func (da *DockerApi) PullImage(ctx context.Context, image, registryAuth string) error {
	rc, err := da.DCli.ImagePull(ctx, image, types.ImagePullOptions{RegistryAuth: registryAuth})
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(io.Discard, rc)
	return err
}

// GetImageInfo pulls and inspects image. Failures are reported in the
// returned row rather than as an error.
func (da *DockerApi) GetImageInfo(ctx context.Context, image, registryAuth string, now time.Time) *ImageInfo {
	image = SanitizeImageName(image)

	if err := da.PullImage(ctx, image, registryAuth); err != nil {
		log.Error().Err(err).Str("image", image).Msg("failed to pull image")
		return &ImageInfo{Image: image, BuildDate: "Pull Error", Age: "Error", Version: "Error"}
	}

	inspect, _, err := da.DCli.ImageInspectWithRaw(ctx, image)
	if err != nil {
		log.Error().Err(err).Str("image", image).Msg("failed to inspect image")
		return &ImageInfo{Image: image, BuildDate: "Inspect Error", Age: "Error", Version: "Error"}
	}

	labels := map[string]string{}
	if inspect.Config != nil && inspect.Config.Labels != nil {
		labels = inspect.Config.Labels
	}

	info := &ImageInfo{
		Image:     image,
		BuildDate: notAvailable,
		Age:       notAvailable,
		Version:   notAvailable,
	}
	if v, ok := labels[labelVersion]; ok && v != "" {
		info.Version = v
	}

	if label := labels[labelBuildDate]; label != "" {
		built, days, err := BuildAge(label, now)
		if err != nil {
			info.BuildDate = "Invalid format"
		} else {
			info.BuildDate = built.Format(time.RFC3339)
			info.Age = strconv.Itoa(days)
		}
	}

	return info
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// BuildAge parses a build-date label and returns the whole days elapsed
// until now. Timestamps without a zone are taken as UTC.
func BuildAge(label string, now time.Time) (time.Time, int, error) {
	label = strings.TrimSpace(label)

	built, err := time.Parse(time.RFC3339Nano, label)
	if err != nil {
		for _, layout := range naiveLayouts {
			if built, err = time.ParseInLocation(layout, label, time.UTC); err == nil {
				break
			}
		}
	}
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid build date %q", label)
	}

	days := int(math.Floor(now.Sub(built).Hours() / 24))
	return built, days, nil
}
