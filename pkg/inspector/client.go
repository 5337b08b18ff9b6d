package inspector

import (
	"context"
	"io"

	"github.com/docker/docker/api/types"
)

// imageAPI is the part of the engine API used here. *client.Client satisfies it.
type imageAPI interface {
	ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error)
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	Close() error
}

type DockerApi struct {
	DCli imageAPI
}

// ImageInfo is one row of the image age report.
type ImageInfo struct {
	Image     string
	BuildDate string
	Age       string
	Version   string
}

const (
	labelBuildDate = "build-date"
	labelVersion   = "version"

	notAvailable = "N/A"
)
