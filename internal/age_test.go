package internal

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/kvesta/scandiff/pkg/inspector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	labels map[string]map[string]string
	auths  map[string]string
}

func (f *fakeEngine) ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error) {
	f.auths[ref] = options.RegistryAuth
	if _, ok := f.labels[ref]; !ok {
		return nil, errors.New("manifest unknown")
	}
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeEngine) ImageInspectWithRaw(ctx context.Context, image string) (types.ImageInspect, []byte, error) {
	return types.ImageInspect{Config: &container.Config{Labels: f.labels[image]}}, nil, nil
}

func (f *fakeEngine) Close() error { return nil }

func TestDoImageAge(t *testing.T) {
	dir := t.TempDir()
	urls := writeFile(t, dir, "urls.txt",
		"https://quay.io/repository/openshift-release-dev/ocp-art/manifest/sha256:aa11\n"+
			"https://quay.io/repository/team/app/manifest/sha256:bb22\n"+
			"garbage\n")
	auth := base64.StdEncoding.EncodeToString([]byte("robot:token"))
	authfile := writeFile(t, dir, "auth.json", `{"auths": {"quay.io": {"auth": "`+auth+`"}}}`)

	engine := &fakeEngine{
		labels: map[string]map[string]string{
			"quay.io/openshift-release-dev/ocp-art@sha256:aa11": {
				"build-date": "2024-10-05T09:30:00Z", "version": "v4.16.0",
			},
		},
		auths: map[string]string{},
	}

	outDir := filepath.Join(dir, "out")
	var buf bytes.Buffer
	res, err := DoImageAge(context.Background(), AgeOptions{
		InputFile:    urls,
		OutputDir:    outDir,
		Authfile:     authfile,
		AuthPrefixes: []string{"quay.io/openshift-release-dev"},
		Engine:       &inspector.DockerApi{DCli: engine},
		Out:          &buf,
		Now:          fixedNow,
	})
	require.NoError(t, err)
	require.Len(t, res.Images, 2)

	formatted, err := os.ReadFile(res.ImagesFile)
	require.NoError(t, err)
	assert.Equal(t, "quay.io/openshift-release-dev/ocp-art@sha256:aa11\nquay.io/team/app@sha256:bb22\n", string(formatted))

	assert.NotEmpty(t, engine.auths["quay.io/openshift-release-dev/ocp-art@sha256:aa11"])
	assert.Empty(t, engine.auths["quay.io/team/app@sha256:bb22"])

	assert.Equal(t, filepath.Join(outDir, "image-age-15.10.2024.csv"), res.ReportFile)
	data, err := os.ReadFile(res.ReportFile)
	require.NoError(t, err)
	assert.Equal(t, "Image,Build Date,Age (days),Version\n"+
		"quay.io/openshift-release-dev/ocp-art@sha256:aa11,2024-10-05T09:30:00Z,10,v4.16.0\n"+
		"quay.io/team/app@sha256:bb22,Pull Error,Error,Error\n", string(data))

	assert.Contains(t, buf.String(), "image-age-15.10.2024.csv")
}

func TestDoImageAgeMissingInput(t *testing.T) {
	_, err := DoImageAge(context.Background(), AgeOptions{InputFile: filepath.Join(t.TempDir(), "nope.txt")})
	assert.Error(t, err)
}
