package inspector

import (
	"github.com/docker/docker/client"
	"github.com/rs/zerolog/log"
)

// NewDockerApi connects to the engine named by the environment, e.g.
// DOCKER_HOST pointing at a podman socket.
func NewDockerApi() (*DockerApi, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		log.Error().Err(err).Msg("init docker environment failed")
		return nil, err
	}

	return &DockerApi{DCli: cli}, nil
}

func (da *DockerApi) Close() error {
	return da.DCli.Close()
}
