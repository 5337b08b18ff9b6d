package main

import (
	"os"

	"github.com/kvesta/scandiff/cli"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}
