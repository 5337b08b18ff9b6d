package cli

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
)

var askOneFunc = survey.AskOne

// askInput prompts for one line. A failed prompt counts as a blank answer.
func askInput(message string) string {
	answer := ""
	if err := askOneFunc(&survey.Input{Message: message}, &answer); err != nil {
		log.Debug().Err(err).Msg("prompt failed")
		return ""
	}

	return strings.TrimSpace(answer)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return strings.TrimSpace(args[i])
	}
	return ""
}
