package cli

import (
	"errors"

	"github.com/kvesta/scandiff/config"
	"github.com/kvesta/scandiff/internal"

	"github.com/spf13/cobra"
)

func imageAge() *cobra.Command {
	ageCmd := &cobra.Command{
		Use:   "age",
		Short: "Report the build age of Quay images",
		Long: `Examples:
  # Inspect the images behind a list of Quay manifest URLs
  $ scandiff age -f quay-urls.txt

  # Use a podman socket and a registry auth file
  $ DOCKER_HOST=unix:///run/user/1000/podman/podman.sock scandiff age -f quay-urls.txt --authfile auth.json`,
		Args: NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := urlFile
			if input == "" {
				input = askInput("Enter the path to your .txt file with Quay URLs:")
			}
			if input == "" {
				return errors.New("a file with Quay URLs is required")
			}

			output := conf.OutputDir
			if cmd.Flags().Changed("output") {
				output = outDir
			}
			auth := conf.Age.Authfile
			if authfile != "" {
				auth = authfile
			}

			_, err := internal.DoImageAge(config.Ctx, internal.AgeOptions{
				InputFile:    input,
				OutputDir:    output,
				Authfile:     auth,
				AuthPrefixes: conf.Age.AuthPrefixes,
				Out:          cmd.OutOrStdout(),
			})
			return err
		},
	}

	ageCmd.Flags().StringVarP(&urlFile, "file", "f", "", "text file with Quay manifest URLs")
	ageCmd.Flags().StringVarP(&outDir, "output", "o", "", "folder of the generated files")
	ageCmd.Flags().StringVar(&authfile, "authfile", "", "containers auth.json for private registries")

	return ageCmd
}
