package cli

import (
	"errors"
	"fmt"

	"github.com/kvesta/scandiff/config"
	"github.com/kvesta/scandiff/internal"

	"github.com/spf13/cobra"
)

var errPathsRequired = errors.New("both file paths are required to perform the comparison")

func compare() *cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare [SCAN_A] [SCAN_B]",
		Short: "Compare two Clair CSV reports",
		Long: `Examples:
  # Compare an older scan with a newer one
  $ scandiff compare clair-june.csv clair-july.csv

  # Save the record in a folder and as JSON as well
  $ scandiff compare -o results --json clair-june.csv clair-july.csv

  # Flag differing CVEs listed in CISA's KEV catalog
  $ scandiff compare --kev clair-june.csv clair-july.csv`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathA, pathB := argAt(args, 0), argAt(args, 1)
			if pathA == "" {
				pathA = askInput("Enter the full path to the first Clair CSV report:")
			}
			if pathB == "" {
				pathB = askInput("Enter the full path to the second Clair CSV report:")
			}

			if pathA == "" || pathB == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), config.Red("Both file paths are required to perform the comparison."))
				return errPathsRequired
			}

			output := conf.OutputDir
			if cmd.Flags().Changed("output") {
				output = outDir
			}

			_, err := internal.DoCompare(config.Ctx, internal.CompareOptions{
				PathA:      pathA,
				PathB:      pathB,
				OutputDir:  output,
				JSON:       jsonOut || conf.JSON,
				KEV:        withKEV,
				KEVOptions: kevOptions(),
				Out:        cmd.OutOrStdout(),
			})
			return err
		},
	}

	compareCmd.Flags().StringVarP(&outDir, "output", "o", "", "folder of the comparison record")
	compareCmd.Flags().BoolVar(&jsonOut, "json", false, "also write the record as JSON")
	compareCmd.Flags().BoolVar(&withKEV, "kev", false, "check differing CVEs against the KEV catalog")
	compareCmd.Flags().BoolVar(&skipUpdate, "skip", false, "skip the KEV catalog updating")

	return compareCmd
}
