package cli

import (
	"github.com/kvesta/scandiff/config"
	"github.com/kvesta/scandiff/internal"

	"github.com/spf13/cobra"
)

func kevCheck() *cobra.Command {
	kevCmd := &cobra.Command{
		Use:   "kev [CVE...]",
		Short: "Check CVEs against CISA's KEV catalog",
		Long: `Examples:
  # Check a single CVE
  $ scandiff kev CVE-2021-34527

  # Check a list of CVEs, one per line
  $ scandiff kev -f cves.txt

  # Drop the cached catalog and download it again
  $ scandiff kev -a CVE-2021-34527`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cves := []string{}
			for i := range args {
				if cve := argAt(args, i); cve != "" {
					cves = append(cves, cve)
				}
			}

			if len(cves) == 0 && cveFile == "" {
				if cve := askInput("Enter the CVE ID (e.g., CVE-2021-34527):"); cve != "" {
					cves = append(cves, cve)
				}
			}

			_, err := internal.DoKEVCheck(config.Ctx, internal.KEVCheckOptions{
				CVEs:       cves,
				File:       cveFile,
				KEVOptions: kevOptions(),
				Out:        cmd.OutOrStdout(),
			})
			return err
		},
	}

	kevCmd.Flags().StringVarP(&cveFile, "file", "f", "", "file with one CVE per line")
	kevCmd.Flags().BoolVarP(&upgradeall, "refresh", "a", false, "reset the KEV catalog cache")
	kevCmd.Flags().BoolVar(&skipUpdate, "skip", false, "skip the KEV catalog updating")

	return kevCmd
}
