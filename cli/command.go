package cli

import (
	"fmt"
	"os"

	"github.com/kvesta/scandiff/config"
	"github.com/kvesta/scandiff/pkg/kev"

	"github.com/spf13/cobra"
)

const versions = "scandiff v0.1.0"

var (
	cfgFile    string
	logLevel   string
	outDir     string
	jsonOut    bool
	withKEV    bool
	skipUpdate bool
	upgradeall bool
	cveFile    string
	urlFile    string
	authfile   string

	conf = config.Default()
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scandiff [OPTIONS]",
		Short: "Clair scan comparison",
		Long: `Scandiff compares two Clair vulnerability CSV reports and shows which
findings were remediated and which are new`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and quit",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versions)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path of the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(compare())
	rootCmd.AddCommand(kevCheck())
	rootCmd.AddCommand(imageAge())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func Execute() error {
	return newRootCmd().Execute()
}

// setup loads the config file and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	conf, err = config.Load(cfgFile)

	level := conf.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if lerr := config.InitLogger(level, os.Stderr); lerr != nil {
		return lerr
	}

	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

func kevOptions() kev.Options {
	return kev.Options{
		URL:   conf.KEV.URL,
		Store: conf.KEV.Store,
		TTL:   conf.KEVTTL(),
		Reset: upgradeall,
		Skip:  skipUpdate,
	}
}
