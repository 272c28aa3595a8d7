package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Version is the avdl release. It is overridden at link time with
// -ldflags "-X github.com/thomasrohde/avdl/internal/cmd.Version=...".
var Version = "0.1.0"

func versionDetails() map[string]string {
	return map[string]string{
		"version":   Version,
		"goVersion": runtime.Version(),
		"goOs":      runtime.GOOS,
		"goArch":    runtime.GOARCH,
	}
}

func getCmdVersion(c *rootCommand) *cobra.Command {
	var isJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !isJSON {
				_, err := fmt.Fprintf(c.gs.Stdout, "avdl v%s (%s, %s/%s)\n",
					Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
				return err
			}
			jsonDetails, err := json.Marshal(versionDetails())
			if err != nil {
				return errors.Wrap(err, "failed to produce JSON version details")
			}
			_, err = fmt.Fprintln(c.gs.Stdout, string(jsonDetails))
			return err
		},
	}
	cmd.Flags().BoolVar(&isJSON, "json", false, "if set, output version information will be in JSON format")
	return cmd
}
