package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const versionTagline = "one paragraph at a time"

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Tagline   string `json:"tagline"`
	GoVersion string `json:"go_version"`
	Revision  string `json:"revision,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show vibewrite build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := versionPayload{
			Tool:      "vibewrite",
			Version:   version,
			Tagline:   versionTagline,
			GoVersion: runtime.Version(),
			Revision:  buildRevision(),
		}
		out := cmd.OutOrStdout()
		switch versionFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "pretty", "":
			useColor, err := colorMode(cmd, os.Stdout)
			if err != nil {
				return err
			}
			name := color.New(color.FgYellow, color.Bold)
			if !useColor {
				name.DisableColor()
			}
			fmt.Fprintf(out, "%s %s (%s)\n", name.Sprint(payload.Tool), payload.Version, payload.GoVersion)
			if payload.Revision != "" {
				fmt.Fprintf(out, "revision %s\n", payload.Revision)
			}
			fmt.Fprintln(out, payload.Tagline)
			return nil
		default:
			return fmt.Errorf("unknown format %q", versionFormat)
		}
	},
}

func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}
