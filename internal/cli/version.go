package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rshade/txbench/pkg/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the txbench version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("txbench %s (%s, %s/%s)\n", ver, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if v := version.Semver(); v != nil && v.Prerelease() != "" {
				cmd.Printf("pre-release build: %s\n", v.Prerelease())
			}
		},
	}
}
