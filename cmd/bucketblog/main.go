package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "bucketblog",
	Short: "Serve a blog from Markdown files in object storage",
	Long: `bucketblog serves the Markdown documents of an S3-compatible bucket (or a
local directory) as a blog. Documents whose front-matter tags include "blog"
are published; the rest are ignored.

Settings come from flags or the environment, e.g. S3_ENDPOINT, S3_BUCKET,
CACHE_TTL or CONTENT_DIR.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bucketblog version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bucketblog %s\n", version)
	},
}

func init() {
	bindFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, syncCmd, idCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
