package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/bucketblog/postid"
)

var idCmd = &cobra.Command{
	Use:   "id <path>",
	Short: "Print the post ID for a document path",
	Long: `Print the post ID a document gets, given its path without the .md
extension (e.g. "notes/hello-world").`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), postid.New(args[0]))
	},
}
