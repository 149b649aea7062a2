package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsdeskctl",
		Short:         "Newsdesk operator CLI",
		Long:          "Operator tasks for a newsdesk deployment: key generation, admin bootstrap and post listing.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newVAPIDKeysCmd(),
		newHashPasswordCmd(),
		newEnsureAdminCmd(),
		newPostsCmd(),
	)
	return root
}
