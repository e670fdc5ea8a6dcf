package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bundlecheck/internal/checkcmd"
)

func NewRootCmd() *cobra.Command {
	globals := &checkcmd.Globals{}

	cmd := &cobra.Command{
		Use:   "bundlecheck",
		Short: "Find out which titles of a book bundle you already own",
		Long: `Bundlecheck compares the titles of a storefront book bundle against the
catalogs of bundles you already bought.

Each title is reported as owned, probably owned, maybe owned or not owned,
together with the owned bundles that matched.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	globals.BindFlags(cmd)

	cmd.AddCommand(checkcmd.NewCheckCmd(globals))
	cmd.AddCommand(checkcmd.NewExpandCmd(globals))
	cmd.AddCommand(checkcmd.NewNormalizeCmd(globals))
	cmd.AddCommand(checkcmd.NewParseCmd(globals))
	cmd.AddCommand(checkcmd.NewCatalogCmd(globals))

	return cmd
}
