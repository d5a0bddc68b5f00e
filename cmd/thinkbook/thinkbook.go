// Package thinkbookcmder
package thinkbookcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/thinkbooklabs/thinkbook/cmd/thinkbook/ask"
	configcmder "github.com/thinkbooklabs/thinkbook/cmd/thinkbook/config"
	initcmder "github.com/thinkbooklabs/thinkbook/cmd/thinkbook/init"
	servecmder "github.com/thinkbooklabs/thinkbook/cmd/thinkbook/serve"
	versioncmder "github.com/thinkbooklabs/thinkbook/cmd/version"
)

const thinkbookLongDesc string = `Thinkbook is a grounded research assistant for your own sources.

Ingest documents, web pages, and YouTube videos into a session, then ask
questions and get answers with citations back to the exact source chunks.

Run services using:
  thinkbook serve      Run the API and MCP server
  thinkbook ask        One-shot question against local source files
  thinkbook config     Manage persistent configuration`

const thinkbookShortDesc string = "Thinkbook - cited answers from your sources"

func NewThinkbookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thinkbook",
		Short: thinkbookShortDesc,
		Long:  thinkbookLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .thinkbook/ directory location")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
