// Package configcmder provides the config command for managing persistent
// thinkbook configuration stored in the .thinkbook/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent thinkbook configuration.

Configuration is stored as config.toml in the .thinkbook/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values, and THINKBOOK_ environment variables take precedence
over both the file and defaults.

Keys use dotted notation matching the TOML section structure:
  api.listen,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model,
  chunking.size, chunking.overlap,
  retrieval.top_k, retrieval.max_chunks, retrieval.max_context_chars,
  scraper.provider, transcription.provider,
  memory.provider, memory.enabled,
  tts.provider, tts.model,
  events.provider, events.topic

Use subcommands to get, set, or list configuration values:
  thinkbook config set <key> <value>    Set a configuration value
  thinkbook config get <key>            Get a configuration value
  thinkbook config list                 List all configuration values

Examples:
  thinkbook config set llm.provider openai
  thinkbook config set embedding.model nomic-embed-text
  thinkbook config get retrieval.top_k
  thinkbook config list`

const configShortDesc string = "Manage persistent thinkbook configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
