// Package askcmder provides the ask command for one-shot cited answers
// over local source files.
package askcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
	"github.com/thinkbooklabs/thinkbook/pkg/cliui"
	"github.com/thinkbooklabs/thinkbook/pkg/config"
	embeddingutils "github.com/thinkbooklabs/thinkbook/pkg/embeddings/utils"
	"github.com/thinkbooklabs/thinkbook/pkg/ingest"
	llmutils "github.com/thinkbooklabs/thinkbook/pkg/llm/utils"
	"github.com/thinkbooklabs/thinkbook/pkg/logger"
	"github.com/thinkbooklabs/thinkbook/pkg/rag"
	vectorutils "github.com/thinkbooklabs/thinkbook/pkg/vector/utils"
)

type askCommander struct {
	files    []string
	llmModel string
	topK     uint
	debug    bool

	v      *viper.Viper
	logger *zap.Logger
}

const askLongDesc string = `Ask a one-shot question against local source files.

Builds a throwaway index from the given files, retrieves the most relevant
chunks, and prints a cited answer. The index is discarded afterwards; use
"thinkbook serve" for persistent sessions.

Examples:
  thinkbook ask -f paper.pdf "What method does the paper propose?"
  thinkbook ask -f notes.txt -f appendix.pdf "Summarize the key findings"`

const askShortDesc string = "Ask a one-shot question against local files"

var askFlags = config.FlagSet{
	config.FlagLLMModel: {Name: "llm-model", Shorthand: "m", ViperKey: "llm.model", Description: "Generation model name"},
	config.FlagTopK:     {Name: "top-k", ViperKey: "retrieval.top_k", Description: "Number of nearest chunks to retrieve"},
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, askFlags, []string{config.FlagLLMModel, config.FlagTopK})
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&cmder.files, "file", "f", nil, "Source file to ingest (repeatable)")
	config.AddStringFlag(cmd, askFlags, config.FlagLLMModel, &cmder.llmModel)
	config.AddUintFlag(cmd, askFlags, config.FlagTopK, &cmder.topK)

	return cmd
}

func (c *askCommander) run(ctx context.Context, query string) error {
	if len(c.files) == 0 {
		return fmt.Errorf("at least one --file is required")
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("thinkbook_ask_%s.db", uuid.NewString()))
	defer os.Remove(dbPath)

	store, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: "sqlitevec",
		DBPath:       dbPath,
		Dimensions:   c.v.GetUint("embedding.dimensions"),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	defer store.Close()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.v.GetString("embedding.provider"),
		TargetURL:    c.v.GetString("embedding.target"),
		Model:        c.v.GetString("embedding.model"),
		APIKey:       c.v.GetString("embedding.api_key"),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	generator, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: c.v.GetString("llm.provider"),
		TargetURL:    c.v.GetString("llm.target"),
		Model:        c.v.GetString("llm.model"),
		APIKey:       c.v.GetString("llm.api_key"),
	})
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}
	defer generator.Close()

	ingestor, err := ingest.NewIngestor(ingest.Config{
		Embedder:     embedder,
		Store:        store,
		ChunkSize:    int(c.v.GetUint("chunking.size")),
		ChunkOverlap: int(c.v.GetUint("chunking.overlap")),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating ingestor: %w", err)
	}

	pipeline, err := rag.NewPipeline(rag.Config{
		Embedder:        embedder,
		Store:           store,
		Generator:       generator,
		TopK:            int(c.v.GetUint("retrieval.top_k")),
		MaxChunks:       int(c.v.GetUint("retrieval.max_chunks")),
		MaxContextChars: int(c.v.GetUint("retrieval.max_context_chars")),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	fmt.Println()
	for _, path := range c.files {
		name := filepath.Base(path)
		err := cliui.Step(os.Stdout, fmt.Sprintf("Indexing %s", name), func() error {
			_, err := ingestFile(ctx, ingestor, path, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
	}

	var result *rag.Result
	err = cliui.Step(os.Stdout, "Answering", func() error {
		var answerErr error
		result, answerErr = pipeline.Answer(ctx, query)
		return answerErr
	})
	if err != nil {
		return err
	}

	rendered, renderErr := cliui.RenderMarkdown(result.Answer)
	if renderErr != nil {
		rendered = result.Answer
	}
	fmt.Println()
	fmt.Print(rendered)

	if len(result.Citations) > 0 {
		fmt.Printf("\n  %s\n", cliui.KeyStyle.Render("Sources:"))
		for _, cit := range result.Citations {
			location := cit.SourceFile
			if cit.PageNumber > 0 {
				location = fmt.Sprintf("%s, p.%d", cit.SourceFile, cit.PageNumber)
			}
			fmt.Printf("  %s %s\n",
				cliui.ValueStyle.Render(cit.Reference),
				cliui.DimStyle.Render(location),
			)
		}
	}
	fmt.Println()

	return nil
}

// ingestFile routes a file to the right ingestion path by extension.
func ingestFile(ctx context.Context, ingestor *ingest.Ingestor, path, name string) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ingestor.IngestPDF(ctx, path, name)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return ingestor.IngestText(ctx, string(content), chunk.Source{
		File: name,
		Type: chunk.SourceDocument,
	})
}
