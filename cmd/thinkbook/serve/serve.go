// Package servecmder provides the serve command for running the thinkbook
// API and MCP server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/api"
	apimcp "github.com/thinkbooklabs/thinkbook/api/mcp"
	"github.com/thinkbooklabs/thinkbook/pkg/config"
	"github.com/thinkbooklabs/thinkbook/pkg/dotdir"
	embeddingutils "github.com/thinkbooklabs/thinkbook/pkg/embeddings/utils"
	"github.com/thinkbooklabs/thinkbook/pkg/eventstream"
	eventkafka "github.com/thinkbooklabs/thinkbook/pkg/eventstream/kafka"
	eventnop "github.com/thinkbooklabs/thinkbook/pkg/eventstream/nop"
	"github.com/thinkbooklabs/thinkbook/pkg/ingest"
	llmutils "github.com/thinkbooklabs/thinkbook/pkg/llm/utils"
	"github.com/thinkbooklabs/thinkbook/pkg/logger"
	"github.com/thinkbooklabs/thinkbook/pkg/memory"
	memorylocal "github.com/thinkbooklabs/thinkbook/pkg/memory/local"
	"github.com/thinkbooklabs/thinkbook/pkg/podcast"
	"github.com/thinkbooklabs/thinkbook/pkg/rag"
	"github.com/thinkbooklabs/thinkbook/pkg/scrape"
	"github.com/thinkbooklabs/thinkbook/pkg/scrape/firecrawl"
	"github.com/thinkbooklabs/thinkbook/pkg/session"
	"github.com/thinkbooklabs/thinkbook/pkg/transcribe"
	"github.com/thinkbooklabs/thinkbook/pkg/transcribe/assemblyai"
	"github.com/thinkbooklabs/thinkbook/pkg/transcribe/youtube"
	ttsopenai "github.com/thinkbooklabs/thinkbook/pkg/tts/openai"
	vectorutils "github.com/thinkbooklabs/thinkbook/pkg/vector/utils"
)

type ServeCommander struct {
	listen string
	noMCP  bool
	debug  bool

	v      *viper.Viper
	logger *zap.Logger
}

const serveLongDesc string = `Run the thinkbook API server.

Serves the session REST API and, unless disabled, the MCP endpoint at /mcp
so agents can query sessions over the Model Context Protocol.

Provider credentials are read from the environment:
  THINKBOOK_EMBEDDING_API_KEY       Embedding provider key (openai)
  THINKBOOK_LLM_API_KEY             Generation provider key (openai)
  THINKBOOK_SCRAPER_API_KEY         Firecrawl key, enables web ingestion
  THINKBOOK_TRANSCRIPTION_API_KEY   AssemblyAI key, enables YouTube ingestion
  THINKBOOK_TTS_API_KEY             Speech key, enables podcast rendering

Examples:
  thinkbook serve
  thinkbook serve --listen :9090
  THINKBOOK_LLM_PROVIDER=openai thinkbook serve`

const serveShortDesc string = "Run the thinkbook API server"

var serveFlags = config.FlagSet{
	config.FlagAPIListen: {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for API server to listen on"},
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, []string{config.FlagAPIListen})
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(configDir)
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *ServeCommander) run(configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	publisher, err := c.createPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	factory, err := c.createSessionFactory(configDir)
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(factory, c.logger)
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}
	defer func() { _ = sessions.Close(context.Background()) }()

	var mcpServer *apimcp.Server
	if !c.noMCP {
		mcpServer, err = apimcp.NewServer(apimcp.Config{
			Sessions: sessions,
			Logger:   c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
	}

	apiConfig := api.Config{
		ListenAddr: c.v.GetString("api.listen"),
	}
	apiServer := api.NewServer(apiConfig, sessions, publisher, mcpServer, c.logger)

	c.logger.Info("starting api server",
		zap.String("api_addr", apiConfig.ListenAddr),
		zap.Bool("mcp_enabled", mcpServer != nil),
		zap.String("vector_store", c.v.GetString("vector_store.provider")),
		zap.String("embedding_provider", c.v.GetString("embedding.provider")),
		zap.String("llm_provider", c.v.GetString("llm.provider")),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

// createPublisher builds the event publisher named by events.provider.
func (c *ServeCommander) createPublisher() (eventstream.Publisher, error) {
	switch provider := c.v.GetString("events.provider"); provider {
	case "kafka":
		return eventkafka.NewPublisher(eventkafka.Config{
			Brokers: c.v.GetStringSlice("events.brokers"),
			Topic:   c.v.GetString("events.topic"),
		}, c.logger)
	case "nop", "":
		return eventnop.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", provider)
	}
}

// createSessionFactory builds the factory the session manager uses to
// provision per-session collaborators. Each session gets its own vector
// index; optional collaborators are wired only when their provider has
// credentials configured.
func (c *ServeCommander) createSessionFactory(configDir string) (session.Factory, error) {
	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}

	sessionsDir := filepath.Join(target, "sessions")
	if err := os.MkdirAll(sessionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sessions dir: %w", err)
	}

	v := c.v
	log := c.logger

	return func(ctx context.Context, id string) (*session.Session, error) {
		store, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
			ProviderType: v.GetString("vector_store.provider"),
			TargetURL:    v.GetString("vector_store.target"),
			DBPath:       filepath.Join(sessionsDir, fmt.Sprintf("session_%s.db", id)),
			Collection:   fmt.Sprintf("%s_%s", v.GetString("vector_store.collection"), id),
			Dimensions:   v.GetUint("embedding.dimensions"),
			Logger:       log,
		})
		if err != nil {
			return nil, fmt.Errorf("creating vector store: %w", err)
		}

		embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: v.GetString("embedding.provider"),
			TargetURL:    v.GetString("embedding.target"),
			Model:        v.GetString("embedding.model"),
			APIKey:       v.GetString("embedding.api_key"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}

		generator, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
			ProviderType: v.GetString("llm.provider"),
			TargetURL:    v.GetString("llm.target"),
			Model:        v.GetString("llm.model"),
			APIKey:       v.GetString("llm.api_key"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating generator: %w", err)
		}

		ingestor, err := ingest.NewIngestor(ingest.Config{
			Embedder:     embedder,
			Store:        store,
			ChunkSize:    int(v.GetUint("chunking.size")),
			ChunkOverlap: int(v.GetUint("chunking.overlap")),
		}, log)
		if err != nil {
			return nil, fmt.Errorf("creating ingestor: %w", err)
		}

		pipeline, err := rag.NewPipeline(rag.Config{
			Embedder:        embedder,
			Store:           store,
			Generator:       generator,
			TopK:            int(v.GetUint("retrieval.top_k")),
			MaxChunks:       int(v.GetUint("retrieval.max_chunks")),
			MaxContextChars: int(v.GetUint("retrieval.max_context_chars")),
		}, log)
		if err != nil {
			return nil, fmt.Errorf("creating pipeline: %w", err)
		}

		scraper, err := createScraper(v, log)
		if err != nil {
			return nil, err
		}

		transcriber, downloader, err := createTranscriber(v, log)
		if err != nil {
			return nil, err
		}

		var mem memory.Driver
		if v.GetString("memory.provider") == "local" {
			mem = memorylocal.NewDriver(memorylocal.Config{
				Enabled: v.GetBool("memory.enabled"),
			})
		}

		podcastGen, err := podcast.NewGenerator(generator, log)
		if err != nil {
			return nil, fmt.Errorf("creating podcast generator: %w", err)
		}

		renderer, err := createRenderer(v, log)
		if err != nil {
			return nil, err
		}

		return &session.Session{
			Store:       store,
			Embedder:    embedder,
			Generator:   generator,
			Ingestor:    ingestor,
			Pipeline:    pipeline,
			Scraper:     scraper,
			Transcriber: transcriber,
			Downloader:  downloader,
			Memory:      mem,
			Podcast:     podcastGen,
			Renderer:    renderer,
		}, nil
	}, nil
}

// createScraper returns nil when no scraper key is configured; web
// ingestion is then reported as unavailable by the API.
func createScraper(v *viper.Viper, log *zap.Logger) (scrape.Scraper, error) {
	apiKey := v.GetString("scraper.api_key")
	if apiKey == "" {
		return nil, nil
	}

	switch provider := v.GetString("scraper.provider"); provider {
	case "firecrawl":
		return firecrawl.NewScraper(firecrawl.Config{APIKey: apiKey}, log)
	default:
		return nil, fmt.Errorf("unsupported scraper provider: %s", provider)
	}
}

// createTranscriber returns nils when no transcription key is configured.
func createTranscriber(v *viper.Viper, log *zap.Logger) (transcribe.Transcriber, *youtube.Downloader, error) {
	apiKey := v.GetString("transcription.api_key")
	if apiKey == "" {
		return nil, nil, nil
	}

	switch provider := v.GetString("transcription.provider"); provider {
	case "assemblyai":
		transcriber, err := assemblyai.NewTranscriber(assemblyai.Config{APIKey: apiKey}, log)
		if err != nil {
			return nil, nil, err
		}

		downloader, err := youtube.NewDownloader(youtube.Config{}, log)
		if err != nil {
			return nil, nil, err
		}

		return transcriber, downloader, nil
	default:
		return nil, nil, fmt.Errorf("unsupported transcription provider: %s", provider)
	}
}

// createRenderer returns nil when no TTS key is configured; podcast script
// generation still works, only audio rendering is unavailable.
func createRenderer(v *viper.Viper, log *zap.Logger) (*podcast.Renderer, error) {
	apiKey := v.GetString("tts.api_key")
	if apiKey == "" {
		return nil, nil
	}

	switch provider := v.GetString("tts.provider"); provider {
	case "openai":
		synth, err := ttsopenai.NewSynthesizer(ttsopenai.Config{
			APIKey: apiKey,
			Model:  v.GetString("tts.model"),
		})
		if err != nil {
			return nil, err
		}
		return podcast.NewRenderer(synth, nil, log)
	default:
		return nil, fmt.Errorf("unsupported tts provider: %s", provider)
	}
}
