package config

const (
	defaultAPIListen = ":8080"

	defaultVectorProvider   = "sqlitevec"
	defaultVectorCollection = "thinkbook"

	defaultOllamaTarget = "http://localhost:11434"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultLLMProvider = "ollama"
	defaultLLMModel    = "llama3.2"

	defaultChunkSize    = 1000
	defaultChunkOverlap = 200

	defaultRetrievalTopK      = 10
	defaultRetrievalMaxChunks = 8
	defaultMaxContextChars    = 4000

	defaultScraperProvider       = "firecrawl"
	defaultTranscriptionProvider = "assemblyai"

	defaultMemoryProvider = "local"

	defaultTTSProvider = "openai"
	defaultTTSModel    = "tts-1"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "thinkbook.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultOllamaTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Target:   defaultOllamaTarget,
			Model:    defaultLLMModel,
		},
		Chunking: ChunkingConfig{
			Size:    defaultChunkSize,
			Overlap: defaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK:            defaultRetrievalTopK,
			MaxChunks:       defaultRetrievalMaxChunks,
			MaxContextChars: defaultMaxContextChars,
		},
		Scraper: ScraperConfig{
			Provider: defaultScraperProvider,
		},
		Transcription: TranscriptionConfig{
			Provider: defaultTranscriptionProvider,
		},
		Memory: MemoryConfig{
			Provider: defaultMemoryProvider,
			Enabled:  true,
		},
		TTS: TTSConfig{
			Provider: defaultTTSProvider,
			Model:    defaultTTSModel,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
