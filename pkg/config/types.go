package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent thinkbook configuration stored as
// config.toml in the .thinkbook/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version       int                 `toml:"version"`
	API           APIConfig           `toml:"api"`
	VectorStore   VectorStoreConfig   `toml:"vector_store"`
	Embedding     EmbeddingConfig     `toml:"embedding"`
	LLM           LLMConfig           `toml:"llm"`
	Chunking      ChunkingConfig      `toml:"chunking"`
	Retrieval     RetrievalConfig     `toml:"retrieval"`
	Scraper       ScraperConfig       `toml:"scraper"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Memory        MemoryConfig        `toml:"memory"`
	TTS           TTSConfig           `toml:"tts"`
	Events        EventsConfig        `toml:"events"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// LLMConfig holds language model provider settings.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// ChunkingConfig holds text splitting settings.
type ChunkingConfig struct {
	Size    uint `toml:"size,omitempty"`
	Overlap uint `toml:"overlap,omitempty"`
}

// RetrievalConfig holds query-time retrieval settings.
type RetrievalConfig struct {
	TopK            uint `toml:"top_k,omitempty"`
	MaxChunks       uint `toml:"max_chunks,omitempty"`
	MaxContextChars uint `toml:"max_context_chars,omitempty"`
}

// ScraperConfig holds web scraping provider settings. API keys come from
// the environment (THINKBOOK_SCRAPER_API_KEY), never the config file.
type ScraperConfig struct {
	Provider string `toml:"provider,omitempty"`
}

// TranscriptionConfig holds audio transcription provider settings.
type TranscriptionConfig struct {
	Provider string `toml:"provider,omitempty"`
}

// MemoryConfig holds conversation memory settings.
type MemoryConfig struct {
	Provider string `toml:"provider,omitempty"`
	Enabled  bool   `toml:"enabled,omitempty"`
}

// TTSConfig holds speech synthesis settings.
type TTSConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func uintKey(get func(c *Config) uint, set func(c *Config, n uint), name string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if get(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(get(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			set(c, uint(n))
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"vector_store.collection": {
		get: func(c *Config) string { return c.VectorStore.Collection },
		set: func(c *Config, v string) error { c.VectorStore.Collection = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": uintKey(
		func(c *Config) uint { return c.Embedding.Dimensions },
		func(c *Config, n uint) { c.Embedding.Dimensions = n },
		"embedding.dimensions",
	),
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.target": {
		get: func(c *Config) string { return c.LLM.Target },
		set: func(c *Config, v string) error { c.LLM.Target = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"chunking.size": uintKey(
		func(c *Config) uint { return c.Chunking.Size },
		func(c *Config, n uint) { c.Chunking.Size = n },
		"chunking.size",
	),
	"chunking.overlap": uintKey(
		func(c *Config) uint { return c.Chunking.Overlap },
		func(c *Config, n uint) { c.Chunking.Overlap = n },
		"chunking.overlap",
	),
	"retrieval.top_k": uintKey(
		func(c *Config) uint { return c.Retrieval.TopK },
		func(c *Config, n uint) { c.Retrieval.TopK = n },
		"retrieval.top_k",
	),
	"retrieval.max_chunks": uintKey(
		func(c *Config) uint { return c.Retrieval.MaxChunks },
		func(c *Config, n uint) { c.Retrieval.MaxChunks = n },
		"retrieval.max_chunks",
	),
	"retrieval.max_context_chars": uintKey(
		func(c *Config) uint { return c.Retrieval.MaxContextChars },
		func(c *Config, n uint) { c.Retrieval.MaxContextChars = n },
		"retrieval.max_context_chars",
	),
	"scraper.provider": {
		get: func(c *Config) string { return c.Scraper.Provider },
		set: func(c *Config, v string) error { c.Scraper.Provider = v; return nil },
	},
	"transcription.provider": {
		get: func(c *Config) string { return c.Transcription.Provider },
		set: func(c *Config, v string) error { c.Transcription.Provider = v; return nil },
	},
	"memory.provider": {
		get: func(c *Config) string { return c.Memory.Provider },
		set: func(c *Config, v string) error { c.Memory.Provider = v; return nil },
	},
	"memory.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Memory.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.enabled: %w", err)
			}
			c.Memory.Enabled = b
			return nil
		},
	},
	"tts.provider": {
		get: func(c *Config) string { return c.TTS.Provider },
		set: func(c *Config, v string) error { c.TTS.Provider = v; return nil },
	},
	"tts.model": {
		get: func(c *Config) string { return c.TTS.Model },
		set: func(c *Config, v string) error { c.TTS.Model = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}
