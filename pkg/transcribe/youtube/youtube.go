// Package youtube downloads video audio for transcription.
//
// Downloading delegates to the yt-dlp binary, which handles format selection
// and extraction. The audio file lands in a temp directory keyed by video ID
// so repeated requests for the same video reuse the download.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidURL is returned when a video ID cannot be extracted from the URL.
var ErrInvalidURL = errors.New("invalid youtube url")

// ErrDownload is returned when audio extraction fails.
var ErrDownload = errors.New("youtube download failed")

// Downloader fetches video audio via yt-dlp.
type Downloader struct {
	binary  string
	tempDir string
	logger  *zap.Logger
}

// Config holds configuration for the downloader.
type Config struct {
	// Binary is the yt-dlp executable. Defaults to "yt-dlp" on PATH.
	Binary string

	// TempDir is where audio files are cached. Defaults to the system
	// temp directory.
	TempDir string
}

// NewDownloader creates a yt-dlp backed audio downloader.
func NewDownloader(cfg Config, logger *zap.Logger) (*Downloader, error) {
	binary := cfg.Binary
	if binary == "" {
		binary = "yt-dlp"
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "thinkbook_youtube")
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	return &Downloader{
		binary:  binary,
		tempDir: tempDir,
		logger:  logger,
	}, nil
}

// ExtractVideoID pulls the video ID out of a watch or short-form URL.
func ExtractVideoID(url string) (string, error) {
	var id string
	switch {
	case strings.Contains(url, "v="):
		id = strings.SplitN(strings.SplitN(url, "v=", 2)[1], "&", 2)[0]
	case strings.Contains(url, "youtu.be/"):
		id = strings.SplitN(strings.SplitN(url, "youtu.be/", 2)[1], "?", 2)[0]
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	return id, nil
}

// Download fetches the audio track of the video and returns the local path.
// Already-downloaded videos are served from the cache.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return "", err
	}

	audioPath := filepath.Join(d.tempDir, videoID+".m4a")
	if _, err := os.Stat(audioPath); err == nil {
		d.logger.Debug("audio already downloaded", zap.String("path", audioPath))
		return audioPath, nil
	}

	cmd := exec.CommandContext(ctx, d.binary,
		"--format", "m4a/bestaudio/best",
		"--extract-audio",
		"--audio-format", "m4a",
		"--output", filepath.Join(d.tempDir, "%(id)s.%(ext)s"),
		"--quiet",
		"--no-warnings",
		url,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrDownload, err, strings.TrimSpace(string(out)))
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("%w: expected audio file not found: %s", ErrDownload, audioPath)
	}

	d.logger.Info("downloaded youtube audio",
		zap.String("video_id", videoID),
		zap.String("path", audioPath),
	)

	return audioPath, nil
}
