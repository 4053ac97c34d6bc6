package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

// videoIDPattern — формат идентификатора YouTube-видео.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

const maxTranscriptBytes = 2 << 20 // 2 MiB

// TranscriptFetcher загружает текст субтитров видео по его URL.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

var _ TranscriptFetcher = (*youtubeTranscriptFetcher)(nil)

type youtubeTranscriptFetcher struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewYouTubeTranscriptFetcher создает загрузчик субтитров через
// эндпоинт timedtext YouTube.
func NewYouTubeTranscriptFetcher(logger *zap.Logger) TranscriptFetcher {
	return &youtubeTranscriptFetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://www.youtube.com/api/timedtext",
		logger:     logger.Named("TranscriptFetcher"),
	}
}

// timedTextResponse — XML-ответ эндпоинта timedtext.
type timedTextResponse struct {
	Lines []string `xml:"text"`
}

// Fetch загружает английские субтитры видео и склеивает их в один текст.
func (f *youtubeTranscriptFetcher) Fetch(ctx context.Context, videoURL string) (string, error) {
	videoID, err := videoIDFromURL(videoURL)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s?lang=en&v=%s", f.baseURL, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build transcript request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("Transcript request failed", zap.String("videoID", videoID), zap.Error(err))
		return "", fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("Transcript endpoint returned non-OK status",
			zap.String("videoID", videoID), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("transcript endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read transcript response: %w", err)
	}

	var parsed timedTextResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse transcript XML: %w", err)
	}

	lines := make([]string, 0, len(parsed.Lines))
	for _, line := range parsed.Lines {
		// timedtext экранирует сущности дважды
		line = strings.TrimSpace(html.UnescapeString(line))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("video %s has no transcript: %w", videoID, models.ErrNotFound)
	}

	transcript := strings.Join(lines, " ")
	f.logger.Info("Transcript fetched",
		zap.String("videoID", videoID), zap.Int("length", len(transcript)))
	return transcript, nil
}

// videoIDFromURL извлекает идентификатор видео из поддерживаемых форм
// ссылок: watch?v=, youtu.be/, embed/, shorts/ и live/.
func videoIDFromURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid video URL %q: %w", raw, models.ErrInvalidInput)
	}

	var id string
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch host {
	case "youtu.be":
		id = strings.Trim(parsed.Path, "/")
	case "youtube.com", "m.youtube.com":
		switch {
		case parsed.Path == "/watch":
			id = parsed.Query().Get("v")
		case strings.HasPrefix(parsed.Path, "/embed/"),
			strings.HasPrefix(parsed.Path, "/shorts/"),
			strings.HasPrefix(parsed.Path, "/live/"):
			parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
			if len(parts) == 2 {
				id = parts[1]
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("unsupported video URL %q: %w", raw, models.ErrInvalidInput)
	}
	return id, nil
}
