package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

const extractionSystemPrompt = `You extract structured metadata from sermon transcripts and church bulletin text.
Respond with a single JSON object and nothing else, using the schema:
{"title": string, "speaker": string, "date": "YYYY-MM-DD" or "", "scripture_references": [string], "summary": string}
Leave a field empty when the text does not mention it. Do not invent data.`

// Client предоставляет интерфейс для извлечения данных о проповедях через LLM.
type Client struct {
	client     *openai.Client
	modelName  string
	timeout    time.Duration
	maxRetries int
}

// Config содержит конфигурацию клиента.
type Config struct {
	APIKey     string
	ModelName  string
	Timeout    int // секунды
	MaxRetries int
}

// New создает новый экземпляр клиента.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API ключ не указан")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &Client{
		client:     openai.NewClient(cfg.APIKey),
		modelName:  cfg.ModelName,
		timeout:    time.Duration(cfg.Timeout) * time.Second,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// ExtractSermon извлекает метаданные проповеди из произвольного текста.
func (c *Client) ExtractSermon(ctx context.Context, text string) (*SermonInfo, error) {
	if text == "" {
		return nil, errors.New("пустой текст для извлечения")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	attempts := 0
	for attempts < c.maxRetries {
		attempts++

		req := openai.ChatCompletionRequest{
			Model: c.modelName,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: extractionSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				},
			},
			Temperature: 0.1,
			MaxTokens:   800,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			log.Error().Err(err).Int("attempt", attempts).Msg("Ошибка при вызове CreateChatCompletion")
			if attempts >= c.maxRetries {
				return nil, fmt.Errorf("ошибка при извлечении данных о проповеди: %w", err)
			}
			continue
		}
		if len(resp.Choices) == 0 {
			if attempts >= c.maxRetries {
				return nil, errors.New("пустой ответ от API: не получены варианты")
			}
			continue
		}

		info, err := ParseSermonResponse(resp.Choices[0].Message.Content)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempts).Msg("Не удалось распарсить ответ модели")
			if attempts >= c.maxRetries {
				return nil, err
			}
			continue
		}
		return info, nil
	}

	return nil, errors.New("не удалось получить ответ от API после нескольких попыток")
}
