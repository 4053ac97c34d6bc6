package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/pkg/ai"
)

// SermonService извлекает метаданные проповедей из текста через LLM.
// Функция опциональна: без API-ключа сервис отвечает ErrForbidden.
type SermonService interface {
	Enabled() bool
	Extract(ctx context.Context, text string) (*ai.SermonInfo, error)
	// ExtractFromVideo загружает субтитры YouTube-видео и извлекает из них данные.
	ExtractFromVideo(ctx context.Context, videoURL string) (*ai.SermonInfo, error)
}

var _ SermonService = (*sermonServiceImpl)(nil)

type sermonServiceImpl struct {
	client      *ai.Client // nil = выключено
	transcripts TranscriptFetcher
	logger      *zap.Logger
}

// NewSermonService создает сервис извлечения. client может быть nil.
func NewSermonService(client *ai.Client, transcripts TranscriptFetcher, logger *zap.Logger) SermonService {
	return &sermonServiceImpl{
		client:      client,
		transcripts: transcripts,
		logger:      logger.Named("SermonService"),
	}
}

// Enabled сообщает, сконфигурирован ли LLM-клиент.
func (s *sermonServiceImpl) Enabled() bool { return s.client != nil }

// Extract возвращает структурированные данные проповеди.
func (s *sermonServiceImpl) Extract(ctx context.Context, text string) (*ai.SermonInfo, error) {
	if s.client == nil {
		return nil, models.ErrForbidden
	}

	info, err := s.client.ExtractSermon(ctx, text)
	if err != nil {
		s.logger.Error("Sermon extraction failed", zap.Error(err))
		return nil, fmt.Errorf("sermon extraction failed: %w", err)
	}

	s.logger.Info("Sermon extracted", zap.String("title", info.Title))
	return info, nil
}

// ExtractFromVideo загружает субтитры видео и передает их на извлечение.
func (s *sermonServiceImpl) ExtractFromVideo(ctx context.Context, videoURL string) (*ai.SermonInfo, error) {
	if s.client == nil {
		return nil, models.ErrForbidden
	}

	transcript, err := s.transcripts.Fetch(ctx, videoURL)
	if err != nil {
		s.logger.Warn("Transcript fetch failed", zap.String("url", videoURL), zap.Error(err))
		return nil, err
	}

	return s.Extract(ctx, transcript)
}
