package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SermonInfo — структурированные данные, извлеченные из текста проповеди.
type SermonInfo struct {
	Title               string   `json:"title"`
	Speaker             string   `json:"speaker"`
	Date                string   `json:"date"`
	ScriptureReferences []string `json:"scripture_references"`
	Summary             string   `json:"summary"`
}

// ParseSermonResponse парсит текстовый ответ модели в SermonInfo.
// Модели иногда оборачивают JSON в markdown-ограждение, снимаем его.
func ParseSermonResponse(responseText string) (*SermonInfo, error) {
	if responseText == "" {
		return nil, errors.New("пустой ответ для парсинга")
	}

	cleaned := strings.TrimSpace(responseText)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var info SermonInfo
	if err := json.Unmarshal([]byte(cleaned), &info); err != nil {
		return nil, fmt.Errorf("ответ модели не является валидным JSON: %w", err)
	}
	if info.Title == "" && info.Speaker == "" && len(info.ScriptureReferences) == 0 && info.Summary == "" {
		return nil, errors.New("модель не извлекла ни одного поля")
	}
	return &info, nil
}
