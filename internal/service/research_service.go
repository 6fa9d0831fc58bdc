package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weltenbibliothek/community-service/internal/ai"
	"github.com/weltenbibliothek/community-service/internal/domain"
)

type ReportStore interface {
	Save(ctx context.Context, rep *domain.ResearchReport) error
}

type ResearchService struct {
	gen       ai.Generator
	reports   ReportStore
	model     string
	maxTokens int
}

func NewResearchService(gen ai.Generator, reports ReportStore, model string, maxTokens int) *ResearchService {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &ResearchService{gen: gen, reports: reports, model: model, maxTokens: maxTokens}
}

// researchPrompt — структура отчёта зафиксирована продуктом, не трогать.
func researchPrompt(topic string) string {
	return fmt.Sprintf(`Du bist ein Experte für Recherche und Wissenssammlung.
Erstelle eine detaillierte Recherche zum Thema: "%s".

Strukturiere deine Antwort wie folgt:
1. Überblick und Definition
2. Wichtige Aspekte und Fakten
3. Historischer Kontext
4. Aktuelle Entwicklungen
5. Quellen und weiterführende Informationen

Antworte auf Deutsch und sei präzise und informativ.`, topic)
}

// Generate — зовёт внешний генератор и сохраняет отчёт. Ошибка сохранения
// не теряет сгенерированный текст.
func (s *ResearchService) Generate(ctx context.Context, topic, world string) (*domain.ResearchReport, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ErrInvalidInput
	}
	if world != "" && !domain.ValidWorld(world) {
		return nil, domain.ErrUnknownWorld
	}

	content, err := s.gen.Generate(ctx, researchPrompt(topic), s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("research generate: %w", err)
	}

	rep := &domain.ResearchReport{
		Topic:   topic,
		World:   world,
		Model:   s.model,
		Content: content,
	}
	if err := s.reports.Save(ctx, rep); err != nil {
		slog.Warn("research report save failed", "topic", topic, "err", err)
	}
	return rep, nil
}
