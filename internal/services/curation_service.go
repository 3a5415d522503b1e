package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arthemis/internal/metrics"
	"arthemis/internal/models"
	"arthemis/pkg/genai"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Generator is the generative-AI backend of the curation features.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema genai.Schema, out interface{}) error
	GenerateGrounded(ctx context.Context, prompt string) (*genai.GroundedAnswer, error)
}

func defaultArtDNA() *models.ArtDNA {
	return &models.ArtDNA{
		Tags:    []string{"Digital", "Expressive", "Modern"},
		Palette: []string{"#000000", "#FFFFFF"},
		Mood:    "Unknown",
		Style:   "Abstract",
	}
}

func defaultDailyMix() *models.DailyMix {
	return &models.DailyMix{
		PlaylistTitle:     "Ethereal Echoes",
		PoeticDescription: "A selection of works that bridge the gap between memory and reality.",
		Themes:            []string{"Ghostly Gradients", "Fractured Light", "Soft Textures"},
	}
}

func defaultArtNews() *models.ArtNews {
	return &models.ArtNews{
		Text:    "Unable to sync with global art registries at this moment.",
		Sources: []models.NewsSource{},
	}
}

var (
	artDNASchema = genai.Schema{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"tags":    map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"palette": map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"mood":    map[string]interface{}{"type": "STRING"},
			"style":   map[string]interface{}{"type": "STRING"},
		},
		"required": []string{"tags", "palette", "mood", "style"},
	}
	dailyMixSchema = genai.Schema{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"playlistTitle":     map[string]interface{}{"type": "STRING"},
			"poeticDescription": map[string]interface{}{"type": "STRING"},
			"themes":            map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
		},
		"required": []string{"playlistTitle", "poeticDescription", "themes"},
	}
)

// CurationService serves the AI enrichment features. Every feature answers
// with a fixed default when the upstream call fails.
type CurationService struct {
	gen   Generator
	cache *cache.Cache
	log   *zap.SugaredLogger
}

type disabledGenerator struct{}

func (disabledGenerator) GenerateJSON(context.Context, string, genai.Schema, interface{}) error {
	return genai.ErrNotConfigured
}

func (disabledGenerator) GenerateGrounded(context.Context, string) (*genai.GroundedAnswer, error) {
	return nil, genai.ErrNotConfigured
}

// NewCurationService creates a new CurationService caching answers for ttl.
// A nil gen serves defaults only.
func NewCurationService(gen Generator, ttl time.Duration, log *zap.SugaredLogger) *CurationService {
	if gen == nil {
		gen = disabledGenerator{}
	}
	return &CurationService{
		gen:   gen,
		cache: cache.New(ttl, 2*ttl),
		log:   log,
	}
}

func (s *CurationService) fallback(feature string, err error) {
	metrics.RecordCurationFallback(feature)
	s.log.Warnw("curation upstream failed, serving default", "feature", feature, "error", err)
}

// AnalyzeArtDNA suggests tags, a palette, a mood and a style for an artwork.
func (s *CurationService) AnalyzeArtDNA(ctx context.Context, title, description string) *models.ArtDNA {
	key := "dna:" + title + "\x00" + description
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.ArtDNA)
	}

	prompt := fmt.Sprintf("You are an expert art curator. Analyze this artwork titled %q with the following story: %q. "+
		"Suggest 5 professional tags for discovery, a dominant color palette (in hex), and a \"Visual Mood\" category.",
		title, description)
	var dna models.ArtDNA
	if err := s.gen.GenerateJSON(ctx, prompt, artDNASchema, &dna); err != nil {
		s.fallback("dna", err)
		return defaultArtDNA()
	}
	s.cache.SetDefault(key, &dna)
	return &dna
}

// DailyMix describes a themed playlist for mood.
func (s *CurationService) DailyMix(ctx context.Context, mood string) *models.DailyMix {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		mood = "Serene"
	}
	key := "mix:" + strings.ToLower(mood)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.DailyMix)
	}

	prompt := fmt.Sprintf("Generate a conceptual description for an art \"Daily Mix\" playlist based on the mood: %q. "+
		"Include a poetic title, a brief evocative description, and three suggested visual themes.", mood)
	var mix models.DailyMix
	if err := s.gen.GenerateJSON(ctx, prompt, dailyMixSchema, &mix); err != nil {
		s.fallback("daily_mix", err)
		return defaultDailyMix()
	}
	s.cache.SetDefault(key, &mix)
	return &mix
}

// ArtNews summarises current exhibitions and gallery news for location.
func (s *CurationService) ArtNews(ctx context.Context, location string) *models.ArtNews {
	location = strings.TrimSpace(location)
	if location == "" {
		location = "Global"
	}
	key := "news:" + strings.ToLower(location)
	if v, ok := s.cache.Get(key); ok {
		return v.(*models.ArtNews)
	}

	year := time.Now().Year()
	prompt := fmt.Sprintf("Fetch the most significant current art exhibitions, museum openings, and gallery news for %s in %d and %d. "+
		"Provide a summary of each event.", location, year, year+1)
	answer, err := s.gen.GenerateGrounded(ctx, prompt)
	if err != nil {
		s.fallback("news", err)
		return defaultArtNews()
	}

	news := &models.ArtNews{Text: answer.Text, Sources: make([]models.NewsSource, 0, len(answer.Sources))}
	if news.Text == "" {
		news.Text = "No news found."
	}
	for _, src := range answer.Sources {
		news.Sources = append(news.Sources, models.NewsSource{URI: src.URI, Title: src.Title})
	}
	s.cache.SetDefault(key, news)
	return news
}
