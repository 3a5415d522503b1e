package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"arthemis/internal/logger"
	"arthemis/internal/models"
	"arthemis/internal/services"
	"arthemis/pkg/genai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCurationService_AnalyzeArtDNA(t *testing.T) {
	gen := new(MockGenerator)
	service := services.NewCurationService(gen, time.Minute, logger.Nop())

	gen.On("GenerateJSON", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.AnythingOfType("*models.ArtDNA")).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*models.ArtDNA)
			*out = models.ArtDNA{Tags: []string{"Nocturne"}, Palette: []string{"#112233"}, Mood: "Calm", Style: "Tonalism"}
		}).
		Return(nil).Once()

	dna := service.AnalyzeArtDNA(context.Background(), "Night River", "Moonlight over water")
	assert.Equal(t, "Calm", dna.Mood)
	assert.Equal(t, []string{"Nocturne"}, dna.Tags)

	// Served from cache without a second call.
	again := service.AnalyzeArtDNA(context.Background(), "Night River", "Moonlight over water")
	assert.Equal(t, dna, again)
	gen.AssertExpectations(t)
}

func TestCurationService_FallsBackOnFailure(t *testing.T) {
	gen := new(MockGenerator)
	service := services.NewCurationService(gen, time.Minute, logger.Nop())

	gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))
	gen.On("GenerateGrounded", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	dna := service.AnalyzeArtDNA(context.Background(), "Untitled", "")
	assert.Equal(t, "Unknown", dna.Mood)
	assert.Equal(t, "Abstract", dna.Style)

	mix := service.DailyMix(context.Background(), "")
	assert.Equal(t, "Ethereal Echoes", mix.PlaylistTitle)
	assert.Len(t, mix.Themes, 3)

	news := service.ArtNews(context.Background(), "Paris")
	assert.Equal(t, "Unable to sync with global art registries at this moment.", news.Text)
	assert.Empty(t, news.Sources)

	// Defaults are not cached.
	service.DailyMix(context.Background(), "")
	gen.AssertNumberOfCalls(t, "GenerateJSON", 3)
}

func TestCurationService_DailyMixDefaultsMood(t *testing.T) {
	gen := new(MockGenerator)
	service := services.NewCurationService(gen, time.Minute, logger.Nop())

	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, `"Serene"`)
	}), mock.Anything, mock.AnythingOfType("*models.DailyMix")).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*models.DailyMix)
			out.PlaylistTitle = "Still Waters"
		}).
		Return(nil).Once()

	mix := service.DailyMix(context.Background(), "  ")
	assert.Equal(t, "Still Waters", mix.PlaylistTitle)
	gen.AssertExpectations(t)
}

func TestCurationService_ArtNews(t *testing.T) {
	gen := new(MockGenerator)
	service := services.NewCurationService(gen, time.Minute, logger.Nop())

	gen.On("GenerateGrounded", mock.Anything, mock.AnythingOfType("string")).Return(&genai.GroundedAnswer{
		Sources: []genai.Source{{URI: "https://museum.example.com", Title: "Museum"}},
	}, nil).Once()

	news := service.ArtNews(context.Background(), "")
	assert.Equal(t, "No news found.", news.Text)
	assert.Equal(t, []models.NewsSource{{URI: "https://museum.example.com", Title: "Museum"}}, news.Sources)
	gen.AssertExpectations(t)
}

func TestCurationService_WithoutGenerator(t *testing.T) {
	service := services.NewCurationService(nil, time.Minute, logger.Nop())
	assert.Equal(t, "Unknown", service.AnalyzeArtDNA(context.Background(), "Untitled", "").Mood)
	assert.Equal(t, "Ethereal Echoes", service.DailyMix(context.Background(), "Joyful").PlaylistTitle)
}
