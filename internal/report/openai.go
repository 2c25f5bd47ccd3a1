package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"facilitybook/internal/config"
	"facilitybook/internal/domain"
	"facilitybook/internal/models"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

const systemPrompt = "You write short daily facility usage reports for a school administrator. " +
	"Summarize room utilization, busiest periods and pending requests in plain prose. Do not invent bookings."

// OpenAIGenerator produces narrative summaries through a chat completion
// endpoint. Any OpenAI-compatible server works when BaseURL is set.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	rooms  map[string]string
	logger *zerolog.Logger
}

func NewOpenAIGenerator(cfg config.ReportConfig, rooms []models.Room, logger *zerolog.Logger) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		rooms:  names,
		logger: logger,
	}
}

func (g *OpenAIGenerator) Summarize(ctx context.Context, bookings []*models.Booking) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(g.prompt(bookings)),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			g.logger.Warn().Int("status", apiErr.StatusCode).Str("model", g.model).Msg("report API error")
			return "", domain.External(fmt.Sprintf("The report service returned an error (HTTP %d).", apiErr.StatusCode), err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.External("The report service returned an empty response.", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// prompt lists one booking per line in a stable order.
func (g *OpenAIGenerator) prompt(bookings []*models.Booking) string {
	var sb strings.Builder
	sb.WriteString("Bookings:\n")
	for _, b := range bookings {
		room := g.rooms[b.RoomID]
		if room == "" {
			room = b.RoomID
		}
		fmt.Fprintf(&sb, "- %s %s %d:00-%d:00 | %s | %s | %s (%s) | %s\n",
			b.Date, room, b.StartTime, b.EndTime, b.Category, b.Description, b.UserName, b.UserRole, b.Status)
	}
	return sb.String()
}
