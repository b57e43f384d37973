package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/services"
	"otakurganizer/internal/services/llm"
)

// ErrInvalidSuggestion marks provider responses that failed validation.
var ErrInvalidSuggestion = errors.New("invalid suggestion")

// Suggestion is a validated grouping for one file.
type Suggestion struct {
	Series  string `json:"series"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
}

// Apply copies the suggestion onto record.
func (s Suggestion) Apply(record *media.FileRecord) {
	record.Series = s.Series
	record.Season = media.IntPtr(s.Season)
	record.Episode = media.IntPtr(s.Episode)
}

// Provider suggests a grouping for a filename. Implementations return an
// error wrapping ErrInvalidSuggestion when the response fails validation.
type Provider interface {
	Suggest(ctx context.Context, name string) (Suggestion, error)
}

// Validate decodes payload and enforces the suggestion contract.
func Validate(payload []byte) (Suggestion, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Suggestion{}, fmt.Errorf("%w: not a JSON object: %w", ErrInvalidSuggestion, err)
	}

	var out Suggestion
	if err := decodeField(fields, "series", &out.Series); err != nil {
		return Suggestion{}, err
	}
	out.Series = strings.TrimSpace(out.Series)
	if out.Series == "" {
		return Suggestion{}, fmt.Errorf("%w: series is blank", ErrInvalidSuggestion)
	}
	if err := decodeField(fields, "season", &out.Season); err != nil {
		return Suggestion{}, err
	}
	if err := decodeField(fields, "episode", &out.Episode); err != nil {
		return Suggestion{}, err
	}
	if out.Season < 0 || out.Episode < 0 {
		return Suggestion{}, fmt.Errorf("%w: negative season or episode (%d, %d)", ErrInvalidSuggestion, out.Season, out.Episode)
	}
	return out, nil
}

// decodeField unmarshals one required, non-null field. Unmarshalling into
// string or int already rejects numbers given as strings and fractional
// values.
func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok || strings.TrimSpace(string(raw)) == "null" {
		return fmt.Errorf("%w: missing %s", ErrInvalidSuggestion, key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSuggestion, key, err)
	}
	return nil
}

// SystemPrompt instructs the model to reply with a grouping object.
const SystemPrompt = `You are an anime organization expert. Parse the filename you are given and ` +
	`return only a JSON object with the series name, season number, and episode number. ` +
	`Use season 1 when the filename has no season. ` +
	`Example: {"series": "Naruto", "season": 1, "episode": 5}`

// Completer issues a JSON-only chat completion.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMProvider asks a chat model for suggestions.
type LLMProvider struct {
	client Completer
	logger *slog.Logger
}

// NewLLMProvider wraps client.
func NewLLMProvider(client Completer, logger *slog.Logger) *LLMProvider {
	return &LLMProvider{client: client, logger: logging.NewComponentLogger(logger, "suggest")}
}

// Suggest asks the model about name and validates the reply.
func (p *LLMProvider) Suggest(ctx context.Context, name string) (Suggestion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Suggestion{}, services.Wrap(services.ErrValidation, "suggest", "validate input", "file name is empty", nil)
	}
	content, err := p.client.CompleteJSON(ctx, SystemPrompt, name)
	if err != nil {
		return Suggestion{}, services.Wrap(services.ErrExternalTool, "suggest", "request completion", name, err)
	}

	raw, err := llm.ExtractJSON(content)
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: decode reply: %w", ErrInvalidSuggestion, err)
	}
	suggestion, err := Validate(raw)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "suggestion rejected", "suggestion_invalid",
			logging.String("name", name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "record left unchanged"),
		)
		return Suggestion{}, err
	}
	p.logger.Debug("suggestion accepted",
		logging.String("name", name),
		logging.String("series", suggestion.Series),
		logging.Int("season", suggestion.Season),
		logging.Int("episode", suggestion.Episode),
	)
	return suggestion, nil
}
