// Package hints serves short nudges for the case a player is working on.
// A configured language model writes them when available; local rules
// cover the rest.
package hints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/llm"
	"github.com/abhisek/sleuth/internal/store"
)

// Source says where a hint came from.
type Source string

const (
	SourceModel Source = "llm"
	SourceRules Source = "rules"
)

// Input is what the player is looking at when they ask for a hint.
type Input struct {
	Case   cases.Case
	Schema []api.TableSchema
	SQL    string
	Error  string // last error shown under the editor, if any
}

// Hint is a nudge. By names the rule or the model that wrote it.
type Hint struct {
	Text   string
	Source Source
	By     string
}

// Config tunes model requests.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the request settings used by the CLI.
func DefaultConfig() Config {
	return Config{MaxTokens: 300, Temperature: 0.4, Timeout: 20 * time.Second}
}

// Service produces hints. The zero provider means rules only.
type Service struct {
	provider  llm.Provider
	rules     []Rule
	events    store.EventRepo
	sessionID string
	cfg       Config
	logger    *zap.Logger
}

// New creates a Service. provider and events may be nil.
func New(provider llm.Provider, events store.EventRepo, sessionID string, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		provider:  provider,
		rules:     DefaultRules(),
		events:    events,
		sessionID: sessionID,
		cfg:       cfg,
		logger:    logger.Named("hints"),
	}
}

// ModelBacked reports whether hints come from a language model.
func (s *Service) ModelBacked() bool {
	return s.provider != nil
}

// Hint returns a nudge for in. It never returns the case's answer: model
// output that reveals it is dropped in favour of the local rules. An error
// is returned only when ctx ends first.
func (s *Service) Hint(ctx context.Context, in Input) (Hint, error) {
	h, err := s.fromModel(ctx, &in)
	if err != nil {
		if ctx.Err() != nil {
			return Hint{}, ctx.Err()
		}
		s.logger.Warn("model hint unavailable, using rules", zap.String("case", in.Case.ID), zap.Error(err))
	}
	if h.Text == "" {
		text, rule := RunRules(s.rules, &in)
		h = Hint{Text: text, Source: SourceRules, By: rule}
	}

	if s.events != nil {
		if err := s.events.AppendHintEvent(ctx, store.HintEventData{
			SessionID: s.sessionID,
			CaseID:    in.Case.ID,
			SQL:       in.SQL,
			HintText:  h.Text,
		}); err != nil {
			s.logger.Warn("record hint", zap.Error(err))
		}
	}
	return h, nil
}

// errLeak marks model output that gave the answer away.
var errLeak = errors.New("hint reveals the answer")

func (s *Service) fromModel(ctx context.Context, in *Input) (Hint, error) {
	if s.provider == nil {
		return Hint{}, nil
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeHint)

	msg, err := buildHintMessage(in)
	if err != nil {
		return Hint{}, fmt.Errorf("build hint prompt: %w", err)
	}
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      hintSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      HintSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return Hint{}, err
	}

	var out struct {
		Hint string `json:"hint"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Hint{}, fmt.Errorf("parse hint response: %w", err)
	}
	text := strings.TrimSpace(out.Hint)
	if revealsAnswer(text, in.Case.Solution.Answer) {
		return Hint{}, errLeak
	}
	return Hint{Text: text, Source: SourceModel, By: resp.Model}, nil
}

const hintSystemPrompt = `Ты помощник в детективной игре, где игрок расследует дело с помощью SQL-запросов к базе данных лагеря.

Правила:
- Отвечай по-русски, одним-двумя предложениями.
- Подталкивай к следующему шагу: какую таблицу посмотреть, какой столбец отфильтровать, какую конструкцию SQL вспомнить.
- Никогда не пиши готовый запрос и не перечисляй точные значения условий из эталонного решения.
- Если у игрока ошибка, объясни, что с ней не так, не исправляя запрос целиком.`

var hintUserTemplate = template.Must(template.New("hint").Parse(`Дело: {{.Case.Title}}
{{.Case.Brief}}

Задания:
{{range .Case.Objectives}}- {{.}}
{{end}}
Таблицы:
{{range .Schema}}- {{.TableName}}({{range $i, $c := .Columns}}{{if $i}}, {{end}}{{$c.Name}} {{$c.Type}}{{end}})
{{end}}
Запрос игрока:
{{if .SQL}}{{.SQL}}{{else}}(пусто){{end}}
{{if .Error}}
Ошибка: {{.Error}}
{{end}}`))

func buildHintMessage(in *Input) (string, error) {
	var buf bytes.Buffer
	if err := hintUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
