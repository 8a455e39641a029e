package generate

import (
	"context"
	"strings"
	"time"
)

const defaultTemperature = 0.6

type TextGenerator interface {
	GenerateContent(ctx context.Context, model, prompt string, temperature float64) (string, error)
}

type Result struct {
	Text  string
	Lang  Lang
	Model string
}

// Service runs the generate pipeline: select language, compose the prompt,
// make the single upstream call, shape the output. It holds no state across
// requests.
type Service struct {
	client  TextGenerator
	model   string
	timeout time.Duration
}

func New(client TextGenerator, model string, timeout time.Duration) *Service {
	return &Service{
		client:  client,
		model:   strings.TrimSpace(model),
		timeout: timeout,
	}
}

func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	lang := Select(req.Prompt, req.Lang)
	composed := Compose(req.Prompt, lang)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.GenerateContent(ctx, s.model, composed, defaultTemperature)
	if err != nil {
		return Result{}, err
	}

	return Result{Text: Shape(raw), Lang: lang, Model: s.model}, nil
}
