// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package suggest asks a language model for the places a news article talks
// about. Suggestions are only hints: they go through the same extraction,
// geocoding and validation as every other candidate.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/observatorio/geonoticias/extract"
)

// DefaultModel is used when none is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

const (
	maxTokens = 1024
	// long articles are cut, the places that matter are near the top
	maxInputRunes = 8000
)

// ErrNoJSON is returned when the answer has no JSON in it.
var ErrNoJSON = errors.New("no JSON in model response")

// Source supplies candidates for an article.
type Source interface {
	Suggest(ctx context.Context, title, body string) ([]extract.Candidate, error)
}

const systemPrompt = "Sos un experto en análisis geográfico de noticias de Argentina y países " +
	"limítrofes. Identificás las ubicaciones mencionadas en textos periodísticos. " +
	"Respondés SOLO con JSON válido."

const userPrompt = `Extraé las ubicaciones geográficas (ciudades, provincias, departamentos) mencionadas en la noticia.
Respondé SOLO con un array JSON. Cada elemento tiene:
- name: nombre exacto de la ubicación como aparece en el texto
- country: código ISO de país en minúsculas (ar, cl, uy, py, bo...)
- is_primary: true si es donde ocurrió el hecho principal

Ejemplo: [{"name": "Mar del Plata", "country": "ar", "is_primary": true}]

Título: %s

Texto:
%s`

// Claude is a Source backed by the Anthropic Messages API.
type Claude struct {
	client sdk.Client
	model  string
}

// NewClaude builds a Claude source. Extra options are passed to the SDK
// client (base URL, retries, HTTP client).
func NewClaude(apiKey, model string, opts ...option.RequestOption) *Claude {
	if model == "" {
		model = DefaultModel
	}

	return &Claude{
		client: sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:  model,
	}
}

// Suggest implements Source.
func (c *Claude) Suggest(ctx context.Context, title, body string) ([]extract.Candidate, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(body) == "" {
		return nil, nil
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(0),
		System:      []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(fmt.Sprintf(userPrompt, title, truncate(body, maxInputRunes)))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: create message: %w", err)
	}

	var sb strings.Builder

	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return Parse(sb.String())
}

type suggestion struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	IsPrimary bool   `json:"is_primary"`
}

// Parse extracts the suggestions from a model answer. It accepts a bare array
// or an object with a "locations" array, surrounded by any amount of prose or
// markdown fences.
func Parse(text string) ([]extract.Candidate, error) {
	var items []suggestion

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return nil, ErrNoJSON
	}

	if text[start] == '[' {
		end := strings.LastIndex(text, "]")
		if end < start {
			return nil, ErrNoJSON
		}

		if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
			return nil, fmt.Errorf("decoding suggestions: %w", err)
		}
	} else {
		end := strings.LastIndex(text, "}")
		if end < start {
			return nil, ErrNoJSON
		}

		var wrapper struct {
			Locations []suggestion `json:"locations"`
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &wrapper); err != nil {
			return nil, fmt.Errorf("decoding suggestions: %w", err)
		}

		items = wrapper.Locations
	}

	var ret []extract.Candidate

	for _, it := range items {
		c := extract.NewHint(it.Name, it.Country, it.IsPrimary)
		if c.Normalized == "" {
			continue
		}

		ret = append(ret, c)
	}

	return ret, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}
