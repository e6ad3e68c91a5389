package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"archiviz/internal/room/models"
	"archiviz/internal/room/motif"
)

// ============================================================
// Suggester
// ============================================================

// Suggester выдаёт цветовую схему для всех шести поверхностей.
type Suggester interface {
	Suggest(ctx context.Context) (models.Suggestion, error)
}

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"
)

// Prompt - запрос к модели на естественном языке.
const Prompt = "Suggest a cohesive and modern interior design color scheme for a room. " +
	"Provide hex codes for North, South, East, West walls, floor, and ceiling. " +
	"Make it feel balanced and professionally designed (e.g., accent walls, complementary colors)."

// Gemini реализует Suggester поверх REST generateContent.
// Таймаут задаётся только контекстом вызывающего.
type Gemini struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewGemini(httpClient *http.Client, baseURL, apiKey, model string) *Gemini {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

func (g *Gemini) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
}

// Suggest отправляет один запрос без повторов. Любая ошибка транспорта,
// HTTP-статуса или схемы ответа возвращается целиком.
func (g *Gemini) Suggest(ctx context.Context) (models.Suggestion, error) {
	body, err := json.Marshal(buildRequest())
	if err != nil {
		return nil, fmt.Errorf("suggest/gemini: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("suggest/gemini: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggest/gemini: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readProviderError(resp)
	}

	var wire generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("suggest/gemini: decoding response: %w", err)
	}

	text := strings.TrimSpace(wire.text())
	if text == "" {
		return nil, fmt.Errorf("suggest/gemini: empty response")
	}
	return ParseSuggestion([]byte(text))
}

// ============================================================
// Wire format
// ============================================================

type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// responseSchema описывает объект с шестью обязательными поверхностями.
func responseSchema() *schema {
	props := make(map[string]*schema, len(models.AllSides))
	required := make([]string, 0, len(models.AllSides))
	for _, side := range models.AllSides {
		props[string(side)] = &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"color":     {Type: "STRING"},
				"roughness": {Type: "NUMBER"},
				"metalness": {Type: "NUMBER"},
			},
			Required: []string{"color", "roughness", "metalness"},
		}
		required = append(required, string(side))
	}
	return &schema{Type: "OBJECT", Properties: props, Required: required}
}

func buildRequest() generateRequest {
	return generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: Prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}
}

// ============================================================
// Response validation
// ============================================================

type wireFinish struct {
	Color     *string  `json:"color"`
	Roughness *float64 `json:"roughness"`
	Metalness *float64 `json:"metalness"`
}

// ParseSuggestion строго разбирает JSON-ответ: все шесть поверхностей и
// все три поля обязательны, цвет - hex, числа - в [0, 1].
func ParseSuggestion(data []byte) (models.Suggestion, error) {
	var raw map[string]*wireFinish
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("suggest: parsing suggestion: %w", err)
	}

	out := make(models.Suggestion, len(models.AllSides))
	for _, side := range models.AllSides {
		f, ok := raw[string(side)]
		if !ok || f == nil {
			return nil, fmt.Errorf("suggest: missing surface %q", side)
		}
		if f.Color == nil || f.Roughness == nil || f.Metalness == nil {
			return nil, fmt.Errorf("suggest: surface %q: missing field", side)
		}
		if !motif.ValidColor(*f.Color) {
			return nil, fmt.Errorf("suggest: surface %q: invalid color %q", side, *f.Color)
		}
		if !inUnit(*f.Roughness) || !inUnit(*f.Metalness) {
			return nil, fmt.Errorf("suggest: surface %q: value out of range", side)
		}
		out[side] = models.SurfaceFinish{Color: *f.Color, Roughness: *f.Roughness, Metalness: *f.Metalness}
	}
	return out, nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// ============================================================
// Errors
// ============================================================

// ProviderError возвращается при ответе API с ошибочным статусом.
type ProviderError struct {
	StatusCode int
	Status     string
	Message    string
}

func (err *ProviderError) Error() string {
	if err.Status != "" {
		return fmt.Sprintf("suggest/gemini: HTTP %d: %s: %s", err.StatusCode, err.Status, err.Message)
	}
	return fmt.Sprintf("suggest/gemini: HTTP %d: %s", err.StatusCode, err.Message)
}

// readProviderError разбирает тело вида {"error":{"code","message","status"}}.
func readProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var wireError struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Error.Message != "" {
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Status:     wireError.Error.Status,
			Message:    wireError.Error.Message,
		}
	}
	return &ProviderError{StatusCode: resp.StatusCode, Message: string(body)}
}
