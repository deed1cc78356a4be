package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"pictor/internal/metadata"
	"pictor/pkg/logger"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const analyzePrompt = `Analyze this image and extract the following metadata in JSON format only:

{
  "medium": "Photography, Painting, Digital Art, etc.",
  "people": {
    "number": number of people detected (0 if none),
    "gender": "Males, Females, Mixed group, etc. (null if no people)"
  },
  "actions": "Running, dancing, sitting, etc. (null if not applicable)",
  "clothes": "Formal, casual, sportswear, etc. (null if not applicable)",
  "environment": "Indoor, outdoor, city, nature, etc.",
  "colors": ["Top 2 dominant colors"],
  "style": "Abstract, realistic, vintage, modern, etc.",
  "mood": "Happy, dramatic, nostalgic, etc.",
  "scene": "Detailed description of the scene (40-50 words max)"
}

Important instructions:
- Return ONLY valid JSON, no other text.
- Use null for fields that don't apply.
- Keep values concise (1-2 words) except for the scene description.
- The scene description should be factual and descriptive.
- Do not include any commentary or introductory text.`

const extractPromptFmt = `Extract search criteria from this natural language query: %q

Return a JSON object with these possible fields:

{
  "medium": extracted medium (e.g., "Photography"),
  "people": {
    "number": extracted number of people,
    "gender": extracted gender description
  },
  "actions": extracted actions (e.g., "Running"),
  "clothes": extracted clothes description,
  "environment": extracted environment (e.g., "Outdoor"),
  "colors": [extracted colors],
  "style": extracted style (e.g., "Vintage"),
  "mood": extracted mood (e.g., "Happy"),
  "keywords": [other significant keywords from the query]
}

Rules:
- Include only fields that are explicitly mentioned in the query
- Leave out fields that aren't mentioned (don't use null, just omit them)
- Return valid JSON only, no additional text
- Be precise and concise with extracted values`

// Models often wrap their JSON in prose or code fences; take the widest
// brace-delimited span.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// GeminiClient implements both oracles over the Gemini REST API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewGeminiClientAt points the client at a non-default API endpoint.
func NewGeminiClientAt(baseURL, apiKey, model string, timeout time.Duration) *GeminiClient {
	c := NewGeminiClient(apiKey, model, timeout)
	c.baseURL = baseURL
	return c
}

// Request/response shapes for generateContent, reduced to the fields this
// client actually uses.
type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the image to the vision model and parses the structured
// metadata from its reply.
func (g *GeminiClient) Analyze(ctx context.Context, imageBytes []byte, mimeType string) (metadata.Metadata, error) {
	parts := []geminiPart{
		{Text: analyzePrompt},
		{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(imageBytes),
		}},
	}

	raw, err := g.generate(ctx, parts)
	if err != nil {
		return metadata.Metadata{}, err
	}

	var m metadata.Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return metadata.Metadata{}, fmt.Errorf("parse analysis response: %w", err)
	}
	return m, nil
}

// ExtractCriteria asks the text model to structure the query. Failures are
// logged and degrade to empty criteria; they never fail the search.
func (g *GeminiClient) ExtractCriteria(ctx context.Context, query string) (Criteria, error) {
	parts := []geminiPart{{Text: fmt.Sprintf(extractPromptFmt, query)}}

	raw, err := g.generate(ctx, parts)
	if err != nil {
		logger.LogWarn("Criteria extraction failed, degrading to plain search: %v", err)
		return Criteria{}, nil
	}

	var c Criteria
	if err := json.Unmarshal(raw, &c); err != nil {
		logger.LogWarn("Criteria extraction returned unparseable JSON, degrading to plain search: %v", err)
		return Criteria{}, nil
	}
	return c, nil
}

// generate runs one generateContent call and returns the JSON block found
// in the model's text reply.
func (g *GeminiClient) generate(ctx context.Context, parts []geminiPart) ([]byte, error) {
	reqBody := geminiRequest{Contents: []geminiContent{{Parts: parts}}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode oracle request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read oracle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle returned %s: %s", resp.Status, truncate(body, 200))
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("oracle returned no candidates")
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	block := jsonBlock.FindString(text)
	if block == "" {
		return nil, fmt.Errorf("no JSON found in oracle response")
	}
	return []byte(block), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
