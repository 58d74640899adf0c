package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates replies with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, config: generationConfig()}, nil
}

func generationConfig() *genai.GenerateContentConfig {
	safety := make([]*genai.SafetySetting, 0, 4)
	for _, category := range []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	} {
		safety = append(safety, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopK:            genai.Ptr[float32](40),
		TopP:            genai.Ptr[float32](0.95),
		MaxOutputTokens: 1024,
		SafetySettings:  safety,
	}
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		if upstream := upstreamFromAPI(err); upstream != nil {
			return "", upstream
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return textFrom(resp)
}

// textFrom extracts the first candidate's text. Blocked candidates become 400s.
func textFrom(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil
	}
	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety:
		return "", &UpstreamError{Status: http.StatusBadRequest, Message: "Response blocked by safety filters"}
	case genai.FinishReasonRecitation:
		return "", &UpstreamError{Status: http.StatusBadRequest, Message: "Response blocked due to recitation"}
	}
	if candidate.Content == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

func upstreamFromAPI(err error) *UpstreamError {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}
	switch apiErr.Code {
	case http.StatusBadRequest:
		return &UpstreamError{Status: http.StatusBadRequest, Message: "API Error: " + apiErr.Message}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &UpstreamError{Status: http.StatusForbidden, Message: "API key invalid or quota exceeded"}
	case http.StatusTooManyRequests:
		return &UpstreamError{Status: http.StatusTooManyRequests, Message: "Rate limit exceeded. Please try again later"}
	case http.StatusGatewayTimeout:
		return &UpstreamError{Status: http.StatusGatewayTimeout, Message: "Request timeout. Please try again"}
	default:
		return &UpstreamError{Status: http.StatusInternalServerError, Message: "Server error"}
	}
}
