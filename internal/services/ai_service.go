package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	apperrors "github.com/vladimiradmaev/bp-assistant/internal/errors"
	"github.com/vladimiradmaev/bp-assistant/internal/logger"
	"google.golang.org/api/option"
)

// AnalysisResult is the structured outcome of one vision analysis. It is
// never persisted directly; the capture pipeline turns it into a Reading.
type AnalysisResult struct {
	Systolic   int
	Diastolic  int
	Pulse      int
	Confidence float64
	Timestamp  time.Time
	Notes      string
}

// AnalysisProvider is one hosted vision model capable of reading a blood
// pressure monitor display from a photo. Analyze returns the raw model
// text; parsing happens in AIService so both providers share it.
type AnalysisProvider interface {
	Name() string
	Analyze(ctx context.Context, imageData []byte) (string, error)
}

const analysisPrompt = `You are reading the display of a home blood pressure monitor from a photo.

TASK:
1. Read the systolic value (large upper number, mmHg)
2. Read the diastolic value (middle number, mmHg)
3. Read the pulse value (lower number, bpm)
4. Assess how confident you are that you read the display correctly

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a single valid JSON object
- Do not include any markdown formatting or explanatory text around it
- confidence is a number between 0 and 1
- notes is a short remark about display readability, or an empty string
- The JSON must have these exact fields:
  {
    "systolic": 120,
    "diastolic": 80,
    "pulse": 70,
    "timestamp": "2024-01-01T00:00:00Z",
    "confidence": 0.95,
    "notes": ""
  }`

// AIService selects a provider at construction time and coerces its free
// form text output into an AnalysisResult.
type AIService struct {
	provider AnalysisProvider
}

// NewAIService picks the first provider with a configured credential,
// Gemini before OpenAI. It fails with a configuration error when neither
// key is present.
func NewAIService(geminiAPIKey, openaiAPIKey string) (*AIService, error) {
	switch {
	case geminiAPIKey != "":
		provider, err := NewGeminiProvider(geminiAPIKey)
		if err != nil {
			return nil, err
		}
		return &AIService{provider: provider}, nil
	case openaiAPIKey != "":
		return &AIService{provider: NewOpenAIProvider(openaiAPIKey)}, nil
	default:
		return nil, apperrors.NewConfigurationError("no analysis provider credential configured")
	}
}

// NewAIServiceWithProvider wires an explicit provider, used in tests.
func NewAIServiceWithProvider(provider AnalysisProvider) *AIService {
	return &AIService{provider: provider}
}

// Provider returns the name of the selected provider.
func (s *AIService) Provider() string {
	return s.provider.Name()
}

// AnalyzeImage runs the photo through the configured provider and parses
// the response. The result timestamp is always the completion time here,
// never a value asserted by the model.
func (s *AIService) AnalyzeImage(ctx context.Context, imageData []byte) (*AnalysisResult, error) {
	text, err := s.provider.Analyze(ctx, imageData)
	if err != nil {
		return nil, apperrors.NewProviderError(err, s.provider.Name())
	}

	result, err := parseAnalysisResponse(text)
	if err != nil {
		logger.Debug("Unparseable analysis response", "provider", s.provider.Name(), "response", text)
		return nil, err
	}

	logger.Infof("Analysis completed via %s: %d/%d pulse %d confidence %.2f",
		s.provider.Name(), result.Systolic, result.Diastolic, result.Pulse, result.Confidence)
	return result, nil
}

// analysisPayload mirrors the JSON the model is asked to produce. The
// timestamp field is accepted but discarded; confidence is a pointer so a
// missing value is distinguishable from zero.
type analysisPayload struct {
	Systolic   int      `json:"systolic"`
	Diastolic  int      `json:"diastolic"`
	Pulse      int      `json:"pulse"`
	Confidence *float64 `json:"confidence"`
	Notes      string   `json:"notes"`
}

func parseAnalysisResponse(text string) (*AnalysisResult, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nil, apperrors.NewParseError(fmt.Errorf("no JSON object in response"))
	}
	jsonStr = stripLineComments(jsonStr)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, apperrors.NewParseError(err)
	}

	if payload.Systolic <= 0 || payload.Diastolic <= 0 || payload.Pulse <= 0 {
		return nil, apperrors.NewParseError(fmt.Errorf("incomplete vitals: %d/%d pulse %d",
			payload.Systolic, payload.Diastolic, payload.Pulse))
	}

	// Out-of-range or missing confidence drops to the lowest trust tier,
	// which forces the confirmation path. Not an error.
	confidence := 0.0
	if payload.Confidence != nil && *payload.Confidence >= 0 && *payload.Confidence <= 1 {
		confidence = *payload.Confidence
	}

	return &AnalysisResult{
		Systolic:   payload.Systolic,
		Diastolic:  payload.Diastolic,
		Pulse:      payload.Pulse,
		Confidence: confidence,
		Timestamp:  time.Now(),
		Notes:      payload.Notes,
	}, nil
}

// extractJSON attempts to extract a valid JSON object from the given
// string. It handles cases where the JSON is wrapped in code blocks
// (```json ... ```) or other text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// stripLineComments removes // comments the models sometimes append to
// JSON fields, without touching slashes inside string values.
func stripLineComments(s string) string {
	var b strings.Builder
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// GeminiProvider analyzes photos with Google's Gemini vision models.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("failed to create Gemini client: %v", err))
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Analyze(ctx context.Context, imageData []byte) (string, error) {
	model := p.client.GenerativeModel("gemini-1.5-flash")

	img := genai.ImageData("image/jpeg", imageData)
	resp, err := model.GenerateContent(ctx, img, genai.Text(analysisPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

// OpenAIProvider analyzes photos with OpenAI's vision-capable chat models.
type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Analyze(ctx context.Context, imageData []byte) (string, error) {
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)

	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: analysisPrompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: imageURL,
							},
						},
					},
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}
