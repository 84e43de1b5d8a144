package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"

	"ProjectOCR/internal/entity"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// complianceRegion is the only region the extraction backend may run in.
// Document images must not leave India.
const complianceRegion = "asia-south1"

var ErrRegionNotCompliant = errors.New("gemini region must be " + complianceRegion)

type IGemini interface {
	AnalyzeImage(ctx context.Context, payload entity.NormalizedImage, prompt string) (string, error)
	ValidateRegionalCompliance() bool
	Close()
}

type geminiClient struct {
	apiKey    string
	modelName string
	region    string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-1.5-flash-001"
	}

	region := os.Getenv("GEMINI_REGION")
	if region == "" {
		region = complianceRegion
	}
	if region != complianceRegion {
		return nil, ErrRegionNotCompliant
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		region:    region,
		client:    client,
	}, nil
}

func (g *geminiClient) ValidateRegionalCompliance() bool {
	return g.region == complianceRegion
}

func (g *geminiClient) AnalyzeImage(ctx context.Context, payload entity.NormalizedImage, prompt string) (string, error) {
	imgData, err := base64.StdEncoding.DecodeString(payload.Base64Data)
	if err != nil {
		return "", errors.New("invalid base64 image data")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(4096)
	model.ResponseMIMEType = "application/json"

	if prompt == "" {
		prompt = "Analyze this document image and provide details in JSON format."
	}

	format := strings.TrimPrefix(payload.MIMEType, "image/")
	img := genai.ImageData(format, imgData)

	res, err := model.GenerateContent(ctx, genai.Text(prompt), img)
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	part := res.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini API")
	}

	return string(text), nil
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
