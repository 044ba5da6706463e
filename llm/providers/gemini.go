package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/c360studio/tripplanner/llm"
)

// GeminiProvider implements the Gemini generateContent REST API.
type GeminiProvider struct{}

func init() {
	llm.RegisterProvider(&GeminiProvider{})
}

// Name returns the provider identifier.
func (g *GeminiProvider) Name() string {
	return "gemini"
}

// BuildURL constructs the generateContent endpoint. The model lives in the path.
func (g *GeminiProvider) BuildURL(baseURL, model string) string {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return fmt.Sprintf("%s/models/%s:generateContent", baseURL, model)
}

// SetHeaders adds the Gemini API key header.
func (g *GeminiProvider) SetHeaders(req *http.Request) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey != "" {
		req.Header.Set("x-goog-api-key", apiKey)
	}
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	ToolConfig        *geminiToolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []openAIFunction `json:"functionDeclarations"`
}

type geminiToolConfig struct {
	FunctionCallingConfig struct {
		Mode string `json:"mode"`
	} `json:"functionCallingConfig"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

// BuildRequestBody creates the Gemini request body.
// Assistant turns map to the "model" role; system messages become systemInstruction.
func (g *GeminiProvider) BuildRequestBody(_ string, messages []llm.Message, temperature *float64, maxTokens int,
	tools []llm.ToolDefinition, toolChoice string) ([]byte, error) {
	req := geminiRequest{}

	var system []geminiPart
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, geminiPart{Text: msg.Content})
		case "assistant":
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{Parts: system}
	}

	if temperature != nil || maxTokens > 0 {
		req.GenerationConfig = &geminiGenerationConfig{Temperature: temperature, MaxOutputTokens: maxTokens}
	}

	if len(tools) > 0 {
		decls := make([]openAIFunction, len(tools))
		for i, t := range tools {
			decls[i] = openAIFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
		}
		req.Tools = []geminiTool{{FunctionDeclarations: decls}}

		mode := ""
		switch toolChoice {
		case llm.ToolChoiceRequired:
			mode = "ANY"
		case llm.ToolChoiceNone:
			mode = "NONE"
		case llm.ToolChoiceAuto:
			mode = "AUTO"
		}
		if mode != "" {
			req.ToolConfig = &geminiToolConfig{}
			req.ToolConfig.FunctionCallingConfig.Mode = mode
		}
	}

	return json.Marshal(req)
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// ParseResponse extracts text parts and functionCall parts from the first candidate.
func (g *GeminiProvider) ParseResponse(body []byte, model string) (*llm.Response, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	var calls []llm.ToolCall
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			args, err := llm.DecodeArguments(part.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("functionCall %s: %w", part.FunctionCall.Name, err)
			}
			calls = append(calls, llm.ToolCall{Name: part.FunctionCall.Name, Arguments: args})
			continue
		}
		text.WriteString(part.Text)
	}

	modelName := resp.ModelVersion
	if modelName == "" {
		modelName = model
	}

	return &llm.Response{
		Content:   text.String(),
		ToolCalls: calls,
		Model:     modelName,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
		FinishReason: candidate.FinishReason,
	}, nil
}
