package providers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/c360studio/tripplanner/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProvider_BuildURL(t *testing.T) {
	p := &GeminiProvider{}

	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
		p.BuildURL("", "gemini-2.0-flash"))
	assert.Equal(t,
		"http://localhost:9000/v1beta/models/gemini-pro:generateContent",
		p.BuildURL("http://localhost:9000/v1beta/", "gemini-pro"))
}

func TestGeminiProvider_SetHeaders(t *testing.T) {
	p := &GeminiProvider{}

	t.Run("gemini key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")
		t.Setenv("GOOGLE_API_KEY", "other")
		req, _ := http.NewRequest(http.MethodPost, "http://example.com", nil)
		p.SetHeaders(req)
		assert.Equal(t, "g-key", req.Header.Get("x-goog-api-key"))
	})

	t.Run("google key fallback", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "google-key")
		req, _ := http.NewRequest(http.MethodPost, "http://example.com", nil)
		p.SetHeaders(req)
		assert.Equal(t, "google-key", req.Header.Get("x-goog-api-key"))
	})
}

func TestGeminiProvider_BuildRequestBody(t *testing.T) {
	p := &GeminiProvider{}

	messages := []llm.Message{
		{Role: "system", Content: "You are a travel planner."},
		{Role: "user", Content: "Plan a day in Kyoto"},
		{Role: "assistant", Content: "Sure."},
	}

	temp := 0.2
	body, err := p.BuildRequestBody("gemini-2.0-flash", messages, &temp, 1024, testTools, llm.ToolChoiceRequired)
	require.NoError(t, err)

	var decoded struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		SystemInstruction struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"systemInstruction"`
		Tools []struct {
			FunctionDeclarations []struct {
				Name string `json:"name"`
			} `json:"functionDeclarations"`
		} `json:"tools"`
		ToolConfig struct {
			FunctionCallingConfig struct {
				Mode string `json:"mode"`
			} `json:"functionCallingConfig"`
		} `json:"toolConfig"`
		GenerationConfig struct {
			Temperature     float64 `json:"temperature"`
			MaxOutputTokens int     `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))

	require.Len(t, decoded.Contents, 2)
	assert.Equal(t, "user", decoded.Contents[0].Role)
	assert.Equal(t, "model", decoded.Contents[1].Role)
	require.Len(t, decoded.SystemInstruction.Parts, 1)
	assert.Equal(t, "You are a travel planner.", decoded.SystemInstruction.Parts[0].Text)
	require.Len(t, decoded.Tools, 1)
	assert.Equal(t, "location", decoded.Tools[0].FunctionDeclarations[0].Name)
	assert.Equal(t, "ANY", decoded.ToolConfig.FunctionCallingConfig.Mode)
	assert.InDelta(t, 0.2, decoded.GenerationConfig.Temperature, 1e-9)
	assert.Equal(t, 1024, decoded.GenerationConfig.MaxOutputTokens)
}

func TestGeminiProvider_BuildRequestBody_Minimal(t *testing.T) {
	p := &GeminiProvider{}

	body, err := p.BuildRequestBody("gemini-pro", []llm.Message{{Role: "user", Content: "Hi"}}, nil, 0, nil, "")
	require.NoError(t, err)

	assert.NotContains(t, string(body), "generationConfig")
	assert.NotContains(t, string(body), "systemInstruction")
	assert.NotContains(t, string(body), "toolConfig")
}

func TestGeminiProvider_ParseResponse(t *testing.T) {
	p := &GeminiProvider{}

	responseBody := []byte(`{
		"candidates": [{
			"content": {
				"role": "model",
				"parts": [
					{"text": "Two stops."},
					{"functionCall": {"name": "location", "args": {"name": "Fushimi Inari", "lat": 34.9671, "lng": 135.7727, "sequence": 1}}}
				]
			},
			"finishReason": "STOP"
		}],
		"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 30, "totalTokenCount": 42}
	}`)

	resp, err := p.ParseResponse(responseBody, "gemini-2.0-flash")
	require.NoError(t, err)

	assert.Equal(t, "Two stops.", resp.Content)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "location", resp.ToolCalls[0].Name)
	assert.Equal(t, "Fushimi Inari", resp.ToolCalls[0].Arguments["name"])
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
}

func TestGeminiProvider_ParseResponse_NoCandidates(t *testing.T) {
	p := &GeminiProvider{}

	_, err := p.ParseResponse([]byte(`{"candidates": []}`), "gemini-pro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
