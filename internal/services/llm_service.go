package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/rfp-manager/internal/dtos"
	"github.com/justsurfingit/rfp-manager/internal/extraction"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// maxPostingBytes caps what is sent to the model.
const maxPostingBytes = 20000

var ErrLLMDisabled = errors.New("no LLM configured")

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const rfpDraftPrompt = `
You are an assistant that prepares job requisitions (RFPs) for a consulting firm. Analyze the job posting below.

### INSTRUCTIONS:
1. Ignore navigation menus, footers, "similar jobs" lists and advertisements.
2. Keep the description in the language of the posting.
3. Output valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "role": "Job title (e.g., Senior Backend Engineer)",
    "company_name": "Hiring company",
    "company_city": "City of the assignment, or 'Remote'",
    "job_description": "The responsibilities and requirements, without HTML"
}

### CONSTRAINT:
If a piece of information is missing, use an empty string. Do not guess.

### POSTING:
%s
`

// DraftRFP asks the model to read role, company, city and description out of a posting.
func (s *LLMService) DraftRFP(ctx context.Context, rawHTML string) (*dtos.RFPDraft, error) {
	if s == nil || s.Client == nil {
		return nil, ErrLLMDisabled
	}

	posting := truncateUTF8(extraction.PlainText(rawHTML), maxPostingBytes)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(rfpDraftPrompt, posting))
	if err != nil {
		return nil, err
	}

	var draft dtos.RFPDraft
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &draft); err != nil {
		return nil, fmt.Errorf("LLM returned invalid JSON: %w", err)
	}
	return &draft, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add anyway.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
