// File: services/nlp/gemini.go
package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"medivoice/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// FieldExtractor is the gap-filling text-understanding capability: given
// free text and the already-known slots, return any additional slot values.
// Implementations must treat the supplied today date as the anchor for
// relative phrases and must never invent a date the user did not mention.
type FieldExtractor interface {
	Extract(ctx context.Context, utterance string, captured models.CapturedFields, today string) (Fields, error)
}

// GeminiExtractor implements FieldExtractor on top of the Gemini API.
type GeminiExtractor struct {
	model *genai.GenerativeModel
}

func NewGeminiExtractor(ctx context.Context, apiKey string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	return &GeminiExtractor{model: model}, nil
}

// llmFields mirrors the JSON contract; pointers distinguish null from "".
type llmFields struct {
	PatientName     *string `json:"patient_name"`
	PatientEmail    *string `json:"patient_email"`
	AppointmentDate *string `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time"`
	Reason          *string `json:"reason"`
}

func (g *GeminiExtractor) Extract(ctx context.Context, utterance string, captured models.CapturedFields, today string) (Fields, error) {
	capturedJSON, err := json.Marshal(captured)
	if err != nil {
		return Fields{}, fmt.Errorf("marshal captured slots: %w", err)
	}

	prompt := fmt.Sprintf(
		"Extract fields for a medical appointment from the user's English text. "+
			"Return JSON only with keys: patient_name, patient_email, appointment_date, appointment_time, reason.\n"+
			"Rules:\n"+
			"- Normalize spoken emails like 'john at gmail dot com' -> 'john@gmail.com'; remove spaces.\n"+
			"- TODAY is %s. Resolve 'tomorrow', 'this Friday', 'next Monday' as future dates (YYYY-MM-DD).\n"+
			"- For times like '2 pm' or '14:30', output 24h 'HH:MM'.\n"+
			"- If a field is unknown, set it to null.\n"+
			"- Do not infer a date if the user didn't mention any date.\n\n"+
			"User text: %s\nAlready captured: %s",
		today, utterance, capturedJSON,
	)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Fields{}, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Fields{}, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	var raw llmFields
	if err := json.Unmarshal([]byte(sb.String()), &raw); err != nil {
		return Fields{}, fmt.Errorf("gemini returned malformed JSON: %w", err)
	}

	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.TrimSpace(*p)
	}
	return Fields{
		PatientName:     deref(raw.PatientName),
		PatientEmail:    deref(raw.PatientEmail),
		AppointmentDate: deref(raw.AppointmentDate),
		AppointmentTime: deref(raw.AppointmentTime),
		Reason:          deref(raw.Reason),
	}, nil
}
