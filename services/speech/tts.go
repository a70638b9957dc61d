package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/google/uuid"
	"google.golang.org/api/option"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// Synthesizer turns reply text into a playable audio file and returns
// its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// GoogleSynthesizer implements Synthesizer using Google Cloud
// Text-to-Speech, writing MP3 files into a spool directory.
type GoogleSynthesizer struct {
	client   *texttospeech.Client
	language string
	voice    string
	outDir   string
}

func NewGoogleSynthesizer(ctx context.Context, credentialsFile, language, voice, outDir string) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text-to-speech client: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tts spool dir: %w", err)
	}
	return &GoogleSynthesizer{client: client, language: language, voice: voice, outDir: outDir}, nil
}

func (s *GoogleSynthesizer) Close() error {
	return s.client.Close()
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.language,
			Name:         s.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech synthesis failed: %w", err)
	}

	outPath := filepath.Join(s.outDir, fmt.Sprintf("response_%s.mp3", uuid.New().String()))
	if err := os.WriteFile(outPath, resp.AudioContent, 0o644); err != nil {
		return "", fmt.Errorf("failed to write synthesized audio: %w", err)
	}
	return outPath, nil
}
