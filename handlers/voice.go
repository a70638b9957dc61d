// File: handlers/voice.go
package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"medivoice/services/dialog"
	"medivoice/services/speech"
	"medivoice/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// An upload smaller than this cannot contain speech; such turns are
// treated as session-init pings from the client.
const tinyUploadBytes = 600

const headerCap = 4000

// VoiceHandler serves one conversational turn: speech in, speech out,
// with the dialog metadata carried in response headers.
type VoiceHandler struct {
	Processor    dialog.TurnProcessor
	Transcriber  speech.Transcriber
	Synthesizer  speech.Synthesizer
	TempAudioDir string
	STTTimeout   time.Duration
	TTSTimeout   time.Duration
	Logger       *zap.Logger
}

func NewVoiceHandler(
	processor dialog.TurnProcessor,
	transcriber speech.Transcriber,
	synthesizer speech.Synthesizer,
	tempAudioDir string,
	sttTimeout, ttsTimeout time.Duration,
	logger *zap.Logger,
) *VoiceHandler {
	return &VoiceHandler{
		Processor:    processor,
		Transcriber:  transcriber,
		Synthesizer:  synthesizer,
		TempAudioDir: tempAudioDir,
		STTTimeout:   sttTimeout,
		TTSTimeout:   ttsTimeout,
		Logger:       logger,
	}
}

// ProcessTurnHandler handles POST /api/voice/process: STT, one turn of the
// intake state machine, TTS, and an MP3 reply with out-of-band fields in
// X- headers.
func (h *VoiceHandler) ProcessTurnHandler(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "session_id is required", "")
		return
	}
	initFlag := c.PostForm("init") == "1"

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.TempAudioDir, 0o755); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to prepare temp dir", err.Error())
		return
	}
	inputPath := filepath.Join(h.TempAudioDir, uuid.New().String()+filepath.Ext(header.Filename))
	out, err := os.Create(inputPath)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save audio file", err.Error())
		return
	}
	size, err := io.Copy(out, io.LimitReader(file, speech.MaxFileSize))
	out.Close()
	defer os.Remove(inputPath)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save audio file", err.Error())
		return
	}

	initTurn := initFlag || size < tinyUploadBytes

	userText := ""
	if !initTurn {
		userText, err = h.transcribe(c.Request.Context(), inputPath)
		if err != nil {
			h.Logger.Error("transcription failed", zap.String("sessionId", sessionID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError,
				"Sorry, I couldn't hear that. Please try again.", err.Error())
			return
		}
	}

	result, err := h.Processor.ProcessTurn(c.Request.Context(), sessionID, userText, initTurn)
	if err != nil {
		h.Logger.Error("turn processing failed", zap.String("sessionId", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError,
			"Sorry, something went wrong. Please try again.", err.Error())
		return
	}

	ttsCtx := c.Request.Context()
	if h.TTSTimeout > 0 {
		var cancel context.CancelFunc
		ttsCtx, cancel = context.WithTimeout(ttsCtx, h.TTSTimeout)
		defer cancel()
	}
	audioPath, err := h.Synthesizer.Synthesize(ttsCtx, result.BotText)
	if err != nil {
		h.Logger.Error("synthesis failed", zap.String("sessionId", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError,
			"Sorry, I couldn't respond just now. Please try again.", err.Error())
		return
	}

	sessionEnded := "0"
	if result.SessionEnded {
		sessionEnded = "1"
	}
	c.Header("X-User-Transcript", truncate(url.PathEscape(userText), headerCap))
	c.Header("X-Bot-Text", truncate(url.PathEscape(result.BotText), headerCap))
	c.Header("X-Agent-State", url.PathEscape(string(result.Step)))
	if result.CalendarError != "" {
		c.Header("X-Calendar-Error", truncate(url.PathEscape(result.CalendarError), headerCap))
	}
	c.Header("X-Session-Ended", sessionEnded)
	c.Header("Access-Control-Expose-Headers",
		"X-User-Transcript, X-Bot-Text, X-Agent-State, X-Calendar-Error, X-Session-Ended")

	c.File(audioPath)
}

// transcribe converts the uploaded container to LINEAR16 WAV and runs
// recognition, bounded by the configured timeout.
func (h *VoiceHandler) transcribe(ctx context.Context, inputPath string) (string, error) {
	convertedPath := inputPath + ".converted.wav"
	if err := speech.ConvertAudio(inputPath, convertedPath); err != nil {
		return "", err
	}
	defer os.Remove(convertedPath)

	audio, err := os.ReadFile(convertedPath)
	if err != nil {
		return "", err
	}

	if h.STTTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.STTTimeout)
		defer cancel()
	}
	return h.Transcriber.Transcribe(ctx, audio)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
