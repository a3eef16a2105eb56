package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"ada-voice-go/internal/model"
	"ada-voice-go/pkg/log"
	"ada-voice-go/pkg/polly"
)

// SpeechService 将答案文本合成为音频与 viseme 时间数据。
type SpeechService interface {
	Synthesize(ctx context.Context, text, voiceID, engine string) model.SpeechInfo
}

type speechService struct {
	pollyClient polly.Client
}

// NewSpeechService 创建一个新的 SpeechService 实例。
func NewSpeechService(pollyClient polly.Client) SpeechService {
	return &speechService{pollyClient: pollyClient}
}

// Synthesize 独立合成音频与 viseme 两个通道。
// 任一通道失败只在对应通道的结果中上报，不影响另一通道，也不影响文本答案的返回。
func (s *speechService) Synthesize(ctx context.Context, text, voiceID, engine string) model.SpeechInfo {
	var info model.SpeechInfo

	audio, err := s.pollyClient.SynthesizeAudio(ctx, text, voiceID, engine)
	if err != nil {
		log.Errorf("[SpeechService] 音频合成失败: %v", err)
		info.SoundStatus = "error"
		info.SoundError = fmt.Sprintf("audio synthesis failed: %v", err)
	} else {
		info.SoundStatus = "ok"
		info.SoundResponse = base64.StdEncoding.EncodeToString(audio)
	}

	visemes, err := s.pollyClient.SynthesizeVisemes(ctx, text, voiceID, engine)
	if err != nil {
		log.Errorf("[SpeechService] Viseme 合成失败: %v", err)
		info.VisemeStatus = "error"
		info.VisemeError = fmt.Sprintf("viseme synthesis failed: %v", err)
	} else {
		info.VisemeStatus = "ok"
		info.VisemeResponse = base64.StdEncoding.EncodeToString(visemes)
	}

	return info
}
