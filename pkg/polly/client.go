// Package polly 提供了语音合成客户端，输出 PCM 音频与 viseme 时间标记。
package polly

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awspolly "github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// Client defines the interface for a speech synthesis client.
type Client interface {
	// SynthesizeAudio 合成 1 声道 16-bit 16kHz 的 PCM 音频。
	SynthesizeAudio(ctx context.Context, text, voiceID, engine string) ([]byte, error)
	// SynthesizeVisemes 合成 viseme 时间标记（JSON lines 格式）。
	SynthesizeVisemes(ctx context.Context, text, voiceID, engine string) ([]byte, error)
}

// api 是本包对 Polly SDK 的最小依赖面。
type api interface {
	SynthesizeSpeech(ctx context.Context, params *awspolly.SynthesizeSpeechInput, optFns ...func(*awspolly.Options)) (*awspolly.SynthesizeSpeechOutput, error)
}

type client struct {
	polly api
}

// NewClient creates a new Polly client from the shared AWS config.
func NewClient(awsCfg aws.Config) Client {
	return &client{polly: awspolly.NewFromConfig(awsCfg)}
}

func (c *client) SynthesizeAudio(ctx context.Context, text, voiceID, engine string) ([]byte, error) {
	out, err := c.polly.SynthesizeSpeech(ctx, &awspolly.SynthesizeSpeechInput{
		OutputFormat: types.OutputFormatPcm,
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voiceID),
		Engine:       types.Engine(engine),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize audio: %w", err)
	}
	defer out.AudioStream.Close()

	data, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", err)
	}
	return data, nil
}

func (c *client) SynthesizeVisemes(ctx context.Context, text, voiceID, engine string) ([]byte, error) {
	out, err := c.polly.SynthesizeSpeech(ctx, &awspolly.SynthesizeSpeechInput{
		OutputFormat:    types.OutputFormatJson,
		SpeechMarkTypes: []types.SpeechMarkType{types.SpeechMarkTypeViseme},
		Text:            aws.String(text),
		VoiceId:         types.VoiceId(voiceID),
		Engine:          types.Engine(engine),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize visemes: %w", err)
	}
	defer out.AudioStream.Close()

	data, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read viseme stream: %w", err)
	}
	return data, nil
}
