package polly

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awspolly "github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

type fakePollyAPI struct {
	audio     []byte
	err       error
	lastInput *awspolly.SynthesizeSpeechInput
}

func (f *fakePollyAPI) SynthesizeSpeech(ctx context.Context, params *awspolly.SynthesizeSpeechInput, optFns ...func(*awspolly.Options)) (*awspolly.SynthesizeSpeechOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &awspolly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(bytes.NewReader(f.audio))}, nil
}

func TestSynthesizeAudio(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03}
	api := &fakePollyAPI{audio: pcm}
	c := &client{polly: api}

	data, err := c.SynthesizeAudio(context.Background(), "hello", "Ruth", "neural")
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if !bytes.Equal(data, pcm) {
		t.Errorf("unexpected audio bytes: %v", data)
	}

	if api.lastInput.OutputFormat != types.OutputFormatPcm {
		t.Errorf("unexpected output format: %v", api.lastInput.OutputFormat)
	}
	if aws.ToString(api.lastInput.Text) != "hello" {
		t.Errorf("unexpected text: %v", api.lastInput.Text)
	}
	if api.lastInput.VoiceId != types.VoiceId("Ruth") || api.lastInput.Engine != types.Engine("neural") {
		t.Errorf("unexpected voice parameters: %v / %v", api.lastInput.VoiceId, api.lastInput.Engine)
	}
	if len(api.lastInput.SpeechMarkTypes) != 0 {
		t.Error("audio synthesis must not request speech marks")
	}
}

func TestSynthesizeVisemes(t *testing.T) {
	marks := []byte(`{"time":6,"type":"viseme","value":"p"}`)
	api := &fakePollyAPI{audio: marks}
	c := &client{polly: api}

	data, err := c.SynthesizeVisemes(context.Background(), "hello", "Ruth", "neural")
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if !bytes.Equal(data, marks) {
		t.Errorf("unexpected viseme bytes: %v", data)
	}

	if api.lastInput.OutputFormat != types.OutputFormatJson {
		t.Errorf("unexpected output format: %v", api.lastInput.OutputFormat)
	}
	if len(api.lastInput.SpeechMarkTypes) != 1 || api.lastInput.SpeechMarkTypes[0] != types.SpeechMarkTypeViseme {
		t.Errorf("unexpected speech mark types: %v", api.lastInput.SpeechMarkTypes)
	}
}

func TestSynthesize_ServiceError(t *testing.T) {
	c := &client{polly: &fakePollyAPI{err: errors.New("InvalidVoiceId")}}
	if _, err := c.SynthesizeAudio(context.Background(), "hi", "NoSuchVoice", "neural"); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := c.SynthesizeVisemes(context.Background(), "hi", "NoSuchVoice", "neural"); err == nil {
		t.Fatal("expected an error")
	}
}
