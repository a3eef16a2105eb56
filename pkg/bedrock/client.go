// Package bedrock provides a client for invoking Bedrock embedding and text models.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ada-voice-go/internal/config"
	"ada-voice-go/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// ModelFamily 标识文本模型的请求/响应协议族。
type ModelFamily string

const (
	// FamilyCompletion 使用 prompt/completion 协议（Claude 2 一代）。
	FamilyCompletion ModelFamily = "completion"
	// FamilyMessages 使用 messages/content 协议（Claude 3 及之后）。
	FamilyMessages ModelFamily = "messages"
)

const (
	anthropicVersion    = "bedrock-2023-05-31"
	completionMaxTokens = 200
	messagesMaxTokens   = 300
)

// ResolveFamily 解析配置的模型协议族；未配置时根据模型 ID 推断。
func ResolveFamily(configured, modelID string) ModelFamily {
	switch strings.ToLower(configured) {
	case string(FamilyCompletion):
		return FamilyCompletion
	case string(FamilyMessages):
		return FamilyMessages
	}
	// claude-3 起只支持 messages 协议
	if strings.Contains(modelID, "claude-3") {
		return FamilyMessages
	}
	return FamilyCompletion
}

// Client defines the interface for a Bedrock model client.
type Client interface {
	// CreateEmbedding 调用 Embedding 模型，将文本转换为向量。
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	// GenerateAnswer 调用文本模型生成答案，按模型协议族补齐角色定界标记。
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// api 是本包对 Bedrock Runtime SDK 的最小依赖面。
type api interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type client struct {
	runtime          api
	textModelID      string
	embeddingModelID string
	family           ModelFamily
}

// NewClient creates a new Bedrock client from the shared AWS config.
func NewClient(awsCfg aws.Config, cfg config.BedrockConfig) Client {
	return &client{
		runtime:          bedrockruntime.NewFromConfig(awsCfg),
		textModelID:      cfg.TextModelID,
		embeddingModelID: cfg.EmbeddingModelID,
		family:           ResolveFamily(cfg.TextModelFamily, cfg.TextModelID),
	}
}

type embeddingRequest struct {
	InputText string `json:"inputText"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// CreateEmbedding 调用 Embedding 模型获取文本的向量表示。
func (c *client) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	out, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.embeddingModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		log.Errorf("[BedrockClient] 调用 Embedding 模型 '%s' 失败: %v", c.embeddingModelID, err)
		return nil, fmt.Errorf("failed to invoke embedding model: %w", err)
	}

	var resp embeddingResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding from model %q", c.embeddingModelID)
	}

	log.Infof("[BedrockClient] 成功获取向量, 维度: %d", len(resp.Embedding))
	return resp.Embedding, nil
}

type completionRequest struct {
	Prompt            string `json:"prompt"`
	MaxTokensToSample int    `json:"max_tokens_to_sample"`
	AnthropicVersion  string `json:"anthropic_version"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	AnthropicVersion string        `json:"anthropic_version"`
	MaxTokens        int           `json:"max_tokens"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	TopK             int           `json:"top_k"`
	TopP             float64       `json:"top_p"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// GenerateAnswer 调用文本模型并提取生成的答案。
// 请求体与答案字段的位置由模型协议族决定，两种协议互不混用。
func (c *client) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	var body []byte
	var err error
	switch c.family {
	case FamilyMessages:
		body, err = json.Marshal(messagesRequest{
			AnthropicVersion: anthropicVersion,
			MaxTokens:        messagesMaxTokens,
			Messages:         []chatMessage{{Role: "user", Content: prompt}},
			Temperature:      0.5,
			TopK:             250,
			TopP:             1,
		})
	default:
		body, err = json.Marshal(completionRequest{
			Prompt:            "\n\nHuman: " + prompt + "\n\nAssistant:",
			MaxTokensToSample: completionMaxTokens,
			AnthropicVersion:  anthropicVersion,
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	out, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.textModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		log.Errorf("[BedrockClient] 调用文本模型 '%s' 失败: %v", c.textModelID, err)
		return "", fmt.Errorf("failed to invoke text model: %w", err)
	}

	answer, err := c.extractAnswer(out.Body)
	if err != nil {
		log.Errorf("[BedrockClient] 文本模型响应形状异常: %v", err)
		return "", err
	}
	log.Infof("[BedrockClient] 模型返回答案: %s", answer)
	return answer, nil
}

// extractAnswer 按协议族从响应体中提取答案文本。
func (c *client) extractAnswer(body []byte) (string, error) {
	switch c.family {
	case FamilyMessages:
		var resp messagesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode messages response: %w", err)
		}
		if len(resp.Content) == 0 || resp.Content[0].Text == "" {
			return "", fmt.Errorf("text model returned no message content")
		}
		return resp.Content[0].Text, nil
	default:
		var resp completionResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode completion response: %w", err)
		}
		if resp.Completion == "" {
			return "", fmt.Errorf("text model returned an empty completion")
		}
		return resp.Completion, nil
	}
}
