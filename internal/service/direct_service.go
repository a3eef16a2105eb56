package service

import (
	"context"
	"fmt"

	"ada-voice-go/pkg/bedrock"
	"ada-voice-go/pkg/log"
)

// directPromptTemplate 是不经检索的直接问答路径的人设前导。
const directPromptTemplate = `Your name is Ada, and you are a helpful assistant. Provide a concise answer to the question. If you don't know the answer, just say that you don't know, don't try to make up an answer.

Question: %s`

// DirectService 定义了不经检索的直接问答操作。
type DirectService interface {
	Answer(ctx context.Context, question string) (string, error)
}

type directService struct {
	bedrockClient bedrock.Client
}

// NewDirectService 创建一个新的 DirectService 实例。
func NewDirectService(bedrockClient bedrock.Client) DirectService {
	return &directService{bedrockClient: bedrockClient}
}

// Answer 直接以问题构建提示词并生成答案，不做检索。
func (s *directService) Answer(ctx context.Context, question string) (string, error) {
	log.Info("[DirectService] 发送提示词到 Bedrock (RAG 已禁用) ...")
	answer, err := s.bedrockClient.GenerateAnswer(ctx, fmt.Sprintf(directPromptTemplate, question))
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}
