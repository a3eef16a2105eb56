// Package service 包含了问答管道的业务逻辑层。
package service

import (
	"context"
	"fmt"

	"ada-voice-go/internal/config"
	"ada-voice-go/internal/model"
	"ada-voice-go/pkg/bedrock"
	"ada-voice-go/pkg/log"
	"ada-voice-go/pkg/opensearch"
	"ada-voice-go/pkg/secrets"
)

// 固定检索 Top 3 命中，仅取最高分的一条作为上下文。
const searchTopK = 3

// ragPromptTemplate 是 RAG 路径的人设前导与上下文包裹格式。
// 角色定界标记由 bedrock 客户端按模型协议族补齐。
const ragPromptTemplate = `Your name is Ada, and you are a helpful assistant, helping a Human answer questions with the tone of a stereotypical pirate. Use the following as additional context to provide a concise answer to the question at the end, but don't say that you're using additional context.

<reference>
%s
</reference>

Question: %s`

// RagService 定义了检索增强问答操作。
type RagService interface {
	Answer(ctx context.Context, question string) (string, error)
}

// IndexFactory 使用本次请求解析到的凭证构建向量索引客户端。
type IndexFactory func(creds model.Credentials) (opensearch.Index, error)

type ragService struct {
	resolver      secrets.Resolver
	bedrockClient bedrock.Client
	newIndex      IndexFactory
	secretID      string
}

// NewRagService 创建一个新的 RagService 实例。
func NewRagService(resolver secrets.Resolver, bedrockClient bedrock.Client, newIndex IndexFactory, osCfg config.OpenSearchConfig) RagService {
	return &ragService{
		resolver:      resolver,
		bedrockClient: bedrockClient,
		newIndex:      newIndex,
		secretID:      osCfg.SecretID,
	}
}

// Answer 执行完整的检索增强问答管道。
// 各步骤严格顺序执行，任一步骤失败即终止后续步骤。
func (s *ragService) Answer(ctx context.Context, question string) (string, error) {
	// 1. 解析索引凭证。每个请求独立解析，不做跨请求缓存。
	log.Info("[RagService] 步骤1: 获取 OpenSearch 凭证 ...")
	creds, err := s.resolver.GetIndexCredentials(ctx, s.secretID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve index credentials: %w", err)
	}

	// 2. 校验索引存在。索引未就绪时绝不发起检索。
	log.Info("[RagService] 步骤2: 校验向量索引是否存在 ...")
	index, err := s.newIndex(creds)
	if err != nil {
		return "", fmt.Errorf("failed to create index client: %w", err)
	}
	if err := index.VerifyIndex(ctx); err != nil {
		return "", err
	}

	// 3. 向量化问题
	log.Info("[RagService] 步骤3: 向量化问题 ...")
	vector, err := s.bedrockClient.CreateEmbedding(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	// 4. k-NN 检索
	log.Infof("[RagService] 步骤4: 从向量索引检索 Top %d 命中 ...", searchTopK)
	hits, err := index.KnnSearch(ctx, vector, searchTopK)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve context: %w", err)
	}
	for _, hit := range hits {
		log.Infof("[RagService] Score: %f | Document: %s | Passage: %s", hit.Score, hit.FileName, hit.Passage)
	}

	// 5. 选取最高分命中作为上下文。零命中是错误而非空上下文。
	if len(hits) == 0 {
		log.Warnf("[RagService] 检索返回 0 条命中, 无法构建上下文")
		return "", ErrNoContext
	}
	contextPassage := hits[0].Passage

	// 6. 组装提示词并生成答案
	log.Info("[RagService] 步骤5: 发送提示词到 Bedrock (携带检索上下文) ...")
	prompt := fmt.Sprintf(ragPromptTemplate, contextPassage, question)
	answer, err := s.bedrockClient.GenerateAnswer(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}
