// Package opensearch 提供了与 OpenSearch 向量索引交互的客户端。
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ada-voice-go/internal/model"
	"ada-voice-go/pkg/log"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
)

// ErrIndexUnavailable 表示索引存在性探测失败，检索不可继续。
var ErrIndexUnavailable = errors.New("embedding index unavailable")

// 索引探测与检索调用的超时上限。
const (
	probeTimeout  = 10 * time.Second
	searchTimeout = 10 * time.Second
)

// Index 定义了问答管道所需的向量索引操作。
type Index interface {
	// VerifyIndex 以 HEAD 方式探测索引是否存在，是发起检索前的硬性前置条件。
	VerifyIndex(ctx context.Context) error
	// KnnSearch 以查询向量发起 k-NN 检索，返回按相关性降序排列的命中。
	KnnSearch(ctx context.Context, vector []float32, k int) ([]model.SearchHit, error)
}

type indexClient struct {
	client    *opensearchgo.Client
	indexName string
}

// NewIndex 使用索引端点与本次请求解析到的凭证构建索引客户端。
func NewIndex(endpoint, indexName string, creds model.Credentials) (Index, error) {
	client, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: []string{normalizeEndpoint(endpoint)},
		Username:  creds.Username,
		Password:  creds.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}
	return &indexClient{client: client, indexName: indexName}, nil
}

// normalizeEndpoint 为缺少协议前缀的端点补上 https://。
func normalizeEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "https://" + endpoint
}

// VerifyIndex 探测索引是否存在。非 200 状态一律视为索引未就绪。
func (c *indexClient) VerifyIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	res, err := c.client.Indices.Exists(
		[]string{c.indexName},
		c.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to probe index %q: %w", c.indexName, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.Warnf("[IndexClient] 索引 '%s' 不可用, status: %d, 需要先完成 RAG 数据摄取", c.indexName, res.StatusCode)
		return ErrIndexUnavailable
	}
	return nil
}

// KnnSearch 对索引的 vector_field 字段发起 k-NN 查询。
// 固定请求配置的 k 条结果，不做分页，也不做分数阈值过滤。
func (c *indexClient) KnnSearch(ctx context.Context, vector []float32, k int) ([]model.SearchHit, error) {
	searchQuery := map[string]interface{}{
		"size": k,
		"query": map[string]interface{}{
			"knn": map[string]interface{}{
				"vector_field": map[string]interface{}{
					"vector": vector,
					"k":      k,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery); err != nil {
		return nil, fmt.Errorf("failed to encode knn query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.indexName),
		c.client.Search.WithBody(&buf),
	)
	if err != nil {
		log.Errorf("[IndexClient] 向 OpenSearch 发送检索请求失败: %v", err)
		return nil, fmt.Errorf("opensearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[IndexClient] OpenSearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("opensearch returned an error: %s", res.Status())
	}

	var searchResponse struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					FileName string `json:"file_name"`
					Passage  string `json:"passage"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResponse); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]model.SearchHit, 0, len(searchResponse.Hits.Hits))
	for _, h := range searchResponse.Hits.Hits {
		hits = append(hits, model.SearchHit{
			Score:    h.Score,
			FileName: h.Source.FileName,
			Passage:  h.Source.Passage,
		})
	}
	log.Infof("[IndexClient] OpenSearch 返回 %d 条命中", len(hits))
	return hits, nil
}
