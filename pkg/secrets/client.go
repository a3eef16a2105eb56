// Package secrets 提供了从 AWS Secrets Manager 解析索引凭证的客户端。
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"ada-voice-go/internal/model"
	"ada-voice-go/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Resolver defines the interface for resolving index credentials.
type Resolver interface {
	GetIndexCredentials(ctx context.Context, secretID string) (model.Credentials, error)
}

// api 是本包对 Secrets Manager SDK 的最小依赖面。
type api interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type client struct {
	sm api
}

// NewResolver creates a new credential resolver backed by Secrets Manager.
func NewResolver(cfg aws.Config) Resolver {
	return &client{sm: secretsmanager.NewFromConfig(cfg)}
}

// secretPayload 对应 Secret 中存储的 JSON 结构。
type secretPayload struct {
	Username string `json:"USERNAME"`
	Password string `json:"PASSWORD"`
}

// GetIndexCredentials 解析指定 Secret 中的用户名与密码。
// 凭证每个请求独立解析，失败即终止本次请求，不做内部重试。
func (c *client) GetIndexCredentials(ctx context.Context, secretID string) (model.Credentials, error) {
	out, err := c.sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		log.Errorf("[SecretsClient] 获取 Secret '%s' 失败: %v", secretID, err)
		return model.Credentials{}, fmt.Errorf("failed to get secret value: %w", err)
	}
	if out.SecretString == nil {
		return model.Credentials{}, fmt.Errorf("secret %q has no string payload", secretID)
	}

	var payload secretPayload
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return model.Credentials{}, fmt.Errorf("failed to decode secret payload: %w", err)
	}
	if payload.Username == "" || payload.Password == "" {
		return model.Credentials{}, fmt.Errorf("secret %q is missing USERNAME or PASSWORD", secretID)
	}

	log.Infof("[SecretsClient] 成功解析 Secret '%s' 中的索引凭证", secretID)
	return model.Credentials{Username: payload.Username, Password: payload.Password}, nil
}
