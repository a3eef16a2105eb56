package service

import "errors"

// ErrNoContext 表示检索返回了零条命中，无法选取上下文。
// 空命中是错误而不是空上下文，handler 据此返回结构化错误响应。
var ErrNoContext = errors.New("no relevant context was found in the vector store")
