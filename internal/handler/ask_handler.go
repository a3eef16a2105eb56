// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"context"
	"errors"
	"net/http"

	"ada-voice-go/internal/config"
	"ada-voice-go/internal/model"
	"ada-voice-go/internal/service"
	"ada-voice-go/pkg/log"
	"ada-voice-go/pkg/opensearch"

	"github.com/gin-gonic/gin"
)

// indexUnavailableMessage 提示运维人员先完成 RAG 数据摄取。
const indexUnavailableMessage = "The vector store is not yet hydrated, and cannot be queried for context. Please contact your System Administrator to ingest RAG data."

// AskHandler 负责处理问答相关的 API 请求。
type AskHandler struct {
	ragService    service.RagService
	directService service.DirectService
	speechService service.SpeechService
}

// NewAskHandler 创建一个新的 AskHandler 实例。
func NewAskHandler(ragService service.RagService, directService service.DirectService, speechService service.SpeechService) *AskHandler {
	return &AskHandler{
		ragService:    ragService,
		directService: directService,
		speechService: speechService,
	}
}

// Ask 处理检索增强问答请求。
func (h *AskHandler) Ask(c *gin.Context) {
	h.handle(c, h.ragService.Answer)
}

// AskDirect 处理不经检索的直接问答请求。
func (h *AskHandler) AskDirect(c *gin.Context) {
	h.handle(c, h.directService.Answer)
}

// handle 校验请求、执行问答管道并合成语音。
// 校验失败时不发起任何远程调用；语音合成失败不影响文本答案的返回。
func (h *AskHandler) handle(c *gin.Context, answer func(ctx context.Context, question string) (string, error)) {
	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[AskHandler] 无效的请求负载: %v", err)
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Status:  "error",
			Message: "question missing in request payload",
		})
		return
	}
	if req.Question == "" {
		log.Warnf("[AskHandler] 请求缺少 question 字段")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Status:  "error",
			Message: "question missing in request payload",
		})
		return
	}

	// voice_id 或 voice_engine 未指定时使用默认值
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = config.Conf.Polly.VoiceID
	}
	voiceEngine := req.VoiceEngine
	if voiceEngine == "" {
		voiceEngine = config.Conf.Polly.VoiceEngine
	}
	log.Infof("[AskHandler] Question: %s", req.Question)
	log.Infof("[AskHandler] Voice ID: %s, Voice Engine: %s", voiceID, voiceEngine)

	answerText, err := answer(c.Request.Context(), req.Question)
	if err != nil {
		log.Errorf("[AskHandler] 问答管道失败: %v", err)
		status, message := mapPipelineError(err)
		c.JSON(status, model.ErrorResponse{Status: "error", Message: message})
		return
	}

	speechInfo := h.speechService.Synthesize(c.Request.Context(), answerText, voiceID, voiceEngine)
	c.JSON(http.StatusOK, model.AskResponse{
		Response:   answerText,
		SpeechInfo: speechInfo,
	})
}

// mapPipelineError 将管道错误映射为对外的状态码与消息。
func mapPipelineError(err error) (int, string) {
	switch {
	case errors.Is(err, opensearch.ErrIndexUnavailable):
		return http.StatusServiceUnavailable, indexUnavailableMessage
	case errors.Is(err, service.ErrNoContext):
		return http.StatusInternalServerError, "No relevant context was found in the vector store for this question."
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
