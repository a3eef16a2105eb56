// Package model 定义了请求、响应与检索相关的数据结构。
package model

// AskRequest 定义了问答 API 的请求体结构。
// voice_id 与 voice_engine 未指定时由 handler 填入默认值。
type AskRequest struct {
	Question    string `json:"question"`
	VoiceID     string `json:"voice_id"`
	VoiceEngine string `json:"voice_engine"`
}

// AskResponse 定义了问答成功时的响应体结构。
type AskResponse struct {
	Response   string     `json:"response"`
	SpeechInfo SpeechInfo `json:"speech_info"`
}

// ErrorResponse 定义了校验或管道失败时的响应体结构。
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SpeechInfo 按音频与 viseme 两个通道独立上报语音合成结果。
// 每个通道要么给出 *_status=ok 与 base64 负载，要么给出 *_status=error 与错误消息。
type SpeechInfo struct {
	SoundStatus    string `json:"sound_status,omitempty"`
	SoundResponse  string `json:"sound_response,omitempty"`
	SoundError     string `json:"sound_error,omitempty"`
	VisemeStatus   string `json:"viseme_status,omitempty"`
	VisemeResponse string `json:"viseme_response,omitempty"`
	VisemeError    string `json:"viseme_error,omitempty"`
}

// Credentials 是向量索引的访问凭证。
// 仅在单个请求内存活，绝不写入日志。
type Credentials struct {
	Username string
	Password string
}

// SearchHit 是一条 k-NN 检索命中，按相关性降序排列。
type SearchHit struct {
	Score    float64
	FileName string
	Passage  string
}
