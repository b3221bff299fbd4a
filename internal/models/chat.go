package models

import "time"

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerUser      SpeakerRole = "user"      // 用户角色。
	SpeakerAssistant SpeakerRole = "assistant" // 助手角色。
)

// ChatMessage 是会话消息日志中的一条记录。
type ChatMessage struct {
	Role      SpeakerRole `json:"role" bson:"role"`
	Content   string      `json:"content" bson:"content"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
}

// ChatSession 表示一次有状态的多轮对话。DocumentID 为 nil 时是
// 不绑定文档的通用会话。Messages 是仅追加的日志：消息只会按时间
// 顺序追加，绝不会被删除或重排。
type ChatSession struct {
	SessionID  string        `json:"session_id" bson:"_id"`
	DocumentID *string       `json:"document_id,omitempty" bson:"document_id,omitempty"`
	Messages   []ChatMessage `json:"messages" bson:"messages"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" bson:"updated_at"`
}

// IntentKind 是问题分类结果的封闭变体集合。新增意图时必须同时扩展
// 调度逻辑中的分支，保持映射的完备性。
type IntentKind string

const (
	IntentIdentifierLookupSpecific IntentKind = "identifier_lookup_specific" // 查询某个具体证券的标识符。
	IntentIdentifierLookupGeneral  IntentKind = "identifier_lookup_general"  // 泛泛地查询所有标识符。
	IntentTabularLookup            IntentKind = "tabular_lookup"             // 查询表格类数值字段。
	IntentUnrecognized             IntentKind = "unrecognized"               // 无法识别，交给兜底处理。
)

// Intent 是意图分类的结果。TargetHint 携带从问题中截取的目标名称
// 片段（例如 "for" 之后的证券名）。
type Intent struct {
	Kind       IntentKind `json:"kind"`
	TargetHint string     `json:"target_hint,omitempty"`
}

// Answer 是查询处理器的输出：答案文本加上命中的证券列表。
// "未找到" 也是一个正常的 Answer，绝不是错误。
type Answer struct {
	Text              string     `json:"text"`
	MatchedSecurities []Security `json:"matched_securities,omitempty"`
	Provider          string     `json:"provider"`
}

// ChatResult 是一次提问的完整返回，包含会话句柄以便继续多轮对话。
// Provider 标识产生本次回答的处理器或外部能力，仅用于观测。
type ChatResult struct {
	Message   string `json:"message"`
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Provider  string `json:"provider"`
}

// GenerateContentRequest 定义了向对话能力发送的请求结构。
type GenerateContentRequest struct {
	Content []Content `json:"content,omitempty"`
}

// GenerateContentResponse 定义了对话能力返回的响应结构。
type GenerateContentResponse struct {
	Content    []Content `json:"content,omitempty"`
	CreateTime time.Time `json:"createTime,omitempty"`
}

// Content 包含了构成单个消息的多个部分。
type Content struct {
	Parts []*Part     `json:"parts,omitempty"`
	Role  SpeakerRole `json:"role,omitempty"`
}

// Part 定义了消息的单个部分。本服务只使用文本部分。
type Part struct {
	Text string `json:"text,omitempty"`
}
