package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// RequestID 触发事件的 HTTP 请求 ID.
	RequestID string `json:"request_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识一个文件记录及其存储对象.
type FileRef struct {
	FileID      uint   `json:"file_id"`
	ProjectID   uint   `json:"project_id"`
	ObjectName  string `json:"object_name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
}

// ProjectCreatedPayload 项目创建.
type ProjectCreatedPayload struct {
	ProjectID uint     `json:"project_id"`
	UserID    uint     `json:"user_id"`
	Name      string   `json:"name"`
	File      *FileRef `json:"file,omitempty"`
}

// ProjectRenamedPayload 项目重命名，Affected 为 0 表示项目不存在.
type ProjectRenamedPayload struct {
	ProjectID uint   `json:"project_id"`
	Name      string `json:"name"`
	Affected  int64  `json:"affected"`
}

// ProjectDeletedPayload 项目删除，Objects 为已删除记录对应的存储对象.
type ProjectDeletedPayload struct {
	ProjectID    uint     `json:"project_id"`
	FilesDeleted int64    `json:"files_deleted"`
	Objects      []string `json:"objects,omitempty"`
	// Leftovers 提交后未能删除的对象，留给清理任务处理
	Leftovers []string `json:"leftovers,omitempty"`
}

// FileAttachedPayload 文件追加到项目.
type FileAttachedPayload struct {
	File FileRef `json:"file"`
}

// FileSweptPayload 清理任务结果.
type FileSweptPayload struct {
	Objects       []string `json:"objects,omitempty"`
	DanglingFiles int64    `json:"dangling_files"`
}
