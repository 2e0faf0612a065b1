// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：tv.<域>.<动作>，尽量稳定且向后兼容.
// 域：project(项目)、file(文件)
const (
	// 项目领域.
	TopicProjectCreated = "tv.project.created" // 项目创建完成（可能附带首个文件）
	TopicProjectRenamed = "tv.project.renamed" // 项目名称变更
	TopicProjectDeleted = "tv.project.deleted" // 项目及其文件记录已删除

	// 文件领域.
	TopicFileAttached = "tv.file.attached" // 文件追加到已有项目
	TopicFileSwept    = "tv.file.swept"    // 清理任务删除了孤儿对象或悬空记录
)

var (
	// ProjectTopics 项目相关主题集合.
	ProjectTopics = []string{TopicProjectCreated, TopicProjectRenamed, TopicProjectDeleted}

	// FileTopics 文件相关主题集合.
	FileTopics = []string{TopicFileAttached, TopicFileSwept}

	// AllTopics 全部主题.
	AllTopics = append(append([]string{}, ProjectTopics...), FileTopics...)
)
