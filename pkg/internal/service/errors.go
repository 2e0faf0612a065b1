package service

import "errors"

// 错误分类，处理器通过 errors.Is 映射为 HTTP 状态码.
var (
	// ErrValidation 输入校验失败（400）.
	ErrValidation = errors.New("validation error")
	// ErrStorage 数据库读写失败（500）.
	ErrStorage = errors.New("storage error")
	// ErrUpload 上传存储写入失败（500）.
	ErrUpload = errors.New("upload error")
	// ErrNotFound 资源不存在（404）.
	ErrNotFound = errors.New("not found")
)

// Error 服务层错误，Msg 为返回给客户端的提示，Err 为底层原因.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}

	return e.Msg + ": " + e.Err.Error()
}

// Unwrap 同时暴露错误分类与底层原因.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func validationError(msg string, err error) error {
	return &Error{Kind: ErrValidation, Msg: msg, Err: err}
}

func storageError(msg string, err error) error {
	return &Error{Kind: ErrStorage, Msg: msg, Err: err}
}

func uploadError(msg string, err error) error {
	return &Error{Kind: ErrUpload, Msg: msg, Err: err}
}

// Message 返回适合直接展示给客户端的提示.
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}

	return fallback
}
