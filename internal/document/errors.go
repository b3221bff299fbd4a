package document

import "errors"

var (
	// ErrNotFound 表示请求的文档 ID 不存在。
	ErrNotFound = errors.New("document not found")

	// ErrNotProcessed 表示文档存在但尚未解析完成，内容还不可用。
	ErrNotProcessed = errors.New("document not processed")
)
