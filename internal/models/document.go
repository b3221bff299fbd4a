package models

import (
	"encoding/json"
	"time"
)

// DocumentStatus 表示文档在处理流水线中的状态。
type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"   // 已上传，尚未解析。
	DocumentProcessing DocumentStatus = "processing" // 正在解析。
	DocumentProcessed  DocumentStatus = "processed"  // 解析完成，文本和表格已物化。
	DocumentFailed     DocumentStatus = "failed"     // 解析失败。
)

// DocumentType 表示上传文件的格式。
type DocumentType string

const (
	DocumentPDF  DocumentType = "pdf"
	DocumentXLSX DocumentType = "xlsx"
	DocumentCSV  DocumentType = "csv"
)

// Document 是文档服务持久化的文档记录。解析产物（纯文本与表格）
// 与元数据一起存储，聊天核心只消费已物化的内容。
type Document struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	FileName     string         `gorm:"not null;size:512" json:"file_name"`
	FilePath     string         `gorm:"size:1024" json:"-"`
	DocumentType DocumentType   `gorm:"size:16" json:"document_type"`
	Status       DocumentStatus `gorm:"size:16;index" json:"status"`
	Text         string         `gorm:"type:longtext" json:"-"`
	TablesJSON   string         `gorm:"type:longtext" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Tables 解码存储的表格。记录尚未解析时返回空切片。
func (d *Document) Tables() ([]Table, error) {
	if d.TablesJSON == "" {
		return nil, nil
	}
	var tables []Table
	if err := json.Unmarshal([]byte(d.TablesJSON), &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// SetTables 编码并存储表格。
func (d *Document) SetTables(tables []Table) error {
	if len(tables) == 0 {
		d.TablesJSON = ""
		return nil
	}
	raw, err := json.Marshal(tables)
	if err != nil {
		return err
	}
	d.TablesJSON = string(raw)
	return nil
}

// DocumentContent 是解析器产出的原始内容：纯文本加上提取出的表格。
type DocumentContent struct {
	Text   string  `json:"text"`
	Tables []Table `json:"tables"`
}
