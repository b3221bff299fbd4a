package document

import (
	"errors"

	"gorm.io/gorm"

	"FinSight/internal/models"
)

// Store 封装了文档记录的数据库访问。
type Store struct {
	DB *gorm.DB
}

// NewStore 创建一个新的 Store。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Create 在数据库中创建一条新的文档记录。
func (s *Store) Create(doc *models.Document) error {
	return s.DB.Create(doc).Error
}

// GetByID 通过 ID 查找文档记录。
func (s *Store) GetByID(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.DB.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Update 保存文档记录的全部字段。
func (s *Store) Update(doc *models.Document) error {
	return s.DB.Save(doc).Error
}
