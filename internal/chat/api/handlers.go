package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"FinSight/internal/chat"
	"FinSight/internal/chat/session"
	"FinSight/internal/document"
	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

// API provides the HTTP handlers for the chat service.
type API struct {
	chat      *chat.Service
	documents *document.Service
	logger    *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(chatService *chat.Service, documents *document.Service, logger *logger.Logger) *API {
	return &API{
		chat:      chatService,
		documents: documents,
		logger:    logger,
	}
}

// ChatWithDocumentHandler answers a question about one document. An omitted
// session_id starts a new session; the response carries the id to continue.
func (a *API) ChatWithDocumentHandler(c *gin.Context) {
	var payload struct {
		DocumentID string `json:"document_id" binding:"required"`
		SessionID  string `json:"session_id"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := a.chat.ChatWithDocument(c.Request.Context(), payload.DocumentID, payload.SessionID, payload.Message)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Chat with document failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer the question"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GeneralChatHandler answers a question in a session not bound to a document.
func (a *API) GeneralChatHandler(c *gin.Context) {
	var payload struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := a.chat.GeneralChat(c.Request.Context(), payload.SessionID, payload.Message)
	if err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("General chat failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer the question"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChatHistoryHandler returns the ordered message log of one session.
func (a *API) GetChatHistoryHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	history, err := a.chat.GetChatHistory(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to load chat history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chat history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": history})
}

// UploadDocumentHandler accepts a multipart upload and creates the document
// record in status uploaded.
func (a *API) UploadDocumentHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file"})
		return
	}
	defer src.Close()

	doc, err := a.documents.UploadDocument(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Document upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store the document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// ProcessDocumentHandler parses the document and publishes its entity store.
func (a *API) ProcessDocumentHandler(c *gin.Context) {
	id := c.Param("id")

	store, err := a.chat.ReprocessDocument(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Document processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process the document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document_id": id,
		"status":      models.DocumentProcessed,
		"securities":  len(store.Securities),
	})
}

// GetDocumentHandler returns one document record.
func (a *API) GetDocumentHandler(c *gin.Context) {
	id := c.Param("id")

	doc, err := a.documents.GetDocument(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to load document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}
