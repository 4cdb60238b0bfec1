package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey  = "requestId"
	chapterIDKey  = "chapterId"
	providerKey   = "llmProvider"
	requestHeader = "X-Request-Id"
)

// RequestID attaches a request ID to context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestHeader, id)
		c.Next()
	}
}

// RequestIDFromContext fetches the request ID stored by RequestID middleware.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}

// SetChapterID records the chapter a request touched so the request log carries it.
func SetChapterID(c *gin.Context, id string) {
	c.Set(chapterIDKey, id)
}

// SetProvider records the LLM provider that served the request.
func SetProvider(c *gin.Context, name string) {
	c.Set(providerKey, name)
}
