package middleware

import "github.com/gin-gonic/gin"

// AbortWithError stops the chain with the API error envelope:
//
//	{"success": false, "code": "...", "message": "...", "request_id": "..."}
func AbortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"code":       code,
		"message":    msg,
		"request_id": RequestIDFrom(c),
	})
}

// RequestIDFrom returns the correlation ID assigned by RequestID, falling
// back to the response header.
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return c.Writer.Header().Get(requestIDHeader)
}
