package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
)

// logHandlerError logs an unexpected error with a route-identifying tag.
// The client only ever sees the opaque internal-error envelope.
func logHandlerError(c *gin.Context, tag string, err error) {
	log.Printf("[%s] %s %s: %v", tag, c.Request.Method, c.FullPath(), err)
}
