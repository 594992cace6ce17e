package response

import (
	"github.com/gin-gonic/gin"
)

// Detail writes the error body shared by every endpoint: {"detail": msg}.
func Detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// Message writes an acknowledgement body: {"message": msg}.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
