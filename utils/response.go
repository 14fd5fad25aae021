package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONMessage(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{"success": true, "message": message, "data": data})
}

// JSONPage wraps a list response with its paging metadata.
func JSONPage(c *gin.Context, code int, data interface{}, page, limit int, total int64) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
		"meta":    gin.H{"page": page, "limit": limit, "total": total},
	})
}

func JSONError(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, gin.H{"success": false, "error": gin.H{"code": errCode, "message": message}})
}

func AbortJSONError(c *gin.Context, code int, errCode, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": gin.H{"code": errCode, "message": message}})
}
