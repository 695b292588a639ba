package httperr

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// BindJSON はリクエストボディを v にデコードします。空のボディは {} として扱います。
// 不正な JSON はクライアントエラーにせず、そのまま Boundary に渡すエラーを返します。
func BindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindWith(v, binding.JSON); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
