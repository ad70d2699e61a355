package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// OptionalQueryInt はform形式の任意クエリパラメータを整数として取り出します。
// 未指定の場合は def を返します。
func OptionalQueryInt(c *gin.Context, name string, def int) (int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &v); err != nil {
		return 0, fmt.Errorf("invalid query parameter %q: %w", name, err)
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}

// PathID はパスパラメータを1以上の数値IDとして取り出します。
func PathID(c *gin.Context, name string) (uint, error) {
	var id uint
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		return 0, fmt.Errorf("invalid path parameter %q: %w", name, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid path parameter %q: must be positive", name)
	}
	return id, nil
}

// PathUUID はパスパラメータをUUIDとして取り出します。
func PathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid path parameter %q: %w", name, err)
	}
	return id, nil
}
