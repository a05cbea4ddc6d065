package dto

// ── 门户文案模块 DTO ──

// ContentUpdateRequest 更新门户文案请求（section → content）
type ContentUpdateRequest struct {
	Sections map[string]string `json:"sections" binding:"required,min=1"`
}
