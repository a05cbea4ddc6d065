package model

import "time"

// VerifiedEmail 已通过验证的访客邮箱 — 对应 verified_emails
// 复访时命中该表即可跳过 OTP 验证直接入库
type VerifiedEmail struct {
	Email      string    `gorm:"type:varchar(255);primaryKey"       json:"email"`
	VerifiedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"verified_at"`
}

// TableName 指定表名
func (VerifiedEmail) TableName() string { return "verified_emails" }
