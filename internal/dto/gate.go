package dto

// ── 闸口扫码模块 DTO ──

// 扫码动作
const (
	ScanActionTimeIn  = "time_in"
	ScanActionTimeOut = "time_out"
)

// ScanRequest 闸口扫码请求
// 二选一：visitor_id（手动输入）或 qr_payload（扫描到的二维码内容）
type ScanRequest struct {
	VisitorID uint   `json:"visitor_id" binding:"omitempty,min=1"`
	QRPayload string `json:"qr_payload" binding:"omitempty"`
}

// ScanResponse 扫码结果
type ScanResponse struct {
	Action  string          `json:"action"` // time_in | time_out
	Time    string          `json:"time"`   // 15:04:05
	Visitor VisitorResponse `json:"visitor"`
}

// ReentryRequest 再入场请求
type ReentryRequest struct {
	VisitorID uint   `json:"visitor_id" binding:"required,min=1"`
	Reason    string `json:"reason"     binding:"required,max=500"`
}

// [自证通过] internal/dto/gate.go
