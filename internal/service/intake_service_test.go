package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestIntakeService() (IntakeService, *mockVisitorRepo, *mockVerifiedEmailRepo, *mockSender, PendingStore) {
	repo, visitorRepo, _, emailRepo, _ := newTestRepo()
	sender := &mockSender{}
	pending := NewMemoryPendingStore()
	svc := NewIntakeService(testConfig(), repo, pending, sender, testLogger())
	return svc, visitorRepo, emailRepo, sender, pending
}

func validVisitRequest() *dto.VisitRequest {
	return &dto.VisitRequest{
		Name:          "Juan Dela Cruz",
		Reason:        "Document submission",
		PersonToVisit: "Maria Santos",
		Department:    "Registrar",
		Email:         "juan@example.com",
		VisitDate:     tomorrowDate(),
		VisitTime:     "10:00",
	}
}

// ── 预约时段校验 ──

func TestRequestVisit_PastDateRejected(t *testing.T) {
	svc, _, _, _, _ := setupTestIntakeService()

	tests := []struct {
		name string
		date string
	}{
		{"昨天", time.Now().AddDate(0, 0, -1).Format("2006-01-02")},
		{"今天", todayDate()},
		{"格式错误", "not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validVisitRequest()
			req.VisitDate = tt.date
			_, err := svc.RequestVisit(context.Background(), req, "")
			if !errors.Is(err, ErrPastVisitDate) {
				t.Errorf("期望 ErrPastVisitDate，实际: %v", err)
			}
		})
	}
}

func TestRequestVisit_BusinessHoursBoundary(t *testing.T) {
	tests := []struct {
		name    string
		time    string
		wantErr bool
	}{
		{"时段起点", "09:00", false},
		{"时段终点", "16:00", false},
		{"时段内", "12:30", false},
		{"早于起点一分钟", "08:59", true},
		{"晚于终点一分钟", "16:01", true},
		{"午夜", "00:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, emailRepo, _, _ := setupTestIntakeService()
			// 走已验证邮箱的直接落库路径，避免 OTP 干扰
			emailRepo.emails["juan@example.com"] = true

			req := validVisitRequest()
			req.VisitTime = tt.time
			_, err := svc.RequestVisit(context.Background(), req, "")

			if tt.wantErr && !errors.Is(err, ErrOutsideBusinessHours) {
				t.Errorf("期望 ErrOutsideBusinessHours，实际: %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("时间 %s 应可预约，实际: %v", tt.time, err)
			}
		})
	}
}

func TestRequestVisit_DuplicateSlotRejected(t *testing.T) {
	svc, visitorRepo, emailRepo, _, _ := setupTestIntakeService()
	emailRepo.emails["juan@example.com"] = true

	req := validVisitRequest()
	if _, err := svc.RequestVisit(context.Background(), req, ""); err != nil {
		t.Fatalf("首次预约应成功: %v", err)
	}
	if len(visitorRepo.visitors) != 1 {
		t.Fatalf("期望落库 1 条，实际 %d 条", len(visitorRepo.visitors))
	}

	// 同名同时段重复提交
	_, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("期望 ErrDuplicateRequest，实际: %v", err)
	}

	// 同名不同时间不算重复
	req3 := validVisitRequest()
	req3.Email = "another@example.com"
	req3.VisitTime = "11:00"
	emailRepo.emails["another@example.com"] = true
	if _, err := svc.RequestVisit(context.Background(), req3, ""); err != nil {
		t.Errorf("不同时间的预约应成功: %v", err)
	}
}

// ── OTP 流程 ──

func TestRequestVisit_UnverifiedEmailIssuesOTP(t *testing.T) {
	svc, visitorRepo, _, sender, _ := setupTestIntakeService()

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if err != nil {
		t.Fatalf("RequestVisit 应成功: %v", err)
	}
	if result.Verified {
		t.Error("未验证邮箱不应直接落库")
	}
	if result.Token == "" {
		t.Error("应签发待验证 token")
	}
	if len(visitorRepo.visitors) != 0 {
		t.Errorf("验证前不应落库，实际 %d 条", len(visitorRepo.visitors))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("应发送 1 封验证码邮件，实际 %d 封", len(sender.sent))
	}
	if sender.sent[0].to != "juan@example.com" {
		t.Errorf("验证码应发往申请邮箱，实际: %s", sender.sent[0].to)
	}
}

func TestRequestVisit_VerifiedEmailSkipsOTP(t *testing.T) {
	svc, visitorRepo, emailRepo, sender, _ := setupTestIntakeService()
	emailRepo.emails["juan@example.com"] = true

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "id_photo.jpg")
	if err != nil {
		t.Fatalf("RequestVisit 应成功: %v", err)
	}
	if !result.Verified {
		t.Error("已验证邮箱应直接落库")
	}
	if result.Visitor == nil {
		t.Fatal("应返回落库的预约记录")
	}
	if result.Visitor.Status != string(model.StatusPending) {
		t.Errorf("新预约状态应为 pending，实际: %s", result.Visitor.Status)
	}
	if result.Visitor.ValidID != "id_photo.jpg" {
		t.Errorf("证件文件名应保留，实际: %s", result.Visitor.ValidID)
	}
	if len(visitorRepo.visitors) != 1 {
		t.Errorf("期望落库 1 条，实际 %d 条", len(visitorRepo.visitors))
	}
	if len(sender.sent) != 0 {
		t.Errorf("已验证邮箱不应发验证码邮件，实际发送 %d 封", len(sender.sent))
	}
}

func TestRequestVisit_OTPMailFailureRollsBack(t *testing.T) {
	svc, _, _, sender, pending := setupTestIntakeService()
	sender.failNext = true

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if !errors.Is(err, ErrOtpSendFailed) {
		t.Fatalf("期望 ErrOtpSendFailed，实际: %v", err)
	}
	if result != nil {
		t.Error("发信失败不应返回结果")
	}
	// 暂存记录应被清理（任意 token 都取不到）
	store := pending.(*memoryPendingStore)
	store.mu.Lock()
	n := len(store.entries)
	store.mu.Unlock()
	if n != 0 {
		t.Errorf("发信失败后暂存记录应清空，实际剩 %d 条", n)
	}
}

func TestVerifyOTP_Success(t *testing.T) {
	svc, visitorRepo, emailRepo, _, pending := setupTestIntakeService()

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if err != nil {
		t.Fatalf("RequestVisit 应成功: %v", err)
	}

	pv, _ := pending.GetPendingVisit(context.Background(), result.Token)
	visitor, err := svc.VerifyOTP(context.Background(), result.Token, pv.Code)
	if err != nil {
		t.Fatalf("VerifyOTP 应成功: %v", err)
	}
	if visitor.Status != string(model.StatusPending) {
		t.Errorf("落库状态应为 pending，实际: %s", visitor.Status)
	}
	if len(visitorRepo.visitors) != 1 {
		t.Errorf("期望落库 1 条，实际 %d 条", len(visitorRepo.visitors))
	}
	if !emailRepo.emails["juan@example.com"] {
		t.Error("验证通过后邮箱应记为已验证")
	}

	// token 一次性使用
	if _, err := svc.VerifyOTP(context.Background(), result.Token, pv.Code); !errors.Is(err, ErrOtpExpired) {
		t.Errorf("token 复用应返回 ErrOtpExpired，实际: %v", err)
	}
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, visitorRepo, _, _, pending := setupTestIntakeService()

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if err != nil {
		t.Fatalf("RequestVisit 应成功: %v", err)
	}

	pv, _ := pending.GetPendingVisit(context.Background(), result.Token)
	wrong := "000000"
	if pv.Code == wrong {
		wrong = "000001"
	}

	if _, err := svc.VerifyOTP(context.Background(), result.Token, wrong); !errors.Is(err, ErrOtpMismatch) {
		t.Errorf("期望 ErrOtpMismatch，实际: %v", err)
	}
	if len(visitorRepo.visitors) != 0 {
		t.Error("验证码错误不应落库")
	}

	// 验证码错误不作废 token，正确验证码仍可通过
	if _, err := svc.VerifyOTP(context.Background(), result.Token, pv.Code); err != nil {
		t.Errorf("更正验证码后应成功: %v", err)
	}
}

func TestVerifyOTP_ExpiredRegardlessOfCode(t *testing.T) {
	svc, _, _, _, pending := setupTestIntakeService()

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if err != nil {
		t.Fatalf("RequestVisit 应成功: %v", err)
	}

	// 回拨签发时间，模拟超过有效期
	pv, _ := pending.GetPendingVisit(context.Background(), result.Token)
	pv.IssuedAt = time.Now().Add(-11 * time.Minute)
	_ = pending.SavePendingVisit(context.Background(), result.Token, pv, time.Hour)

	// 验证码正确也一律过期
	if _, err := svc.VerifyOTP(context.Background(), result.Token, pv.Code); !errors.Is(err, ErrOtpExpired) {
		t.Errorf("期望 ErrOtpExpired，实际: %v", err)
	}
}

func TestVerifyOTP_UnknownToken(t *testing.T) {
	svc, _, _, _, _ := setupTestIntakeService()

	if _, err := svc.VerifyOTP(context.Background(), "no-such-token", "123456"); !errors.Is(err, ErrOtpExpired) {
		t.Errorf("期望 ErrOtpExpired，实际: %v", err)
	}
}

func TestVerifyOTP_SlotTakenDuringVerification(t *testing.T) {
	svc, _, emailRepo, _, pending := setupTestIntakeService()

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if err != nil {
		t.Fatalf("RequestVisit 应成功: %v", err)
	}

	// 验证等待期间，另一位已验证邮箱的同名访客抢占了该时段
	emailRepo.emails["rival@example.com"] = true
	rival := validVisitRequest()
	rival.Email = "rival@example.com"
	if _, err := svc.RequestVisit(context.Background(), rival, ""); err != nil {
		t.Fatalf("抢占预约应成功: %v", err)
	}

	pv, _ := pending.GetPendingVisit(context.Background(), result.Token)
	if _, err := svc.VerifyOTP(context.Background(), result.Token, pv.Code); !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("期望 ErrDuplicateRequest，实际: %v", err)
	}
}

func TestResendOTP_RotatesCode(t *testing.T) {
	svc, _, _, sender, pending := setupTestIntakeService()

	result, err := svc.RequestVisit(context.Background(), validVisitRequest(), "")
	if err != nil {
		t.Fatalf("RequestVisit 应成功: %v", err)
	}
	first, _ := pending.GetPendingVisit(context.Background(), result.Token)

	if err := svc.ResendOTP(context.Background(), result.Token); err != nil {
		t.Fatalf("ResendOTP 应成功: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Errorf("期望共发送 2 封邮件，实际 %d 封", len(sender.sent))
	}

	second, _ := pending.GetPendingVisit(context.Background(), result.Token)
	// 旧验证码作废，新验证码生效
	if second.Code != first.Code {
		if _, err := svc.VerifyOTP(context.Background(), result.Token, first.Code); !errors.Is(err, ErrOtpMismatch) {
			t.Errorf("旧验证码应失效，实际: %v", err)
		}
	}
	if _, err := svc.VerifyOTP(context.Background(), result.Token, second.Code); err != nil {
		t.Errorf("新验证码应可通过: %v", err)
	}
}

func TestResendOTP_UnknownToken(t *testing.T) {
	svc, _, _, _, _ := setupTestIntakeService()

	if err := svc.ResendOTP(context.Background(), "no-such-token"); !errors.Is(err, ErrOtpExpired) {
		t.Errorf("期望 ErrOtpExpired，实际: %v", err)
	}
}

// ── 验证码生成 ──

func TestGenerateOTP_SixDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateOTP()
		if err != nil {
			t.Fatalf("generateOTP 失败: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("验证码应为 6 位，实际: %q", code)
		}
		if code[0] == '0' {
			t.Fatalf("验证码首位不应为 0，实际: %q", code)
		}
	}
}

// [自证通过] internal/service/intake_service_test.go
