package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gatepass/backend/config"
	"gatepass/backend/internal/model"
	"gatepass/backend/internal/repository"
)

// ── Mock Repositories ──

type mockVisitorRepo struct {
	visitors map[uint]*model.Visitor
	nextID   uint
}

func newMockVisitorRepo() *mockVisitorRepo {
	return &mockVisitorRepo{visitors: make(map[uint]*model.Visitor), nextID: 1}
}

func (m *mockVisitorRepo) Create(_ context.Context, visitor *model.Visitor) error {
	if visitor.ID == 0 {
		visitor.ID = m.nextID
		m.nextID++
	}
	if visitor.CreatedAt.IsZero() {
		visitor.CreatedAt = time.Now()
	}
	cp := *visitor
	m.visitors[visitor.ID] = &cp
	return nil
}

func (m *mockVisitorRepo) GetByID(_ context.Context, id uint) (*model.Visitor, error) {
	if v, ok := m.visitors[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVisitorRepo) ExistsSlot(_ context.Context, name, visitDate, visitTime string) (bool, error) {
	for _, v := range m.visitors {
		if v.Name == name && v.VisitDate == visitDate && v.VisitTime == visitTime {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockVisitorRepo) List(_ context.Context, filters *repository.VisitorListFilters, offset, limit int) ([]model.Visitor, int64, error) {
	var all []model.Visitor
	for _, v := range m.visitors {
		if filters != nil {
			if filters.Status != "" && v.Status != filters.Status {
				continue
			}
			if filters.Department != "" && v.Department != filters.Department {
				continue
			}
			if filters.CreatedAfter != nil && v.CreatedAt.Before(*filters.CreatedAfter) {
				continue
			}
		}
		all = append(all, *v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockVisitorRepo) ListAll(_ context.Context, createdAfter *time.Time) ([]model.Visitor, error) {
	var all []model.Visitor
	for _, v := range m.visitors {
		if createdAfter != nil && v.CreatedAt.Before(*createdAfter) {
			continue
		}
		all = append(all, *v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (m *mockVisitorRepo) ListCreatedAfter(_ context.Context, since time.Time) ([]model.Visitor, error) {
	var all []model.Visitor
	for _, v := range m.visitors {
		if v.CreatedAt.After(since) {
			all = append(all, *v)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (m *mockVisitorRepo) UpdateDecision(_ context.Context, id uint, status model.VisitStatus, declineReason string) (int64, error) {
	v, ok := m.visitors[id]
	if !ok || v.Status != model.StatusPending {
		return 0, nil
	}
	v.Status = status
	v.DeclineReason = declineReason
	return 1, nil
}

func (m *mockVisitorRepo) SetTimeIn(_ context.Context, id uint, t string) error {
	v, ok := m.visitors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.TimeIn = &t
	if v.FirstTimeIn == nil {
		v.FirstTimeIn = &t
	}
	return nil
}

func (m *mockVisitorRepo) SetTimeOut(_ context.Context, id uint, t string) error {
	v, ok := m.visitors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.TimeOut = &t
	if v.FirstTimeOut == nil {
		v.FirstTimeOut = &t
	}
	return nil
}

func (m *mockVisitorRepo) Reenter(_ context.Context, id uint, updatedReason, newTimeIn string) error {
	v, ok := m.visitors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Reason = updatedReason
	v.TimeIn = &newTimeIn
	v.TimeOut = nil
	v.ReentryCount++
	return nil
}

func (m *mockVisitorRepo) Delete(_ context.Context, id uint) error {
	delete(m.visitors, id)
	return nil
}

type mockStaffRepo struct {
	accounts map[uint]*model.StaffAccount
	nextID   uint
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{accounts: make(map[uint]*model.StaffAccount), nextID: 1}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *model.StaffAccount) error {
	if staff.ID == 0 {
		staff.ID = m.nextID
		m.nextID++
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now()
	}
	cp := *staff
	m.accounts[staff.ID] = &cp
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id uint) (*model.StaffAccount, error) {
	if s, ok := m.accounts[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetByUsername(_ context.Context, username string) (*model.StaffAccount, error) {
	for _, s := range m.accounts {
		if s.Username == username {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) Update(_ context.Context, staff *model.StaffAccount) error {
	if _, ok := m.accounts[staff.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *staff
	m.accounts[staff.ID] = &cp
	return nil
}

func (m *mockStaffRepo) List(_ context.Context) ([]model.StaffAccount, error) {
	var all []model.StaffAccount
	for _, s := range m.accounts {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (m *mockStaffRepo) Delete(_ context.Context, id uint) error {
	delete(m.accounts, id)
	return nil
}

func (m *mockStaffRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.accounts)), nil
}

type mockVerifiedEmailRepo struct {
	emails map[string]bool
}

func newMockVerifiedEmailRepo() *mockVerifiedEmailRepo {
	return &mockVerifiedEmailRepo{emails: make(map[string]bool)}
}

func (m *mockVerifiedEmailRepo) IsVerified(_ context.Context, email string) (bool, error) {
	return m.emails[email], nil
}

func (m *mockVerifiedEmailRepo) MarkVerified(_ context.Context, email string) error {
	m.emails[email] = true
	return nil
}

type mockContentRepo struct {
	sections map[string]string
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{sections: make(map[string]string)}
}

func (m *mockContentRepo) ListAll(_ context.Context) ([]model.HomepageContent, error) {
	var rows []model.HomepageContent
	for section, content := range m.sections {
		rows = append(rows, model.HomepageContent{Section: section, Content: content})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Section < rows[j].Section })
	return rows, nil
}

func (m *mockContentRepo) Upsert(_ context.Context, section, content string) error {
	m.sections[section] = content
	return nil
}

// ── Mock 邮件发送器 ──

type sentMail struct {
	to       string
	subject  string
	body     string
	filename string
}

type mockSender struct {
	sent     []sentMail
	failNext bool
}

func (m *mockSender) Send(to, subject, body string) error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp 连接失败")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *mockSender) SendWithAttachment(to, subject, body, filename, _ string, _ []byte) error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp 连接失败")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body, filename: filename})
	return nil
}

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:    15 * time.Minute,
			RefreshTokenTTL:   7 * 24 * time.Hour,
			SeedAdminUsername: "admin",
			SeedAdminPassword: "admin-password-123",
		},
		Visit: config.VisitConfig{
			Timezone:      "Asia/Manila",
			BusinessOpen:  "09:00",
			BusinessClose: "16:00",
			OTPTTL:        10 * time.Minute,
			MaxReentry:    1,
		},
	}
}

func newTestRepo() (*repository.Repository, *mockVisitorRepo, *mockStaffRepo, *mockVerifiedEmailRepo, *mockContentRepo) {
	visitorRepo := newMockVisitorRepo()
	staffRepo := newMockStaffRepo()
	emailRepo := newMockVerifiedEmailRepo()
	contentRepo := newMockContentRepo()
	repo := &repository.Repository{
		Visitor:       visitorRepo,
		Staff:         staffRepo,
		VerifiedEmail: emailRepo,
		Content:       contentRepo,
	}
	return repo, visitorRepo, staffRepo, emailRepo, contentRepo
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// tomorrowDate 返回测试时区下明天的日期（ISO 格式）
func tomorrowDate() string {
	loc, _ := time.LoadLocation("Asia/Manila")
	return time.Now().In(loc).AddDate(0, 0, 1).Format("2006-01-02")
}

// todayDate 返回测试时区下今天的日期（ISO 格式）
func todayDate() string {
	loc, _ := time.LoadLocation("Asia/Manila")
	return time.Now().In(loc).Format("2006-01-02")
}

// [自证通过] internal/service/mock_repos_test.go
