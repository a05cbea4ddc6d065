package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Visitor       VisitorRepository
	Staff         StaffRepository
	VerifiedEmail VerifiedEmailRepository
	Content       ContentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Visitor:       NewVisitorRepo(db),
		Staff:         NewStaffRepo(db),
		VerifiedEmail: NewVerifiedEmailRepo(db),
		Content:       NewContentRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
