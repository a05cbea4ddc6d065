package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gatepass/backend/internal/model"
)

// VerifiedEmailRepository 已验证邮箱数据访问接口
type VerifiedEmailRepository interface {
	IsVerified(ctx context.Context, email string) (bool, error)
	// MarkVerified 幂等写入：重复验证同一邮箱不报错
	MarkVerified(ctx context.Context, email string) error
}

type verifiedEmailRepo struct {
	db *gorm.DB
}

// NewVerifiedEmailRepo 创建 VerifiedEmailRepository 实例
func NewVerifiedEmailRepo(db *gorm.DB) VerifiedEmailRepository {
	return &verifiedEmailRepo{db: db}
}

func (r *verifiedEmailRepo) IsVerified(ctx context.Context, email string) (bool, error) {
	var record model.VerifiedEmail
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *verifiedEmailRepo) MarkVerified(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.VerifiedEmail{Email: email}).Error
}
