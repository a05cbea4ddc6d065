package service

import (
	"gatepass/backend/internal/dto"
	"gatepass/backend/internal/model"
)

// toVisitorResponse 将访客模型转换为响应 DTO
func toVisitorResponse(v *model.Visitor) *dto.VisitorResponse {
	resp := &dto.VisitorResponse{
		ID:            v.ID,
		Name:          v.Name,
		Reason:        v.Reason,
		PersonToVisit: v.PersonToVisit,
		Department:    v.Department,
		Email:         v.Email,
		VisitDate:     v.VisitDate,
		VisitTime:     v.VisitTime,
		Status:        string(v.Status),
		DeclineReason: v.DeclineReason,
		IsVerified:    v.IsVerified,
		TimeIn:        v.TimeIn,
		TimeOut:       v.TimeOut,
		FirstTimeIn:   v.FirstTimeIn,
		FirstTimeOut:  v.FirstTimeOut,
		ReentryCount:  v.ReentryCount,
		CreatedAt:     v.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if v.ValidID != nil {
		resp.ValidID = *v.ValidID
	}
	return resp
}
