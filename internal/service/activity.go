package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/activity"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type ActivityService = interfaces.ActivityService

type activityService struct {
	ServiceParams
}

func NewActivityService(params ServiceParams) ActivityService {
	return &activityService{
		ServiceParams: params,
	}
}

// LogActivity persists the audit row and publishes it on the activity topic.
// The log is best effort: nothing here may fail the calling flow.
func (s *activityService) LogActivity(ctx context.Context, req dto.ActivityRequest) {
	a := &activity.Activity{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACTIVITY),
		TenantID:     types.GetTenantID(ctx),
		OrderID:      req.OrderID,
		ActivityType: req.Type,
		Description:  req.Description,
		Metadata:     req.Metadata,
		Before:       req.Before,
		After:        req.After,
		CreatedBy:    types.GetUserID(ctx),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.ActivityRepo.Create(ctx, a); err != nil {
		s.Logger.WithContext(ctx).Errorw("failed to record activity",
			"error", err,
			"order_id", req.OrderID,
			"activity_type", req.Type,
		)
		return
	}

	s.publish(ctx, a)
}

func (s *activityService) publish(ctx context.Context, a *activity.Activity) {
	if s.PubSub == nil {
		return
	}

	payload, err := json.Marshal(a)
	if err != nil {
		s.Logger.Errorw("failed to marshal activity", "error", err, "activity_id", a.ID)
		return
	}

	msg := message.NewMessage(types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT), payload)
	msg.Metadata.Set("tenant_id", a.TenantID)
	msg.Metadata.Set("activity_type", string(a.ActivityType))

	if err := s.PubSub.Publish(ctx, s.activityTopic(), msg); err != nil {
		s.Logger.WithContext(ctx).Errorw("failed to publish activity",
			"error", err,
			"activity_id", a.ID,
			"activity_type", a.ActivityType,
		)
	}
}

func (s *activityService) activityTopic() string {
	if s.Config != nil && s.Config.Kafka.ActivityTopic != "" {
		return s.Config.Kafka.ActivityTopic
	}
	return types.ActivityTopic
}

func (s *activityService) ListActivities(ctx context.Context, orderID string) (*dto.ListActivitiesResponse, error) {
	items, err := s.ActivityRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &dto.ListActivitiesResponse{Items: items}, nil
}
