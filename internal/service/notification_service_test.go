package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type notificationStoreStub struct {
	created chan *models.Notification
	filter  models.NotificationFilter
	listed  []models.Notification
}

func (s *notificationStoreStub) Create(ctx context.Context, notification *models.Notification) error {
	if s.created != nil {
		s.created <- notification
	}
	return nil
}

func (s *notificationStoreStub) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	s.filter = filter
	return s.listed, nil
}

func TestNotificationServicePublishPersistsThroughQueue(t *testing.T) {
	store := &notificationStoreStub{created: make(chan *models.Notification, 1)}
	svc := NewNotificationService(store, zap.NewNop(), NotificationConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Publish(&models.Notification{Title: "hello", Audience: models.NotificationAudienceAll})

	select {
	case persisted := <-store.created:
		assert.Equal(t, "hello", persisted.Title)
		assert.NotEmpty(t, persisted.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not persisted")
	}
}

func TestNotificationServiceListScopesAudiencesByRole(t *testing.T) {
	store := &notificationStoreStub{}
	svc := NewNotificationService(store, zap.NewNop(), NotificationConfig{})

	_, err := svc.List(context.Background(), facultyActor(), "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, "user-1", store.filter.RecipientID)
	assert.Equal(t, []models.NotificationAudience{models.NotificationAudienceFaculty, models.NotificationAudienceAll}, store.filter.Audiences)

	_, err = svc.List(context.Background(), adminActor(), "change_request", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.NotificationAudience{models.NotificationAudienceAdmin, models.NotificationAudienceAll}, store.filter.Audiences)
	assert.Equal(t, "change_request", store.filter.Category)
}

func TestNotificationServiceListRequiresActor(t *testing.T) {
	svc := NewNotificationService(&notificationStoreStub{}, zap.NewNop(), NotificationConfig{})

	_, err := svc.List(context.Background(), nil, "", 20, 0)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
