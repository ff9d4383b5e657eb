package service

// Тесты лент (internal/service/content.go).
//
//  Проверяем:
//  - нормализацию limit;
//  - маппинг ошибок storage -> service;
//  - happy-path каждого метода.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

func samplePost() models.ChannelPost {
	return models.ChannelPost{
		ID:          uuid.New(),
		ChannelName: "dsmlkz_news",
		MessageID:   42,
		Text:        "Встреча сообщества в субботу",
		PostLink:    "https://t.me/dsmlkz_news/42",
		CreatedAt:   time.Now().UTC(),
		FetchedAt:   time.Now().UTC(),
	}
}

func TestSaveContent_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	items := []models.ChannelPost{samplePost()}

	m.content.EXPECT().SaveContent(gomock.Any(), items).Return(nil)

	require.NoError(t, svc.SaveContent(context.Background(), items))
}

func TestSaveContent_Invalid(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Пустая пачка.
	require.ErrorIs(t, svc.SaveContent(context.Background(), nil), ErrInvalidArgument)

	// Пост без канала.
	bad := samplePost()
	bad.ChannelName = "  "
	require.ErrorIs(t, svc.SaveContent(context.Background(), []models.ChannelPost{bad}), ErrInvalidArgument)

	// Пост без message_id.
	bad = samplePost()
	bad.MessageID = 0
	require.ErrorIs(t, svc.SaveContent(context.Background(), []models.ChannelPost{bad}), ErrInvalidArgument)
}

func TestSaveContent_StorageError(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.content.EXPECT().SaveContent(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	err := svc.SaveContent(context.Background(), []models.ChannelPost{samplePost()})
	require.ErrorIs(t, err, ErrInternal)
}

func TestListNews_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	want := &models.ContentPage{
		Items:         []models.ChannelPost{samplePost()},
		NextPageToken: "next",
	}

	m.content.EXPECT().ListContent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts models.ListOptions) (*models.ContentPage, error) {
			require.Equal(t, int32(20), opts.Limit)
			return want, nil
		})

	got, err := svc.ListNews(context.Background(), models.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestListNews_InvalidCursor(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.content.EXPECT().ListContent(gomock.Any(), gomock.Any()).Return(nil, storage.ErrInvalidCursor)

	_, err := svc.ListNews(context.Background(), models.ListOptions{PageToken: "garbage"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewsByID_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	post := samplePost()
	m.content.EXPECT().ContentByID(gomock.Any(), post.ID.String()).Return(&post, nil)

	got, err := svc.NewsByID(context.Background(), post.ID.String())
	require.NoError(t, err)
	require.Equal(t, &post, got)
}

func TestNewsByID_EmptyID(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.NewsByID(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewsByID_NotFound(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.content.EXPECT().ContentByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	_, err := svc.NewsByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListJobs_ClampsLimit(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.content.EXPECT().ListJobs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts models.ListOptions) (*models.JobPage, error) {
			require.Equal(t, int32(100), opts.Limit)
			return &models.JobPage{}, nil
		})

	_, err := svc.ListJobs(context.Background(), models.ListOptions{Limit: 500})
	require.NoError(t, err)
}

func TestJobByID_StorageError_Internal(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.content.EXPECT().JobByID(gomock.Any(), "some-id").Return(nil, errors.New("db down"))

	_, err := svc.JobByID(context.Background(), "some-id")
	require.ErrorIs(t, err, ErrInternal)
}
