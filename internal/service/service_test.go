package service

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/sneddy/dsmlkz-platform/mocks"
)

// svcMocks — набор моков всех хранилищ сервиса.
type svcMocks struct {
	auth     *mocks.MockAuthStorage
	profiles *mocks.MockProfilesStorage
	avatars  *mocks.MockAvatarsStorage
	content  *mocks.MockContentStorage
}

// newSvc поднимает сервис с моками всех хранилищ.
func newSvc(t *testing.T) (*Service, svcMocks, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := svcMocks{
		auth:     mocks.NewMockAuthStorage(ctrl),
		profiles: mocks.NewMockProfilesStorage(ctrl),
		avatars:  mocks.NewMockAvatarsStorage(ctrl),
		content:  mocks.NewMockContentStorage(ctrl),
	}

	svc := New(m.auth, m.profiles, m.avatars, m.content, testCfg())

	return svc, m, ctrl
}
