package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cardroom/cardroom/internal/dependencies/mocks"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/storage/memory"
	"github.com/cardroom/cardroom/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreateGuest() {
	session, err := s.service.CreateGuest(s.ctx, "Alice")
	s.Require().NoError(err)
	s.True(strings.HasPrefix(string(session.Identity.ID), "p_"))
	s.Equal("Alice", session.Identity.DisplayName)
	s.True(session.Identity.IsGuest)
	s.NotEmpty(session.Token)

	stored, err := s.storage.GetIdentity(s.ctx, session.Identity.ID)
	s.Require().NoError(err)
	s.Equal("Alice", stored.DisplayName)
}

func (s *ServiceSuite) TestCreateGuestDefaultsDisplayName() {
	session, err := s.service.CreateGuest(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(model.DefaultPlayerName, session.Identity.DisplayName)
}

func (s *ServiceSuite) TestGuestsGetDistinctIdentities() {
	first, err := s.service.CreateGuest(s.ctx, "Alice")
	s.Require().NoError(err)
	second, err := s.service.CreateGuest(s.ctx, "Alice")
	s.Require().NoError(err)
	s.NotEqual(first.Identity.ID, second.Identity.ID)
	s.NotEqual(first.Token, second.Token)
}

func (s *ServiceSuite) TestRegisterAndLogin() {
	registered, err := s.service.Register(s.ctx, "alice", "hunter22", "Alice")
	s.Require().NoError(err)
	s.False(registered.Identity.IsGuest)

	account, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(registered.Identity.ID, account.PlayerID)
	// The password never lands in the store
	s.NotContains(account.PasswordHash, "hunter22")

	login, err := s.service.Login(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)
	s.Equal(registered.Identity.ID, login.Identity.ID)
}

func (s *ServiceSuite) TestRegisterRejectsTakenUsername() {
	_, err := s.service.Register(s.ctx, "alice", "hunter22", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other", "Impostor")
	s.ErrorIs(err, ErrUsernameTaken)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "hunter22", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUsername() {
	_, err := s.service.Login(s.ctx, "nobody", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestValidate() {
	session, err := s.service.CreateGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	validated, err := s.service.Validate(session.Token)
	s.Require().NoError(err)
	s.Equal(session.Identity.ID, validated.Identity.ID)

	_, err = s.service.Validate("not-a-token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateExpiredSession() {
	session, err := s.service.CreateGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(24*time.Hour + time.Minute)

	_, err = s.service.Validate(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestLogout() {
	session, err := s.service.CreateGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	s.service.Logout(session.Token)

	_, err = s.service.Validate(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}
