package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/middleware/auth/mocks"
	"usergate/pkg/platform/sentinel"
	"usergate/pkg/requestcontext"
)

type AuthSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	tokens *mocks.MockTokenParser
	users  *mocks.MockIdentityLoader
	auth   *Authenticator
	gate   *Gate
	ctx    context.Context
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tokens = mocks.NewMockTokenParser(s.ctrl)
	s.users = mocks.NewMockIdentityLoader(s.ctrl)
	s.auth = NewAuthenticator(s.tokens, s.users, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.gate = NewGate(s.auth)
	s.ctx = context.Background()
}

func (s *AuthSuite) TearDownTest() {
	s.ctrl.Finish()
}

func request(authorization string) *requestcontext.Request {
	h := http.Header{}
	if authorization != "" {
		h.Set("Authorization", authorization)
	}
	return &requestcontext.Request{Header: h}
}

func (s *AuthSuite) TestAnonymousPasses() {
	req := request("")
	resp, err := s.gate.Inbound(s.ctx, req)
	s.NoError(err)
	s.Nil(resp)
	s.Nil(req.Identity())

	_, err = RequireIdentity(req)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthentication))
	s.Equal("As credenciais de autenticação não foram fornecidas.", err.Error())
}

func (s *AuthSuite) TestOtherSchemeIsIgnored() {
	resp, err := s.gate.Inbound(s.ctx, request("Basic dXNlcjpwYXNz"))
	s.NoError(err)
	s.Nil(resp)
}

func (s *AuthSuite) TestEmptyBearerIsInvalid() {
	for _, header := range []string{"Bearer", "Bearer ", "Bearer   ", "bearer  "} {
		_, err := s.gate.Inbound(s.ctx, request(header))
		s.Require().Error(err, "header %q", header)
		s.Equal("Token inválido ou expirado.", err.Error(), "header %q", header)
	}
}

func (s *AuthSuite) TestBearerSchemeIsCaseInsensitive() {
	userID := id.NewUserID()
	ident := &requestcontext.Identity{UserID: userID, Email: "ana@example.com", IsActive: true}
	s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "tok").Return(userID, nil)
	s.users.EXPECT().LoadIdentity(gomock.Any(), userID).Return(ident, nil)

	req := request("bearer tok")
	_, err := s.gate.Inbound(s.ctx, req)
	s.Require().NoError(err)
	s.Same(ident, req.Identity())
}

func (s *AuthSuite) TestActiveUserIsResolved() {
	userID := id.NewUserID()
	ident := &requestcontext.Identity{UserID: userID, Email: "ana@example.com", IsActive: true}
	s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "tok").Return(userID, nil)
	s.users.EXPECT().LoadIdentity(gomock.Any(), userID).Return(ident, nil)

	req := request("Bearer tok")
	_, err := s.gate.Inbound(s.ctx, req)
	s.Require().NoError(err)
	s.Same(ident, req.Identity())

	got, err := RequireIdentity(req)
	s.NoError(err)
	s.Same(ident, got)
}

func (s *AuthSuite) TestIdentityIsResolvedOnce() {
	userID := id.NewUserID()
	s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "tok").Return(userID, nil).Times(1)
	s.users.EXPECT().LoadIdentity(gomock.Any(), userID).
		Return(&requestcontext.Identity{UserID: userID, IsActive: true, IsStaff: true}, nil).Times(1)

	req := request("Bearer tok")
	first, err := s.auth.Identify(s.ctx, req)
	s.Require().NoError(err)
	_, err = s.gate.Inbound(s.ctx, req)
	s.Require().NoError(err)
	s.Same(first, req.Identity())
}

func (s *AuthSuite) TestInactiveUserIsRejected() {
	userID := id.NewUserID()
	s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "tok").Return(userID, nil)
	s.users.EXPECT().LoadIdentity(gomock.Any(), userID).
		Return(&requestcontext.Identity{UserID: userID, IsActive: false}, nil)

	_, err := s.gate.Inbound(s.ctx, request("Bearer tok"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthentication))
	s.Equal("Sua conta está inativa. Entre em contato com o suporte.", err.Error())
}

func (s *AuthSuite) TestTokenErrors() {
	s.Run("expired token keeps its message", func() {
		s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "old").Return(id.UserID{}, dErrors.ExpiredToken())
		_, err := s.gate.Inbound(s.ctx, request("Bearer old"))
		s.Equal("Token expirado. Faça login novamente.", err.Error())
	})

	s.Run("unknown failure becomes invalid token", func() {
		s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "bad").Return(id.UserID{}, errors.New("signature mismatch"))
		_, err := s.gate.Inbound(s.ctx, request("Bearer bad"))
		s.Equal("Token inválido ou expirado.", err.Error())
	})

	s.Run("deleted subject becomes invalid token", func() {
		userID := id.NewUserID()
		s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "ghost").Return(userID, nil)
		s.users.EXPECT().LoadIdentity(gomock.Any(), userID).Return(nil, sentinel.ErrNotFound)
		_, err := s.gate.Inbound(s.ctx, request("Bearer ghost"))
		s.Equal("Token inválido ou expirado.", err.Error())
	})

	s.Run("store failure is a server error", func() {
		userID := id.NewUserID()
		s.tokens.EXPECT().ParseAccessToken(gomock.Any(), "tok").Return(userID, nil)
		s.users.EXPECT().LoadIdentity(gomock.Any(), userID).Return(nil, errors.New("connection refused"))
		_, err := s.gate.Inbound(s.ctx, request("Bearer tok"))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
