// Package signup runs the email OTP confirmation that precedes account
// creation.
//
// Issue stores a PendingSignup in the caller's session and mails the code.
// Verify consumes that state on every attempt, so a second attempt without a
// new Issue always fails with ErrNoPendingSignup. Only a matching code
// creates the account.
package signup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kritin29/Patient-Management-Web-App/internal/auth"
	"github.com/kritin29/Patient-Management-Web-App/internal/mailer"
	"github.com/kritin29/Patient-Management-Web-App/internal/models"
	"github.com/kritin29/Patient-Management-Web-App/internal/session"
)

var (
	ErrNoPendingSignup = errors.New("no signup is awaiting verification")
	ErrOTPMismatch     = errors.New("invalid OTP")
	ErrOTPExpired      = errors.New("OTP has expired")
)

const pendingKey = "pending_signup"

// ExpiredGrace is how long an expired pending signup is kept so a late
// verify reports ErrOTPExpired instead of ErrNoPendingSignup.
const ExpiredGrace = 15 * time.Minute

// UserCreator persists confirmed accounts.
type UserCreator interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error)
}

// Service issues and verifies signup OTPs. Session state is passed in per
// request; the Service itself holds only long-lived collaborators.
type Service struct {
	users  UserCreator
	mail   mailer.Sender
	hasher auth.Hasher
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a Service. A ttl of zero means codes never expire; they
// stay valid until a verify attempt or until the session ends.
func NewService(users UserCreator, mail mailer.Sender, hasher auth.Hasher, ttl time.Duration) *Service {
	return &Service{
		users:  users,
		mail:   mail,
		hasher: hasher,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates an OTP, records the pending signup in sess and emails the
// code to email. Any earlier pending signup in sess is replaced. Mail
// failures are returned as is.
func (s *Service) Issue(ctx context.Context, sess *session.Session, username, email, password string) (string, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	pending := models.PendingSignup{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		OTP:          code,
		IssuedAt:     s.now(),
	}
	// Without an OTP TTL the entry lives as long as the session.
	var storeTTL time.Duration
	if s.ttl > 0 {
		storeTTL = s.ttl + ExpiredGrace
	}
	if err := sess.SetJSON(ctx, pendingKey, pending, storeTTL); err != nil {
		return "", fmt.Errorf("store pending signup: %w", err)
	}

	if err := s.mail.Send(ctx, email, OTPSubject, OTPBody(username, code)); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks submitted against the pending code and, on a match, creates
// the account. The pending state is removed before any comparison.
func (s *Service) Verify(ctx context.Context, sess *session.Session, submitted string) (models.User, error) {
	var pending models.PendingSignup
	if err := sess.TakeJSON(ctx, pendingKey, &pending); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return models.User{}, ErrNoPendingSignup
		}
		return models.User{}, fmt.Errorf("load pending signup: %w", err)
	}

	if s.ttl > 0 && !s.now().Before(pending.IssuedAt.Add(s.ttl)) {
		return models.User{}, ErrOTPExpired
	}
	// TODO: switch to subtle.ConstantTimeCompare once the signup endpoint is rate limited per email as well as per IP.
	if submitted != pending.OTP {
		return models.User{}, ErrOTPMismatch
	}

	user, err := s.users.CreateUser(ctx, pending.Username, pending.Email, pending.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Pending reports whether sess holds an unverified signup.
func (s *Service) Pending(ctx context.Context, sess *session.Session) (bool, error) {
	_, err := sess.Get(ctx, pendingKey)
	if errors.Is(err, session.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
