// Package accounts implements registration, login, user lookup and the
// register toast, plus their HTTP handlers under /api.
package accounts

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/abdeliveries/abdeliveries/internal/app/store/users"
	"github.com/abdeliveries/abdeliveries/internal/app/system/apperr"
	"github.com/abdeliveries/abdeliveries/internal/app/system/authutil"
	"github.com/abdeliveries/abdeliveries/internal/app/system/inputval"
	"github.com/abdeliveries/abdeliveries/internal/app/system/normalize"
	"github.com/abdeliveries/abdeliveries/internal/app/system/notifier"
	"github.com/abdeliveries/abdeliveries/internal/app/system/timeouts"
	"github.com/abdeliveries/abdeliveries/internal/domain/models"
	"go.uber.org/zap"
)

// Client-visible messages.
const (
	MsgMissingPhone      = "Missing phone parameter"
	MsgDuplicateUser     = "User with this email/phone already exists"
	MsgEmailNotFound     = "Email not found"
	MsgIncorrectPassword = "Incorrect password"
	MsgToastFailed       = "Register toast failed"
	MsgPasswordTooLong   = "password must be at most 72 bytes"

	// PhoneNotProvided fills the phone field of responses when none is stored.
	PhoneNotProvided = "Not provided"
)

// Notification texts sent to the chat service.
const (
	registerChatText  = "נרשמתי למערכת A.B Deliveries"
	toastRequestText  = "נרשמתי למערכת A.B Deliveries, שלח הודעת ברכה בעברית."
	defaultToast      = "ברוך הבא למערכת A.B Deliveries 🚚"
	chatPhoneFallback = "לא צוין"
)

func loginMessage(name string) string { return name + ", התחברת בהצלחה למערכת 🎉" }
func loginChatText(name string) string { return "המשתמש " + name + " התחבר למערכת." }
func nodeDownNote(err error) string { return fmt.Sprintf(" (Node not responding: %v)", err) }

// UserStore is the subset of the users store the service needs.
type UserStore interface {
	GetByPhone(ctx context.Context, phone string) (*userstore.Record, error)
	GetByEmail(ctx context.Context, email string) (*userstore.Record, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// Notifier sends events to the chat service.
type Notifier interface {
	Chat(ctx context.Context, msg notifier.Message) error
	RegisterToast(ctx context.Context, msg notifier.Message) (string, error)
}

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// Service holds no per-user state; every call is a single store round trip
// plus at most one notifier call.
type Service struct {
	users  UserStore
	notify Notifier
	hasher PasswordHasher
	log    *zap.Logger
}

// NewService wires the service to its collaborators.
func NewService(users UserStore, notify Notifier, hasher PasswordHasher, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		notify: notify,
		hasher: hasher,
		log:    logger,
	}
}

// GetUser looks up a user by exact phone match.
func (s *Service) GetUser(ctx context.Context, phone string) (UserLookup, error) {
	phone = normalize.QueryParam(phone)
	if phone == "" {
		return UserLookup{}, apperr.NewValidationError(MsgMissingPhone)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "users.get_by_phone")
	defer cancel()

	rec, err := s.users.GetByPhone(ctx, phone)
	if errors.Is(err, userstore.ErrNotFound) {
		return UserLookup{Exists: false}, nil
	}
	if err != nil {
		return UserLookup{}, fmt.Errorf("find user by phone: %w", err)
	}

	return UserLookup{
		Exists:    true,
		Name:      rec.Name,
		Email:     rec.Email,
		Phone:     rec.PhoneOr(PhoneNotProvided),
		CreatedAt: rec.CreatedAtString(),
	}, nil
}

// Register creates a user and then notifies the chat service. A notifier
// failure is logged and does not affect the result.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	in.Phone = normalize.Phone(in.Phone)
	if err := inputval.Struct(in); err != nil {
		return RegisterResult{}, apperr.NewValidationError(err.Error())
	}
	if len(in.Password) > authutil.MaxPasswordBytes {
		return RegisterResult{}, apperr.NewValidationError(MsgPasswordTooLong)
	}

	storeCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "users.register")
	defer cancel()

	exists, err := s.users.ExistsByEmailOrPhone(storeCtx, in.Email, in.Phone)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return RegisterResult{}, apperr.NewConflictError(MsgDuplicateUser, nil)
	}

	digest, err := s.hasher.Hash(in.Password)
	if errors.Is(err, authutil.ErrPasswordTooLong) {
		return RegisterResult{}, apperr.NewValidationError(MsgPasswordTooLong)
	}
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(storeCtx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: digest,
	})
	if errors.Is(err, userstore.ErrDuplicate) {
		// Lost a race with a concurrent registration.
		return RegisterResult{}, apperr.NewConflictError(MsgDuplicateUser, err)
	}
	if err != nil {
		return RegisterResult{}, fmt.Errorf("insert user: %w", err)
	}

	if err := s.notify.Chat(ctx, notifier.Message{
		Name:    in.Name,
		Phone:   in.Phone,
		Message: registerChatText,
	}); err != nil {
		s.log.Warn("register notification failed",
			zap.String("user_id", created.ID.Hex()),
			zap.Error(err))
	}

	return RegisterResult{OK: true, UserID: created.ID}, nil
}

// Login checks the credentials and notifies the chat service. A notifier
// failure is appended to the returned message instead of failing the call.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Email = normalize.Email(in.Email)
	if err := inputval.Struct(in); err != nil {
		return LoginResult{}, apperr.NewValidationError(err.Error())
	}

	storeCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "users.get_by_email")
	defer cancel()

	rec, err := s.users.GetByEmail(storeCtx, in.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		return LoginResult{}, apperr.NewAuthenticationError(MsgEmailNotFound)
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find user by email: %w", err)
	}

	if !s.hasher.Verify(in.Password, rec.PasswordHash) {
		return LoginResult{}, apperr.NewAuthenticationError(MsgIncorrectPassword)
	}

	message := loginMessage(rec.Name)
	if err := s.notify.Chat(ctx, notifier.Message{
		Name:    rec.Name,
		Phone:   rec.PhoneOr(chatPhoneFallback),
		Message: loginChatText(rec.Name),
	}); err != nil {
		s.log.Warn("login notification failed",
			zap.String("user_id", rec.ID.Hex()),
			zap.Error(err))
		message += nodeDownNote(err)
	}

	return LoginResult{
		OK:      true,
		UserID:  rec.ID,
		Name:    rec.Name,
		Email:   rec.Email,
		Phone:   rec.PhoneOr(PhoneNotProvided),
		Message: message,
	}, nil
}

// RegisterToast asks the chat service for a welcome toast. It never touches
// the store; any notifier failure is an UpstreamError.
func (s *Service) RegisterToast(ctx context.Context, in ToastInput) (ToastResult, error) {
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	in.Phone = normalize.Phone(in.Phone)
	if err := inputval.Struct(in); err != nil {
		return ToastResult{}, apperr.NewValidationError(err.Error())
	}

	reply, err := s.notify.RegisterToast(ctx, notifier.Message{
		Name:    in.Name,
		Phone:   in.Phone,
		Message: toastRequestText,
	})
	if err != nil {
		return ToastResult{}, apperr.NewUpstreamError(MsgToastFailed, err)
	}
	if reply == "" {
		reply = defaultToast
	}
	return ToastResult{OK: true, Toast: reply}, nil
}
