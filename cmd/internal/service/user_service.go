package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/infrastructure/metrics"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"
	"notesboard/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 10

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindVerifiedByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Save(ctx context.Context, user *entity.User) error
}

type UserService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Codes    *CodeIssuer
	Notifier Notifier
	Sessions *utils.SessionTokens
}

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	codes *CodeIssuer,
	notifier Notifier,
	sessions *utils.SessionTokens,
) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Validate: validate,
		Codes:    codes,
		Notifier: notifier,
		Sessions: sessions,
	}
}

// SignUp creates a pending account, or refreshes an unverified one, and sends it a
// fresh verification code. Verified usernames and emails are never touched.
//
// The persisted user is kept even when the notification fails: the caller gets a
// 500 but the account exists with a code nobody received, and signing up again
// simply issues a new one.
func (u *UserService) SignUp(ctx context.Context, req *contract.SignUpRequest) (*contract.MessageResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		metrics.SignUps.WithLabelValues(metrics.SignUpRejected).Inc()
		return nil, apierror.Validation(err)
	}

	user, apierr := u.prepareSignUp(ctx, req)
	if apierr != nil {
		return nil, apierr
	}

	msg := &contract.VerificationMessage{
		Username:  user.Username,
		Email:     user.Email,
		Code:      user.VerifyCode,
		ExpiresAt: utils.FormatEpoch(user.VerifyCodeExpiry),
	}

	if err := u.Notifier.Notify(ctx, msg); err != nil {
		log.Errorf("user %d was saved but the verification code could not be sent: %v", user.ID, err)
		metrics.SignUps.WithLabelValues(metrics.SignUpNotificationFailed).Inc()
		return nil, apierror.NewNotificationError(err)
	}

	metrics.SignUps.WithLabelValues(metrics.SignUpCreated).Inc()
	return contract.NewMessage("User registered successfully. Please verify your account."), nil
}

// prepareSignUp resolves which record the sign-up lands on and persists it.
func (u *UserService) prepareSignUp(ctx context.Context, req *contract.SignUpRequest) (*entity.User, apierror.ErrorResponse) {
	taken, err := u.UserRepo.FindVerifiedByUsername(ctx, req.Username)
	if err != nil {
		return nil, u.signUpFailure("failed to look up verified username", err)
	}

	if taken != nil {
		metrics.SignUps.WithLabelValues(metrics.SignUpRejected).Inc()
		return nil, apierror.UsernameTakenError
	}

	byEmail, err := u.UserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, u.signUpFailure("failed to look up user by email", err)
	}

	if byEmail != nil && byEmail.IsVerified {
		metrics.SignUps.WithLabelValues(metrics.SignUpRejected).Inc()
		return nil, apierror.EmailAlreadyRegisteredError
	}

	code, expiry, err := u.Codes.Issue()
	if err != nil {
		return nil, u.signUpFailure("failed to issue verification code", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, u.signUpFailure("failed to hash password", err)
	}

	now := utils.NowUTC()
	if byEmail != nil {
		refreshPending(byEmail, string(hash), code, expiry, now)
		if err = u.UserRepo.Save(ctx, byEmail); err != nil {
			return nil, u.signUpFailure("failed to refresh pending user", err)
		}
		return byEmail, nil
	}

	// An unverified holder of the username is overwritten, keeping its id.
	holder, err := u.UserRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, u.signUpFailure("failed to look up user by username", err)
	}

	if holder != nil {
		holder.Email = req.Email
		refreshPending(holder, string(hash), code, expiry, now)
		if err = u.UserRepo.Save(ctx, holder); err != nil {
			return nil, u.signUpFailure("failed to take over pending username", err)
		}
		return holder, nil
	}

	user := &entity.User{
		ID:               uid.UserID(),
		Username:         req.Username,
		Email:            req.Email,
		Password:         string(hash),
		VerifyCode:       code,
		VerifyCodeExpiry: expiry,
		IsVerified:       false,
		CreatedAt:        now,
		UpdatedAt:        now,
		Notes:            []entity.Note{},
	}

	if err = u.UserRepo.Create(ctx, user); err != nil {
		return nil, u.signUpFailure("failed to create user", err)
	}
	return user, nil
}

// VerifyCode claims a pending account when the code matches and has not expired.
func (u *UserService) VerifyCode(ctx context.Context, req *contract.VerifyCodeRequest) (*contract.MessageResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.Validation(err)
	}

	user, err := u.UserRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		log.Errorf("failed to find user (%s) for verification: %v", req.Username, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.UserNotFoundError
	}

	if user.IsVerified {
		return nil, apierror.UserAlreadyVerifiedError
	}

	now := utils.NowUTC()
	if !user.VerificationPending(now) {
		return nil, apierror.CodeExpiredError
	}

	if subtle.ConstantTimeCompare([]byte(user.VerifyCode), []byte(req.Code)) != 1 {
		return nil, apierror.CodeMismatchError
	}

	user.IsVerified = true
	user.UpdatedAt = now
	if err = u.UserRepo.Save(ctx, user); err != nil {
		log.Errorf("failed to mark user (%d) as verified: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return contract.NewMessage("Account verified successfully"), nil
}

// SignIn checks the credentials of a verified account and opens a session.
func (u *UserService) SignIn(ctx context.Context, req *contract.SignInRequest) (*contract.SignInResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.Validation(err)
	}

	user, err := u.UserRepo.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		log.Errorf("failed to fetch user (%s) from database: %v", req.Identifier, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.CredentialsMismatchError
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, apierror.CredentialsMismatchError
	}

	if err != nil {
		log.Errorf("failed to compare password hash of user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}

	if !user.IsVerified {
		return nil, apierror.UserNotVerifiedError
	}

	token, data, err := u.Sessions.Issue(user.ID, user.Username)
	if err != nil {
		log.Errorf("failed to issue session for user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}

	return &contract.SignInResponse{
		Success:  true,
		Message:  "Signed in successfully",
		Token:    token,
		Username: user.Username,
		Expires:  utils.FormatEpoch(data.Exp * 1000),
	}, nil
}

// CheckUsername tells whether a username can still be claimed.
func (u *UserService) CheckUsername(ctx context.Context, query *contract.UsernameQuery) (*contract.MessageResponse, apierror.ErrorResponse) {
	utils.Sanitize(query)
	if err := u.Validate.Struct(query); err != nil {
		return nil, apierror.Validation(err)
	}

	taken, err := u.UserRepo.FindVerifiedByUsername(ctx, query.Username)
	if err != nil {
		log.Errorf("failed to check username (%s): %v", query.Username, err)
		return nil, apierror.InternalServerError
	}

	if taken != nil {
		return nil, apierror.UsernameTakenError
	}
	return contract.NewMessage("Username is unique"), nil
}

func (u *UserService) signUpFailure(msg string, err error) apierror.ErrorResponse {
	log.Errorf("sign-up: %s: %v", msg, err)
	metrics.SignUps.WithLabelValues(metrics.SignUpError).Inc()
	return apierror.SignUpFailedError
}

func refreshPending(user *entity.User, hash, code string, expiry, now int64) {
	user.Password = hash
	user.VerifyCode = code
	user.VerifyCodeExpiry = expiry
	user.UpdatedAt = now
}
