package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cineteca/internal/dto"
	"cineteca/internal/entity"
	"cineteca/internal/repository"
	"cineteca/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DefaultConfirmationTTL is how long an email confirmation code stays valid
// unless configured otherwise.
const DefaultConfirmationTTL = 20 * time.Minute

type AuthService struct {
	users  repository.UserRepository
	codes  repository.ConfirmationCodeRepository
	audits repository.AuditLogRepository

	email  EmailSender
	hasher PasswordHasher
	tokens TokenIssuer
	clock  Clock
	config AuthConfig
}

func NewAuthService(
	users repository.UserRepository,
	codes repository.ConfirmationCodeRepository,
	audits repository.AuditLogRepository,
	email EmailSender,
	hasher PasswordHasher,
	tokens TokenIssuer,
	clock Clock,
	config AuthConfig,
) *AuthService {
	if config.ConfirmationTTL == 0 {
		config.ConfirmationTTL = DefaultConfirmationTTL
	}
	return &AuthService{
		users:  users,
		codes:  codes,
		audits: audits,
		email:  email,
		hasher: hasher,
		tokens: tokens,
		clock:  clock,
		config: config,
	}
}

// Signup registers a new account in the EmailUnconfirmed state, assigns
// exactly one role and mails a confirmation code. An email transport failure
// surfaces as ErrEmailDelivery after the account was created.
func (s *AuthService) Signup(ctx context.Context, input dto.SignupRequest) (*dto.UserResponse, error) {
	if existing, err := s.users.FindByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrConflict
	}
	if existing, err := s.users.FindByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrConflict
	}

	role, err := s.users.FindRole(ctx, input.Role)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, NewValidationError("role does not exist")
	}

	if reasons := ValidatePassword(input.Password); len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:       input.Username,
		Email:          input.Email,
		PasswordHash:   hash,
		FirstName:      strings.ToUpper(input.FirstName),
		LastName:       strings.ToUpper(input.LastName),
		Enabled:        true,
		EmailConfirmed: false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.SetRole(ctx, user, role); err != nil {
		return nil, err
	}

	if err := s.sendConfirmationCode(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, &user.ID, entity.AuditSignup, map[string]any{"username": user.Username, "role": role.Name})
	return &dto.UserResponse{ID: user.ID.String()}, nil
}

// Login resolves the account by username first, then email. Checks run in a
// fixed order so error messages are deterministic: existence, password,
// enabled, email confirmed.
func (s *AuthService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.FindByEmail(ctx, input.Name)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if !s.hasher.Verify(user.PasswordHash, input.Password) {
		s.audit(ctx, &user.ID, entity.AuditLoginFailed, map[string]any{"username": user.Username})
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, ErrAccountDisabled
	}
	if !user.EmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}

	response, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, &user.ID, entity.AuditLoginSuccess, map[string]any{"username": user.Username})
	return response, nil
}

// ConfirmEmail consumes a confirmation code. The expiry check is strict:
// the code fails only once the clock has passed the expiration instant.
func (s *AuthService) ConfirmEmail(ctx context.Context, code uuid.UUID) (string, error) {
	record, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", ErrNotFound
	}
	if record.Expired(s.clock.Now()) {
		return "", ErrCodeExpired
	}

	// The user is resolved by id rather than trusting the registry to have
	// loaded the association.
	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("%w: confirmation code without user", ErrInternal)
	}
	user.EmailConfirmed = true
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	if err := s.codes.Delete(ctx, record); err != nil {
		return "", err
	}

	s.audit(ctx, &user.ID, entity.AuditEmailConfirmed, map[string]any{"username": user.Username})
	return user.Username, nil
}

// RecoverPassword resets a confirmed account to a freshly generated password
// delivered by email, or re-sends a confirmation code when the account never
// confirmed its email. The recovery email is sent BEFORE the password is
// overwritten: if the transport fails, the stored password stays untouched.
func (s *AuthService) RecoverPassword(ctx context.Context, input dto.RecoverPasswordRequest) (confirmationResent bool, err error) {
	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, ErrNotFound
	}
	if !user.Enabled {
		return false, ErrAccountDisabled
	}
	if user.Email != utils.Normalize(input.Email) {
		return false, NewValidationError("email does not match the account")
	}

	if !user.EmailConfirmed {
		if err := s.sendConfirmationCode(ctx, user); err != nil {
			return false, err
		}
		return true, nil
	}

	password, err := GenerateRecoveryPassword()
	if err != nil {
		return false, err
	}

	subject := fmt.Sprintf("%s - Password reset", s.config.AppName)
	body := fmt.Sprintf(
		"<p>The new password for user <i>%s</i> is:</p><p><b>%s</b></p>"+
			"<p>This message was generated automatically. Please do not reply.</p>",
		user.Username, password,
	)
	if err := s.email.Send(ctx, user.Email, subject, body); err != nil {
		return false, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return false, err
	}

	s.audit(ctx, &user.ID, entity.AuditPasswordRecovered, map[string]any{"username": user.Username})
	return false, nil
}

// SelfUpdate lets an authenticated user change their own profile. It
// requires the current password; changing the email drops the account back
// to EmailUnconfirmed and sends a fresh code. A new token is issued so the
// claims reflect the changes.
func (s *AuthService) SelfUpdate(ctx context.Context, userID uuid.UUID, input dto.UpdateUserRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !s.hasher.Verify(user.PasswordHash, input.CurrentPassword) {
		return nil, ErrInvalidCredentials
	}

	if input.FirstName != "" {
		user.FirstName = strings.ToUpper(input.FirstName)
	}
	if input.LastName != "" {
		user.LastName = strings.ToUpper(input.LastName)
	}

	if email := utils.Normalize(input.Email); email != "" && email != user.Email {
		other, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrConflict
		}
		user.Email = email
		user.EmailConfirmed = false
	}

	// The admin account keeps its username no matter what.
	if username := utils.Normalize(input.Username); username != "" && username != user.Username && !user.IsAdminAccount() {
		other, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrConflict
		}
		user.Username = username
	}

	if input.Password != "" {
		if reasons := ValidatePassword(input.Password); len(reasons) > 0 {
			return nil, &ValidationError{Reasons: reasons}
		}
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if !user.EmailConfirmed {
		if err := s.sendConfirmationCode(ctx, user); err != nil {
			return nil, err
		}
	}

	s.audit(ctx, &user.ID, entity.AuditUserUpdated, map[string]any{"self": true})
	return s.issueToken(user)
}

// AdminUpdate changes any account without the current password and without
// forcing email re-confirmation. The admin account is off limits. A role
// change replaces the whole role set with the single new role.
func (s *AuthService) AdminUpdate(ctx context.Context, targetID uuid.UUID, input dto.UpdateAnyUserRequest) error {
	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.IsAdminAccount() {
		return ErrAdminProtected
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}

	if email := utils.Normalize(input.Email); email != "" && email != user.Email {
		other, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if other != nil && other.ID != user.ID {
			return ErrConflict
		}
		user.Email = email
	}

	if username := utils.Normalize(input.Username); username != "" && username != user.Username {
		other, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if other != nil && other.ID != user.ID {
			return ErrConflict
		}
		user.Username = username
	}

	if input.Password != "" {
		if reasons := ValidatePassword(input.Password); len(reasons) > 0 {
			return &ValidationError{Reasons: reasons}
		}
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if input.Role != "" {
		role, err := s.users.FindRole(ctx, input.Role)
		if err != nil {
			return err
		}
		if role == nil {
			return NewValidationError("role does not exist")
		}
		if err := s.users.SetRole(ctx, user, role); err != nil {
			return err
		}
	}

	s.audit(ctx, &user.ID, entity.AuditUserUpdated, map[string]any{"self": false})
	return nil
}

// ToggleEnabled flips the enabled flag. The admin account cannot be
// disabled.
func (s *AuthService) ToggleEnabled(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.IsAdminAccount() {
		return nil, ErrAdminProtected
	}

	user.Enabled = !user.Enabled
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, &user.ID, entity.AuditUserToggled, map[string]any{"enabled": user.Enabled})
	response := dto.UserResponseFromEntity(user)
	return &response, nil
}

// DeleteUser permanently removes an account and its confirmation codes. The
// admin account cannot be deleted.
func (s *AuthService) DeleteUser(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}
	if user.IsAdminAccount() {
		return "", ErrAdminProtected
	}

	if err := s.codes.DeleteByUser(ctx, user.ID); err != nil {
		return "", err
	}
	if err := s.users.Delete(ctx, user); err != nil {
		return "", err
	}

	s.audit(ctx, nil, entity.AuditUserDeleted, map[string]any{"username": user.Username})
	return user.Username, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	response := dto.UserResponseFromEntity(user)
	return &response, nil
}

func (s *AuthService) SearchUsers(ctx context.Context, req dto.SearchUserRequest) (*dto.SearchResponse[dto.UserResponse], error) {
	result, err := s.users.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	response := dto.NewSearchResponse(
		dto.UserResponsesFromEntities(result.Items),
		result.Page, result.PageSize, result.TotalCount,
	)
	return &response, nil
}

func (s *AuthService) Roles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := s.users.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		responses = append(responses, dto.RoleResponse{Name: role.Name})
	}
	return responses, nil
}

func (s *AuthService) issueToken(user *entity.User) (*dto.AuthResponse, error) {
	extra := make(map[string]string)
	for _, claim := range user.Claims {
		extra[claim.Name] = claim.Value
	}
	for _, role := range user.Roles {
		for _, claim := range role.Claims {
			extra[claim.Name] = claim.Value
		}
	}

	token, _, err := s.tokens.Issue(user.Username, user.ID.String(), user.RoleNames(), extra)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Roles:     user.RoleNames(),
	}, nil
}

// sendConfirmationCode replaces the user's live code and emails the new
// confirmation link. A transport failure surfaces as ErrEmailDelivery.
func (s *AuthService) sendConfirmationCode(ctx context.Context, user *entity.User) error {
	code, err := s.codes.Create(ctx, user.ID, s.clock.Now().Add(s.config.ConfirmationTTL))
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/auth/confirm/%s", strings.TrimRight(s.config.ClientBaseURL, "/"), code.Code)
	subject := fmt.Sprintf("%s - Account activation required", s.config.AppName)
	body := fmt.Sprintf(
		"<p>To activate the account <i>%s</i> click the following link:</p>"+
			"<p><a href=\"%s\">%s</a></p>"+
			"<p>This message was generated automatically. Please do not reply.</p>",
		user.Username, link, link,
	)
	if err := s.email.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

func (s *AuthService) audit(ctx context.Context, userID *uuid.UUID, action entity.AuditAction, metadata map[string]any) {
	if s.audits == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		if bytes, err := json.Marshal(metadata); err == nil {
			payload = datatypes.JSON(bytes)
		}
	}
	_ = s.audits.Log(ctx, &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: payload,
	})
}
