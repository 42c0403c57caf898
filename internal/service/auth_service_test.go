package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cineteca/internal/dto"
	"cineteca/internal/entity"
	"cineteca/internal/repository"
	"cineteca/internal/utils"

	"github.com/google/uuid"
)

type stubUserRepo struct {
	users map[uuid.UUID]*entity.User
	roles map[string]*entity.Role
}

func newStubUserRepo() *stubUserRepo {
	repo := &stubUserRepo{
		users: make(map[uuid.UUID]*entity.User),
		roles: make(map[string]*entity.Role),
	}
	for i, name := range []string{entity.RoleAdmin, entity.RoleManager, entity.RoleUser} {
		repo.roles[name] = &entity.Role{ID: int64(i + 1), Name: name}
	}
	return repo
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]entity.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *entity.User) error {
	user.Username = utils.Normalize(user.Username)
	user.Email = utils.Normalize(user.Email)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return cloneUser(r.users[id]), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	username = utils.Normalize(username)
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	email = utils.Normalize(email)
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *entity.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	user.Username = utils.Normalize(user.Username)
	user.Email = utils.Normalize(user.Email)
	roles := stored.Roles
	r.users[user.ID] = cloneUser(user)
	r.users[user.ID].Roles = roles
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, user *entity.User) error {
	delete(r.users, user.ID)
	return nil
}

func (r *stubUserRepo) SetRole(_ context.Context, user *entity.User, role *entity.Role) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	stored.Roles = []entity.Role{*role}
	user.Roles = []entity.Role{*role}
	return nil
}

func (r *stubUserRepo) FindRole(_ context.Context, name string) (*entity.Role, error) {
	role, ok := r.roles[utils.Normalize(name)]
	if !ok {
		return nil, nil
	}
	clone := *role
	return &clone, nil
}

func (r *stubUserRepo) ListRoles(_ context.Context) ([]entity.Role, error) {
	roles := make([]entity.Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, *role)
	}
	return roles, nil
}

func (r *stubUserRepo) Search(_ context.Context, _ dto.SearchUserRequest) (*repository.SearchResult[entity.User], error) {
	return &repository.SearchResult[entity.User]{Page: 1, PageSize: 10}, nil
}

type stubCodeRepo struct {
	codes map[uuid.UUID]*entity.ConfirmationCode
}

func newStubCodeRepo() *stubCodeRepo {
	return &stubCodeRepo{codes: make(map[uuid.UUID]*entity.ConfirmationCode)}
}

func (r *stubCodeRepo) GetByCode(_ context.Context, code uuid.UUID) (*entity.ConfirmationCode, error) {
	for _, record := range r.codes {
		if record.Code == code {
			clone := *record
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubCodeRepo) GetByUser(_ context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error) {
	record, ok := r.codes[userID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (r *stubCodeRepo) Create(_ context.Context, userID uuid.UUID, expiresAt time.Time) (*entity.ConfirmationCode, error) {
	record := &entity.ConfirmationCode{
		UserID:    userID,
		Code:      uuid.New(),
		ExpiresAt: expiresAt,
	}
	r.codes[userID] = record
	clone := *record
	return &clone, nil
}

func (r *stubCodeRepo) Delete(_ context.Context, code *entity.ConfirmationCode) error {
	delete(r.codes, code.UserID)
	return nil
}

func (r *stubCodeRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	delete(r.codes, userID)
	return nil
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type stubEmailSender struct {
	sent []sentEmail
	fail bool
}

func (s *stubEmailSender) Send(_ context.Context, to, subject, body string) error {
	if s.fail {
		return errors.New("provider rejected the message")
	}
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h!" + password, nil }
func (plainHasher) Verify(hash, password string) bool    { return hash == "h!"+password }

type stubTokenIssuer struct{}

func (stubTokenIssuer) Issue(username, userID string, roles []string, extra map[string]string) (string, time.Duration, error) {
	return "token-" + username, time.Minute, nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestService() (*AuthService, *stubUserRepo, *stubCodeRepo, *stubEmailSender, *fixedClock) {
	users := newStubUserRepo()
	codes := newStubCodeRepo()
	email := &stubEmailSender{}
	clock := &fixedClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewAuthService(users, codes, nil, email, plainHasher{}, stubTokenIssuer{}, clock, AuthConfig{
		ClientBaseURL: "http://localhost:3000",
		AppName:       "Cineteca",
	})
	return svc, users, codes, email, clock
}

func signupRequest() dto.SignupRequest {
	return dto.SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Username:  "ada",
		Password:  "Str0ng#pass",
		Role:      entity.RoleUser,
	}
}

func mustSignup(t *testing.T, svc *AuthService, users *stubUserRepo) *entity.User {
	t.Helper()
	created, err := svc.Signup(context.Background(), signupRequest())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	id, err := uuid.Parse(created.ID)
	if err != nil {
		t.Fatalf("signup returned bad id: %v", err)
	}
	return users.users[id]
}

func confirmUser(t *testing.T, svc *AuthService, codes *stubCodeRepo, userID uuid.UUID) {
	t.Helper()
	record := codes.codes[userID]
	if record == nil {
		t.Fatalf("no confirmation code for user")
	}
	if _, err := svc.ConfirmEmail(context.Background(), record.Code); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
}

func TestSignup_CreatesUnconfirmedAccount(t *testing.T) {
	svc, users, codes, email, _ := newTestService()

	user := mustSignup(t, svc, users)
	if user == nil {
		t.Fatalf("user was not stored")
	}
	if user.EmailConfirmed {
		t.Fatalf("fresh account must not be confirmed")
	}
	if !user.Enabled {
		t.Fatalf("fresh account must be enabled")
	}
	if user.FirstName != "ADA" || user.LastName != "LOVELACE" {
		t.Fatalf("names not uppercased: %q %q", user.FirstName, user.LastName)
	}
	if len(user.Roles) != 1 || user.Roles[0].Name != entity.RoleUser {
		t.Fatalf("unexpected roles: %+v", user.Roles)
	}
	if codes.codes[user.ID] == nil {
		t.Fatalf("no confirmation code created")
	}
	if len(email.sent) != 1 || email.sent[0].To != "ada@example.com" {
		t.Fatalf("confirmation email not sent: %+v", email.sent)
	}
	if !strings.Contains(email.sent[0].Body, codes.codes[user.ID].Code.String()) {
		t.Fatalf("email body does not carry the code")
	}
}

func TestSignup_Conflicts(t *testing.T) {
	svc, users, _, _, _ := newTestService()
	mustSignup(t, svc, users)

	sameUsername := signupRequest()
	sameUsername.Email = "other@example.com"
	if _, err := svc.Signup(context.Background(), sameUsername); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for username, got %v", err)
	}

	sameEmail := signupRequest()
	sameEmail.Username = "other"
	if _, err := svc.Signup(context.Background(), sameEmail); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for email, got %v", err)
	}
	if len(users.users) != 1 {
		t.Fatalf("conflicting signup must not create users")
	}
}

func TestSignup_UnknownRole(t *testing.T) {
	svc, users, _, _, _ := newTestService()

	req := signupRequest()
	req.Role = "owner"
	_, err := svc.Signup(context.Background(), req)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(users.users) != 0 {
		t.Fatalf("no user may be created for an unknown role")
	}
}

func TestSignup_WeakPasswordReportsEveryRule(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	req := signupRequest()
	req.Password = "abc"
	_, err := svc.Signup(context.Background(), req)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(validationErr.Reasons) != 4 {
		t.Fatalf("expected 4 violated rules, got %v", validationErr.Reasons)
	}
}

func TestSignup_EmailFailureSurfaces(t *testing.T) {
	svc, _, _, email, _ := newTestService()
	email.fail = true

	if _, err := svc.Signup(context.Background(), signupRequest()); !errors.Is(err, ErrEmailDelivery) {
		t.Fatalf("expected ErrEmailDelivery, got %v", err)
	}
}

func TestLogin_ChecksRunInOrder(t *testing.T) {
	svc, users, _, _, _ := newTestService()
	user := mustSignup(t, svc, users)

	// Account is both disabled and unconfirmed, yet a wrong password must
	// win.
	user.Enabled = false
	if _, err := svc.Login(context.Background(), dto.LoginRequest{Name: "ada", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), dto.LoginRequest{Name: "ada", Password: "Str0ng#pass"}); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
	user.Enabled = true
	if _, err := svc.Login(context.Background(), dto.LoginRequest{Name: "ada", Password: "Str0ng#pass"}); !errors.Is(err, ErrEmailNotConfirmed) {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}
	if _, err := svc.Login(context.Background(), dto.LoginRequest{Name: "nobody", Password: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	svc, users, codes, _, _ := newTestService()
	user := mustSignup(t, svc, users)
	confirmUser(t, svc, codes, user.ID)

	for _, name := range []string{"ada", "ADA", "ada@example.com"} {
		response, err := svc.Login(context.Background(), dto.LoginRequest{Name: name, Password: "Str0ng#pass"})
		if err != nil {
			t.Fatalf("login as %q failed: %v", name, err)
		}
		if response.Token != "token-ada" {
			t.Fatalf("unexpected token: %q", response.Token)
		}
		if len(response.Roles) != 1 || response.Roles[0] != entity.RoleUser {
			t.Fatalf("unexpected roles: %v", response.Roles)
		}
	}
}

func TestConfirmEmail_Lifecycle(t *testing.T) {
	svc, users, codes, _, clock := newTestService()
	user := mustSignup(t, svc, users)

	if _, err := svc.ConfirmEmail(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got %v", err)
	}

	code := codes.codes[user.ID].Code
	clock.now = clock.now.Add(DefaultConfirmationTTL + time.Second)
	if _, err := svc.ConfirmEmail(context.Background(), code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}

	clock.now = clock.now.Add(-2 * time.Second)
	username, err := svc.ConfirmEmail(context.Background(), code)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if username != "ada" {
		t.Fatalf("unexpected username: %q", username)
	}
	if !users.users[user.ID].EmailConfirmed {
		t.Fatalf("account not marked confirmed")
	}
	if codes.codes[user.ID] != nil {
		t.Fatalf("code must be consumed")
	}
}

func TestConfirmEmail_ResolvesUserByID(t *testing.T) {
	svc, users, codes, _, _ := newTestService()
	user := mustSignup(t, svc, users)

	// The registry hands back the bare code row; confirmation must not
	// depend on the user association being loaded with it.
	record := codes.codes[user.ID]
	if record.User != nil {
		t.Fatalf("precondition: registry record must not carry the user")
	}
	username, err := svc.ConfirmEmail(context.Background(), record.Code)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if username != "ada" {
		t.Fatalf("unexpected username: %q", username)
	}
	if !users.users[user.ID].EmailConfirmed {
		t.Fatalf("account not marked confirmed")
	}
}

func TestConfirmEmail_OrphanCodeIsInternal(t *testing.T) {
	svc, users, codes, _, _ := newTestService()
	user := mustSignup(t, svc, users)

	code := codes.codes[user.ID].Code
	delete(users.users, user.ID)
	if _, err := svc.ConfirmEmail(context.Background(), code); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal for an orphan code, got %v", err)
	}
}

func TestRecoverPassword_ResendsCodeWhileUnconfirmed(t *testing.T) {
	svc, users, codes, email, _ := newTestService()
	user := mustSignup(t, svc, users)
	oldHash := user.PasswordHash
	firstCode := codes.codes[user.ID].Code

	resent, err := svc.RecoverPassword(context.Background(), dto.RecoverPasswordRequest{Username: "ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if !resent {
		t.Fatalf("expected a confirmation resend")
	}
	if users.users[user.ID].PasswordHash != oldHash {
		t.Fatalf("password must not change while unconfirmed")
	}
	if codes.codes[user.ID].Code == firstCode {
		t.Fatalf("a fresh code must replace the old one")
	}
	// The replaced code no longer confirms anything.
	if _, err := svc.ConfirmEmail(context.Background(), firstCode); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected stale code to be rejected, got %v", err)
	}
	if len(email.sent) != 2 {
		t.Fatalf("expected two emails, got %d", len(email.sent))
	}
}

func TestRecoverPassword_EmailSentBeforeOverwrite(t *testing.T) {
	svc, users, codes, email, _ := newTestService()
	user := mustSignup(t, svc, users)
	confirmUser(t, svc, codes, user.ID)
	oldHash := users.users[user.ID].PasswordHash

	email.fail = true
	if _, err := svc.RecoverPassword(context.Background(), dto.RecoverPasswordRequest{Username: "ada", Email: "ada@example.com"}); !errors.Is(err, ErrEmailDelivery) {
		t.Fatalf("expected ErrEmailDelivery, got %v", err)
	}
	if users.users[user.ID].PasswordHash != oldHash {
		t.Fatalf("password must survive a failed delivery")
	}

	email.fail = false
	if _, err := svc.RecoverPassword(context.Background(), dto.RecoverPasswordRequest{Username: "ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if users.users[user.ID].PasswordHash == oldHash {
		t.Fatalf("password was not replaced")
	}
}

func TestRecoverPassword_Guards(t *testing.T) {
	svc, users, _, _, _ := newTestService()
	user := mustSignup(t, svc, users)

	if _, err := svc.RecoverPassword(context.Background(), dto.RecoverPasswordRequest{Username: "nobody", Email: "x@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err := svc.RecoverPassword(context.Background(), dto.RecoverPasswordRequest{Username: "ada", Email: "wrong@example.com"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for email mismatch, got %v", err)
	}

	user.Enabled = false
	if _, err := svc.RecoverPassword(context.Background(), dto.RecoverPasswordRequest{Username: "ada", Email: "ada@example.com"}); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestSelfUpdate_RequiresCurrentPassword(t *testing.T) {
	svc, users, codes, _, _ := newTestService()
	user := mustSignup(t, svc, users)
	confirmUser(t, svc, codes, user.ID)

	_, err := svc.SelfUpdate(context.Background(), user.ID, dto.UpdateUserRequest{
		CurrentPassword: "wrong",
		FirstName:       "Grace",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSelfUpdate_EmailChangeResetsConfirmation(t *testing.T) {
	svc, users, codes, email, _ := newTestService()
	user := mustSignup(t, svc, users)
	confirmUser(t, svc, codes, user.ID)

	response, err := svc.SelfUpdate(context.Background(), user.ID, dto.UpdateUserRequest{
		CurrentPassword: "Str0ng#pass",
		Email:           "Ada.New@Example.com",
	})
	if err != nil {
		t.Fatalf("self update failed: %v", err)
	}
	stored := users.users[user.ID]
	if stored.Email != "ada.new@example.com" {
		t.Fatalf("email not normalized: %q", stored.Email)
	}
	if stored.EmailConfirmed {
		t.Fatalf("email change must reset the confirmation")
	}
	if codes.codes[user.ID] == nil {
		t.Fatalf("a fresh confirmation code must exist")
	}
	if last := email.sent[len(email.sent)-1]; last.To != "ada.new@example.com" {
		t.Fatalf("confirmation must go to the new address, got %q", last.To)
	}
	if response.Token == "" {
		t.Fatalf("a fresh token must be issued")
	}
}

func TestSelfUpdate_AdminKeepsUsername(t *testing.T) {
	svc, users, _, _, _ := newTestService()
	admin := &entity.User{
		ID:             uuid.New(),
		Username:       entity.AdminUsername,
		Email:          "admin@example.com",
		PasswordHash:   "h!Str0ng#pass",
		Enabled:        true,
		EmailConfirmed: true,
	}
	users.users[admin.ID] = admin

	if _, err := svc.SelfUpdate(context.Background(), admin.ID, dto.UpdateUserRequest{
		CurrentPassword: "Str0ng#pass",
		Username:        "superadmin",
	}); err != nil {
		t.Fatalf("self update failed: %v", err)
	}
	if users.users[admin.ID].Username != entity.AdminUsername {
		t.Fatalf("admin username must never change")
	}
}

func TestAdminAccountIsProtected(t *testing.T) {
	svc, users, _, _, _ := newTestService()
	admin := &entity.User{
		ID:             uuid.New(),
		Username:       entity.AdminUsername,
		Email:          "admin@example.com",
		Enabled:        true,
		EmailConfirmed: true,
	}
	users.users[admin.ID] = admin

	if err := svc.AdminUpdate(context.Background(), admin.ID, dto.UpdateAnyUserRequest{FirstName: "X"}); !errors.Is(err, ErrAdminProtected) {
		t.Fatalf("expected ErrAdminProtected on update, got %v", err)
	}
	if _, err := svc.ToggleEnabled(context.Background(), admin.ID); !errors.Is(err, ErrAdminProtected) {
		t.Fatalf("expected ErrAdminProtected on toggle, got %v", err)
	}
	if _, err := svc.DeleteUser(context.Background(), admin.ID); !errors.Is(err, ErrAdminProtected) {
		t.Fatalf("expected ErrAdminProtected on delete, got %v", err)
	}
}

func TestAdminUpdate_ChangesRoleWithoutReconfirmation(t *testing.T) {
	svc, users, codes, _, _ := newTestService()
	user := mustSignup(t, svc, users)
	confirmUser(t, svc, codes, user.ID)

	if err := svc.AdminUpdate(context.Background(), user.ID, dto.UpdateAnyUserRequest{
		Email: "moved@example.com",
		Role:  entity.RoleManager,
	}); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	stored := users.users[user.ID]
	if stored.Email != "moved@example.com" {
		t.Fatalf("email not updated: %q", stored.Email)
	}
	if !stored.EmailConfirmed {
		t.Fatalf("admin updates must not reset confirmation")
	}
	if len(stored.Roles) != 1 || stored.Roles[0].Name != entity.RoleManager {
		t.Fatalf("role not replaced: %+v", stored.Roles)
	}
}

func TestToggleAndDelete(t *testing.T) {
	svc, users, codes, _, _ := newTestService()
	user := mustSignup(t, svc, users)
	confirmUser(t, svc, codes, user.ID)

	toggled, err := svc.ToggleEnabled(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if toggled.Enabled {
		t.Fatalf("expected account to be disabled")
	}

	username, err := svc.DeleteUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if username != "ada" {
		t.Fatalf("unexpected username: %q", username)
	}
	if len(users.users) != 0 {
		t.Fatalf("user not removed")
	}
	if codes.codes[user.ID] != nil {
		t.Fatalf("confirmation codes must be removed with the user")
	}
}
