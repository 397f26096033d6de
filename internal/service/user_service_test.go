package service

import (
	"context"
	"errors"
	"testing"

	"github.com/astro81/pathsala-backend/internal/dto"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/testutil"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
)

func TestChangeRole_AlwaysRefused(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)

	for _, role := range []string{model.RoleAdmin, model.RoleModerator, model.RoleStudent} {
		err := env.svc.User.ChangeRole(ctx, env.admin, "asha", role)
		if !errors.Is(err, ErrImmutableRole) {
			t.Errorf("role %s: expected ErrImmutableRole, got: %v", role, err)
		}
	}
	if got := testutil.Reload(t, env.db, student.UserID).Role; got != model.RoleStudent {
		t.Errorf("role changed to %s", got)
	}

	if err := env.svc.User.ChangeRole(ctx, env.moderator, "asha", model.RoleAdmin); apperrors.KindOf(err) != apperrors.KindPermissionDenied {
		t.Errorf("expected permission denied for moderator, got: %v", err)
	}
	if err := env.svc.User.ChangeRole(ctx, env.admin, "ghost", model.RoleAdmin); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestUpdateProfile_StudentContact(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)

	email := "ASHA.NEW@example.com"
	addr := " Pokhara "
	phone := "+977-9811111111"
	resp, err := env.svc.User.UpdateProfile(ctx, student, &dto.UpdateProfileRequest{
		Email:   &email,
		Address: &addr,
		PhoneNo: &phone,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if resp.Email != "asha.new@example.com" {
		t.Errorf("expected lowercased email, got %s", resp.Email)
	}
	if resp.Role != model.RoleStudent {
		t.Errorf("role must not change, got %s", resp.Role)
	}

	got := testutil.Reload(t, env.db, student.UserID)
	if deref(got.Student.Address) != "Pokhara" || deref(got.Student.PhoneNo) != "+9779811111111" {
		t.Errorf("unexpected contact %q %q", deref(got.Student.Address), deref(got.Student.PhoneNo))
	}
}

func TestUpdateProfile_Rejects(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	testutil.CreateUser(t, env.db, "ravi", model.RoleStudent)

	addr := "Somewhere"
	if _, err := env.svc.User.UpdateProfile(ctx, env.moderator, &dto.UpdateProfileRequest{Address: &addr}); !errors.Is(err, ErrStudentProfileMissing) {
		t.Errorf("expected ErrStudentProfileMissing, got: %v", err)
	}

	bad := "12"
	if _, err := env.svc.User.UpdateProfile(ctx, student, &dto.UpdateProfileRequest{PhoneNo: &bad}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("expected validation error, got: %v", err)
	}

	taken := "ravi@example.com"
	if _, err := env.svc.User.UpdateProfile(ctx, student, &dto.UpdateProfileRequest{Email: &taken}); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("expected ErrDuplicateIdentity, got: %v", err)
	}
}

func TestMe_ListsCapabilities(t *testing.T) {
	env := newSQLEnv(t)

	resp, err := env.svc.User.Me(context.Background(), env.moderator)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	has := map[string]bool{}
	for _, c := range resp.Capabilities {
		has[c] = true
	}
	if !has["edit_course"] || has["delete_course"] {
		t.Errorf("unexpected capabilities %v", resp.Capabilities)
	}
}

func TestSelfDeactivate(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, env.db, "asha", model.RoleStudent)

	if err := env.svc.User.SelfDeactivate(ctx, env.admin, &dto.SelfDeactivateRequest{Username: "admin", Password: testutil.Password}); !errors.Is(err, ErrAdminSelfDeactivation) {
		t.Errorf("expected ErrAdminSelfDeactivation, got: %v", err)
	}
	if err := env.svc.User.SelfDeactivate(ctx, student, &dto.SelfDeactivateRequest{Username: "someone", Password: testutil.Password}); !errors.Is(err, ErrConfirmationMismatch) {
		t.Errorf("expected ErrConfirmationMismatch, got: %v", err)
	}
	if err := env.svc.User.SelfDeactivate(ctx, student, &dto.SelfDeactivateRequest{Username: "asha", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}

	if err := env.svc.User.SelfDeactivate(ctx, student, &dto.SelfDeactivateRequest{Username: "asha", Password: testutil.Password}); err != nil {
		t.Fatalf("self deactivate: %v", err)
	}
	if testutil.Reload(t, env.db, student.UserID).IsActive {
		t.Error("expected account inactive")
	}
}

func TestDeactivate_ByAdmin(t *testing.T) {
	env := newSQLEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	ravi := testutil.CreateUser(t, env.db, "ravi", model.RoleStudent)

	if err := env.svc.User.Deactivate(ctx, env.admin, "admin", &dto.AdminDeactivateRequest{Username: "admin"}); !errors.Is(err, ErrCannotDeactivateSelf) {
		t.Errorf("expected ErrCannotDeactivateSelf, got: %v", err)
	}
	if err := env.svc.User.Deactivate(ctx, env.admin, "asha", &dto.AdminDeactivateRequest{Username: "ravi"}); !errors.Is(err, ErrConfirmationMismatch) {
		t.Errorf("expected ErrConfirmationMismatch, got: %v", err)
	}
	if err := env.svc.User.Deactivate(ctx, env.moderator, "asha", &dto.AdminDeactivateRequest{Username: "asha"}); apperrors.KindOf(err) != apperrors.KindPermissionDenied {
		t.Errorf("expected permission denied, got: %v", err)
	}

	if err := env.svc.User.Deactivate(ctx, env.admin, "ravi", &dto.AdminDeactivateRequest{Username: "ravi"}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if testutil.Reload(t, env.db, ravi.UserID).IsActive {
		t.Error("expected ravi inactive")
	}
	if err := env.svc.User.Reactivate(ctx, env.admin, "ravi"); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !testutil.Reload(t, env.db, ravi.UserID).IsActive {
		t.Error("expected ravi active again")
	}

	if err := env.svc.User.Deactivate(ctx, env.admin, "asha", &dto.AdminDeactivateRequest{Username: "asha", Permanent: true}); err != nil {
		t.Fatalf("permanent delete: %v", err)
	}
	if _, err := env.svc.User.GetByUsername(ctx, env.admin, "asha"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got: %v", err)
	}
}

func TestListUsers_Filters(t *testing.T) {
	env := newSQLEnv(t)
	testutil.CreateUser(t, env.db, "asha", model.RoleStudent)
	testutil.CreateUser(t, env.db, "ravi", model.RoleStudent)

	list, total, err := env.svc.User.List(context.Background(), env.admin, &dto.UserListRequest{Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("expected 2 students, got %d/%d", total, len(list))
	}

	if _, _, err := env.svc.User.List(context.Background(), env.moderator, &dto.UserListRequest{}); apperrors.KindOf(err) != apperrors.KindPermissionDenied {
		t.Errorf("expected permission denied, got: %v", err)
	}
}
