package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/user"
	"github.com/tkalearning/lms/fs"
	"github.com/tkalearning/lms/services/email"
	"github.com/tkalearning/lms/storage/database/sqlx"
	"github.com/tkalearning/lms/tests"
)

type fixture struct {
	svc      *user.Service
	repo     user.Repository
	mailSvc  *emailsvc.ConsoleServiceMock
	validate *validator.Validate
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig(t)
	logger := testutil.NewLogger(t, conf)
	core.ParseEmailTemplates(appfs.FS, conf, logger)
	user.LoadCommonPasswords(appfs.FS, logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db := testutil.PrepareDB(t, conf)
	repo := sqlxrepos.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	return fixture{
		svc:      user.NewService(repo, mailSvc),
		repo:     repo,
		mailSvc:  mailSvc,
		validate: validate,
	}
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	nu := user.NewUser{
		Username:        " Ada_L ",
		Email:           "ADA@example.com",
		Password:        "Gr4ce-Hopper!",
		PasswordConfirm: "Gr4ce-Hopper!",
	}
	require.NoError(t, nu.Validate(ctx, f.validate, f.svc))
	usr, err := f.svc.Create(ctx, nu)
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, "ada_l", usr.Username)
	assert.Equal(t, "ada@example.com", usr.Email.String)
	assert.False(t, usr.IsAdmin)
	assert.NoError(t, usr.CheckPassword("Gr4ce-Hopper!"))

	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Hi ada_l,")
	assert.Contains(t, sent[0].HTMLContent, "ada_l")

	// taken username
	dup := user.NewUser{Username: "ada_l", Password: "Gr4ce-Hopper!", PasswordConfirm: "Gr4ce-Hopper!"}
	err = dup.Validate(ctx, f.validate, f.svc)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username", vErr.Fields[0].Field)

	// taken email
	dup = user.NewUser{Username: "grace", Email: "ada@example.com", Password: "Gr4ce-Hopper!", PasswordConfirm: "Gr4ce-Hopper!"}
	err = dup.Validate(ctx, f.validate, f.svc)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Fields[0].Field)
}

func TestNewUser_Validate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		nu      user.NewUser
		wantTag string
	}{
		{name: "missing username", nu: user.NewUser{Password: "Gr4ce-Hopper!", PasswordConfirm: "Gr4ce-Hopper!"}, wantTag: "required"},
		{name: "bad username", nu: user.NewUser{Username: "ada lovelace", Password: "Gr4ce-Hopper!", PasswordConfirm: "Gr4ce-Hopper!"}, wantTag: "alphanum_"},
		{name: "bad email", nu: user.NewUser{Username: "ada", Email: "nope", Password: "Gr4ce-Hopper!", PasswordConfirm: "Gr4ce-Hopper!"}, wantTag: "email"},
		{name: "mismatch", nu: user.NewUser{Username: "ada", Password: "Gr4ce-Hopper!", PasswordConfirm: "Gr4ce-Hopper?"}, wantTag: "eqfield"},
		{name: "short", nu: user.NewUser{Username: "ada", Password: "Ab1!", PasswordConfirm: "Ab1!"}, wantTag: "pwdminlen"},
		{name: "whitespace", nu: user.NewUser{Username: "ada", Password: "Gr4ce Hopper!", PasswordConfirm: "Gr4ce Hopper!"}, wantTag: "pwdnospace"},
		{name: "numeric", nu: user.NewUser{Username: "ada", Password: "1234567890", PasswordConfirm: "1234567890"}, wantTag: "pwdnotallnum"},
		{name: "simple", nu: user.NewUser{Username: "ada", Password: "gracehopper", PasswordConfirm: "gracehopper"}, wantTag: "pwdcplx"},
		{name: "similar", nu: user.NewUser{Username: "lovelace", Password: "L0velace!", PasswordConfirm: "L0velace!"}, wantTag: "pwdtoosim"},
		{name: "common", nu: user.NewUser{Username: "ada", Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd"}, wantTag: "pwdnocommon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			err := nu.Validate(ctx, f.validate, f.svc)
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			tags := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				tags = append(tags, fe.Tag())
			}
			assert.Contains(t, tags, tt.wantTag)
		})
	}
}

func TestService_resolve(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, f.repo, "ada", "", "", false)

	id, ok, err := f.svc.ResolveID(ctx, "ADA")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, usr.ID, id)

	id, ok, err = f.svc.ResolveID(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, id)

	auth, err := f.svc.ResolveAuthContext(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, core.AuthContext{UserID: usr.ID, Username: "ada"}, auth)

	_, err = f.svc.ResolveAuthContext(ctx, "ghost")
	assert.Equal(t, core.ErrUnauthenticated, err)

	// admin rights are read from the current record
	_, err = f.svc.SetAdmin(ctx, "ada", true)
	require.NoError(t, err)
	auth, err = f.svc.ResolveAuthContext(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, auth.IsAdmin)
}

func TestService_AddOrUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	usr, err := f.svc.AddOrUpdate(ctx, "Root", "root@example.com", "first", true)
	require.NoError(t, err)
	assert.Equal(t, "root", usr.Username)
	assert.True(t, usr.IsAdmin)

	updated, err := f.svc.AddOrUpdate(ctx, "root", "", "second", false)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, updated.ID)
	assert.False(t, updated.IsAdmin)
	assert.Equal(t, "root@example.com", updated.Email.String)

	got, err := f.svc.GetByUsernameOrEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("second"))

	got, err = f.svc.SetPassword(ctx, "root", "third")
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("third"))

	_, err = f.svc.SetAdmin(ctx, "ghost", true)
	assert.Equal(t, user.ErrNotFound, err)

	// no welcome mail outside registration
	assert.Empty(t, f.mailSvc.SentMessages())
}
