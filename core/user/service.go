package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tkalearning/lms/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		// CheckUsernameUniqueness returns ErrUsernameExists or ErrEmailExists when taken.
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedIDs ...int) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error)
		// UpdateUser saves Email, PasswordHash and IsAdmin.
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email string, exclIDs ...int) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclIDs...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create registers a validated NewUser and sends them a welcome email when they gave an address.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Username:  nu.Username,
		Email:     null.NewString(nu.Email, nu.Email != ""),
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrUsernameExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *Service) sendWelcomeMail(usr User) {
	if !usr.Email.Valid || svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Username, Address: usr.Email.String}},
		Subject:      "Welcome to TKA Learning",
		TemplateName: "welcome",
		TemplateData: map[string]interface{}{"Username": usr.Username},
	})
}

// AddOrUpdate creates the user or, when the username exists, overwrites their password,
// email and admin flag. Password policy is not enforced.
func (svc *Service) AddOrUpdate(ctx context.Context, uname, email, pwd string, isAdmin bool) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := svc.repo.GetUserByUsername(ctx, uname)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		usr = User{Username: uname, CreatedAt: time.Now().UTC()}
	default:
		return User{}, err
	}

	if email != "" {
		usr.Email = null.StringFrom(email)
	}
	usr.IsAdmin = isAdmin
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	if usr.ID == 0 {
		return svc.repo.CreateUser(ctx, usr)
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

// ResolveID maps a username to its user id. ok is false when no such user exists.
func (svc *Service) ResolveID(ctx context.Context, uname string) (id int, ok bool, err error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	return usr.ID, true, nil
}

// ResolveAuthContext builds the AuthContext of uname from its current record.
// Unknown users resolve to core.ErrUnauthenticated.
func (svc *Service) ResolveAuthContext(ctx context.Context, uname string) (core.AuthContext, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.AuthContext{}, core.ErrUnauthenticated
		}
		return core.AuthContext{}, errors.Wrap(err, "finding user by username")
	}
	return usr.AuthContext(), nil
}

// SetAdmin grants or revokes admin rights.
func (svc *Service) SetAdmin(ctx context.Context, uname string, isAdmin bool) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return User{}, err
	}
	usr.IsAdmin = isAdmin
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetPassword(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdateUser(ctx, usr)
}
