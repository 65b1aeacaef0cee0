package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/noteboard/internal/server/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterForm carries the registration fields. Validation bounds follow the
// account schema: usernames 5-20 chars, emails 5-50, names 1-30.
type RegisterForm struct {
	Username  string `validate:"required,min=5,max=20"`
	Password  string `validate:"required,min=5,max=100"`
	Email     string `validate:"required,email,min=5,max=50"`
	FirstName string `validate:"required,max=30"`
	LastName  string `validate:"required,max=30"`
}

type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required,min=5,max=100"`
}

// NoteForm is shared by the add and update flows.
type NoteForm struct {
	Title   string `validate:"required,max=100"`
	Content string `validate:"required"`
}

func parseRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		Email:     r.PostFormValue("email"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
	}
}

func registerParams(f *RegisterForm) services.RegisterParams {
	return services.RegisterParams{
		Username:  f.Username,
		Password:  f.Password,
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	}
}

func parseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
}

func parseNoteForm(r *http.Request) *NoteForm {
	return &NoteForm{
		Title:   r.PostFormValue("title"),
		Content: r.PostFormValue("content"),
	}
}

// checkForm validates a form struct and returns one message per failing
// field, keyed by the struct field name.
func checkForm(form any) map[string]string {
	errs := map[string]string{}

	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["Form"] = "Invalid input."
		return errs
	}

	for _, fe := range verrs {
		errs[fe.Field()] = fieldErrorMessage(fe)
	}
	return errs
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
	default:
		return "Invalid value."
	}
}
