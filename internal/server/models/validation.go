package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/identity/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

var (
	emailRules     = []validation.Rule{validation.Required, validation.RuneLength(3, 100), is.Email}
	usernameRules  = []validation.Rule{validation.RuneLength(2, 50)}
	nameRules      = []validation.Rule{validation.RuneLength(3, 50)}
	passwordRules  = []validation.Rule{validation.Required, validation.By(passwordFitsHasher)}
	roleLabelRules = []validation.Rule{validation.Required, validation.RuneLength(1, 50)}
)

// NewAccount is the signup input of the account creation transaction.
// Password is plaintext; it is hashed by the creation path, never stored.
type NewAccount struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Username     string   `json:"username"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Roles        []string `json:"roles"`
	RefreshToken string   `json:"refresh_token"`
}

// Normalize trims surrounding blanks and lower-cases the email so uniqueness
// is case-insensitive. Role labels are trimmed into a fresh slice; the caller's
// slice is not modified. The password is left untouched.
func (n *NewAccount) Normalize() {
	n.Email = NormalizeEmail(n.Email)
	n.Username = strings.TrimSpace(n.Username)
	n.FirstName = strings.TrimSpace(n.FirstName)
	n.LastName = strings.TrimSpace(n.LastName)

	if n.Roles == nil {
		return
	}
	roles := make([]string, 0, len(n.Roles))
	for _, label := range n.Roles {
		roles = append(roles, strings.TrimSpace(label))
	}
	n.Roles = roles
}

// NormalizeEmail is the canonical form under which emails are stored and
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate returns nil or one *common.ValidationError per offending field,
// joined with errors.Join.
func (n NewAccount) Validate() error {
	err := validation.ValidateStruct(&n,
		validation.Field(&n.Email, emailRules...),
		validation.Field(&n.Password, passwordRules...),
		validation.Field(&n.Username, usernameRules...),
		validation.Field(&n.FirstName, nameRules...),
		validation.Field(&n.LastName, nameRules...),
	)

	errs := toValidationErrors(err)
	seen := make(map[string]struct{}, len(n.Roles))
	for i, label := range n.Roles {
		if err := validation.Validate(label, roleLabelRules...); err != nil {
			errs = append(errs, common.NewValidationError(fmt.Sprintf("roles[%d]", i), err.Error()))
			continue
		}
		// one Role record per label: a repeat is rejected, not merged
		if _, ok := seen[label]; ok {
			errs = append(errs, common.NewValidationError(fmt.Sprintf("roles[%d]", i), "must be unique"))
			continue
		}
		seen[label] = struct{}{}
	}
	return errors.Join(errs...)
}

// ProfileUpdate changes the optional attributes of an account. Nil fields are
// left as they are; an empty string clears the attribute.
type ProfileUpdate struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (p *ProfileUpdate) Normalize() {
	for _, f := range []*string{p.Username, p.FirstName, p.LastName} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (p ProfileUpdate) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Username, usernameRules...),
		validation.Field(&p.FirstName, nameRules...),
		validation.Field(&p.LastName, nameRules...),
	)
	return errors.Join(toValidationErrors(err)...)
}

// Apply copies the set fields of p onto a.
func (p ProfileUpdate) Apply(a *Account) {
	if p.Username != nil {
		a.Username = *p.Username
	}
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
}

// ValidatePassword checks a replacement password against the signup rules.
func ValidatePassword(password string) error {
	if err := validation.Validate(password, passwordRules...); err != nil {
		return common.NewValidationError("password", err.Error())
	}
	return nil
}

// ValidateRoleLabel checks a label added to an existing account.
func ValidateRoleLabel(label string) error {
	if err := validation.Validate(label, roleLabelRules...); err != nil {
		return common.NewValidationError("role", err.Error())
	}
	return nil
}

func passwordFitsHasher(value any) error {
	s, _ := value.(string)
	if len(s) > maxPasswordBytes {
		return fmt.Errorf("must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func toValidationErrors(err error) []error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return []error{err}
	}

	fields := make([]string, 0, len(fieldErrs))
	for f := range fieldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]error, 0, len(fields))
	for _, f := range fields {
		out = append(out, common.NewValidationError(f, fieldErrs[f].Error()))
	}
	return out
}
