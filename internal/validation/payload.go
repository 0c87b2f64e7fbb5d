package validation

const msgNotText = "Valor deve ser um texto"

// Payload carries the normalized user fields. A nil field was absent from the
// input.
type Payload struct {
	Name     *string
	Email    *string
	Password *string
	Phone    *string
}

// Errors maps a field name to its ordered violations.
type Errors map[string][]string

// UserPayload validates a decoded user body. Name and email are required
// unless isUpdate is set and the field is absent; password and phone are only
// checked when present. All fields are validated before returning.
func (v *Validator) UserPayload(data map[string]any, isUpdate bool) (Payload, Errors) {
	var out Payload
	errs := Errors{}

	check := func(field string, required bool, rule func(string) Result) *string {
		raw, present := data[field]
		if !present && !required {
			return nil
		}
		s, ok := text(raw)
		if !ok {
			errs[field] = []string{msgNotText}
			return nil
		}
		res := rule(s)
		if !res.Valid() {
			errs[field] = res.Errors
			return nil
		}
		return &res.Value
	}

	out.Name = check("name", !isUpdate, v.Name)
	out.Email = check("email", !isUpdate, v.Email)
	out.Password = check("password", false, v.Password)
	out.Phone = check("phone", false, v.Phone)

	if len(errs) == 0 {
		return out, nil
	}
	return out, errs
}

// PasswordChange validates a password change request: the current password
// must be given, the new one must satisfy the policy and match confirm.
func (v *Validator) PasswordChange(oldPassword, newPassword, confirm string) Errors {
	errs := Errors{}
	if oldPassword == "" {
		errs["old_password"] = []string{msgOldPasswordMissing}
	}
	if newPassword == "" {
		errs["new_password"] = []string{msgPasswordRequired}
	} else if res := v.Password(newPassword); !res.Valid() {
		errs["new_password"] = res.Errors
	}
	if newPassword != confirm {
		errs["confirm_password"] = []string{msgPasswordMismatch}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// text accepts strings and treats JSON null as empty.
func text(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	default:
		return "", false
	}
}

// ValidateUserPayload runs UserPayload with the default policy.
func ValidateUserPayload(data map[string]any, isUpdate bool) (Payload, Errors) {
	return defaultValidator.UserPayload(data, isUpdate)
}

// ValidatePasswordChange runs PasswordChange with the default policy.
func ValidatePasswordChange(oldPassword, newPassword, confirm string) Errors {
	return defaultValidator.PasswordChange(oldPassword, newPassword, confirm)
}
