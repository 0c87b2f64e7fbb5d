package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	msgPasswordTooShort   = "A senha deve ter no mínimo 8 caracteres"
	msgPasswordTooLong    = "A senha não pode ter mais de 128 caracteres"
	msgPasswordNoUpper    = "A senha deve conter pelo menos uma letra maiúscula"
	msgPasswordNoLower    = "A senha deve conter pelo menos uma letra minúscula"
	msgPasswordNoDigit    = "A senha deve conter pelo menos um número"
	msgPasswordNoSpecial  = "A senha deve conter pelo menos um caractere especial"
	msgPasswordCommon     = "Senha muito comum, escolha uma senha mais segura"
	msgPasswordDigitRun   = "Evite sequências numéricas óbvias"
	msgPasswordLetterRun  = "Evite sequências alfabéticas óbvias"
	msgPasswordRequired   = "A senha é obrigatória"
	msgPasswordMismatch   = "As senhas não coincidem"
	msgOldPasswordMissing = "A senha atual é obrigatória"
)

// Password checks every password rule and reports all violations. The value
// is returned unchanged.
func (v *Validator) Password(password string) Result {
	p := v.policy
	res := Result{Value: password}

	n := utf8.RuneCountInString(password)
	if n < p.PasswordMinLen {
		res.fail(msgPasswordTooShort)
	}
	if n > p.PasswordMaxLen {
		res.fail(msgPasswordTooLong)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(p.PasswordSpecials, r):
			special = true
		}
	}
	if !upper {
		res.fail(msgPasswordNoUpper)
	}
	if !lower {
		res.fail(msgPasswordNoLower)
	}
	if !digit {
		res.fail(msgPasswordNoDigit)
	}
	if !special {
		res.fail(msgPasswordNoSpecial)
	}

	if _, ok := p.CommonPasswords[strings.ToLower(password)]; ok {
		res.fail(msgPasswordCommon)
	}
	if hasDigitRun(password) {
		res.fail(msgPasswordDigitRun)
	}
	if hasLetterRun(strings.ToLower(password)) {
		res.fail(msgPasswordLetterRun)
	}

	return res
}

// hasDigitRun reports a run of three ascending digits, 012 through 890.
// Only 890 wraps; 901 is not a run.
func hasDigitRun(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		a, b, c := s[i], s[i+1], s[i+2]
		if a >= '0' && c <= '9' && b == a+1 && c == b+1 {
			return true
		}
		if a == '8' && b == '9' && c == '0' {
			return true
		}
	}
	return false
}

// hasLetterRun reports a run of three ascending consecutive ASCII letters in
// an already lowercased string.
func hasLetterRun(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		a, b, c := s[i], s[i+1], s[i+2]
		if a >= 'a' && c <= 'z' && b == a+1 && c == b+1 {
			return true
		}
	}
	return false
}
