package validation

import (
	"strings"

	strutil "usergate/pkg/platform/strings"
)

const (
	msgPhoneTooShort = "Telefone muito curto"
	msgPhoneTooLong  = "Telefone muito longo"
	msgPhoneAreaCode = "DDD inválido"
	msgPhoneMobile   = "Número de celular deve começar com 9"
)

// Phone strips non-digits, removes the country code from numbers longer than
// a local number and checks the area code and the mobile prefix. An empty
// phone is valid; the field is optional. The returned value is the local
// digit string.
func (v *Validator) Phone(phone string) Result {
	p := v.policy
	if strings.TrimSpace(phone) == "" {
		return Result{}
	}

	digits := strutil.DigitsOnly(phone)
	res := Result{Value: digits}
	switch {
	case len(digits) < p.PhoneMinDigits:
		res.fail(msgPhoneTooShort)
		return res
	case len(digits) > p.PhoneMaxDigits:
		res.fail(msgPhoneTooLong)
		return res
	}

	if strings.HasPrefix(digits, p.CountryCode) && len(digits) > p.LocalDigits {
		digits = digits[len(p.CountryCode):]
		res.Value = digits
	}

	// Area codes run 10 to 99, so only a leading zero is invalid.
	if digits[0] == '0' {
		res.fail(msgPhoneAreaCode)
		return res
	}
	if len(digits) == p.LocalDigits && digits[2] != '9' {
		res.fail(msgPhoneMobile)
	}
	return res
}
