package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	strutil "usergate/pkg/platform/strings"
)

const (
	msgNameRequired  = "Nome é obrigatório"
	msgNameTooShort  = "Nome deve ter pelo menos 2 caracteres"
	msgNameTooLong   = "Nome muito longo"
	msgNameFullName  = "Por favor, informe nome e sobrenome"
	msgNameCharset   = "Nome contém caracteres inválidos"
	msgNameNoLetters = "Nome deve conter letras"
)

// Name collapses whitespace in name and checks length, the first+last name
// requirement and the allowed character set. The collapsed value is the one
// callers persist.
func (v *Validator) Name(name string) Result {
	normalized := strutil.CollapseSpace(name)
	res := Result{Value: normalized}

	n := utf8.RuneCountInString(normalized)
	switch {
	case n == 0:
		res.fail(msgNameRequired)
	case n < v.policy.NameMinLen:
		res.fail(msgNameTooShort)
	case n > v.policy.NameMaxLen:
		res.fail(msgNameTooLong)
	case !strings.Contains(normalized, " "):
		res.fail(msgNameFullName)
	case strings.IndexFunc(normalized, notNameRune) >= 0:
		res.fail(msgNameCharset)
	case !strutil.HasLetter(normalized):
		res.fail(msgNameNoLetters)
	}
	return res
}

func notNameRune(r rune) bool {
	return !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\''
}
