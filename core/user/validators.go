package user

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/studymatch/core"
)

var (
	slotOrderTag  = "slotorder"
	slotOrderText = "end time must be after start time"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"

	pwdTexts = map[string]string{
		pwdMinLenTag:     pwdMinLenText,
		pwdNoSpaceTag:    pwdNoSpaceText,
		pwdNotAllNumTag:  pwdNotAllNumText,
		pwdComplexityTag: pwdComplexityText,
		pwdAttrSimTag:    pwdAttrSimText,
	}
)

// InitValidators registers the user validators & their translations.
func InitValidators(v *core.Validator) {
	v.RegisterStructValidation(userStructValidation, NewUser{}, Availability{})
	v.RegisterTranslation(slotOrderTag, slotOrderText)
	for tag, text := range pwdTexts {
		v.RegisterTranslation(tag, text)
	}
}

// userStructValidation does struct level validation on NewUser and Availability structs.
func userStructValidation(sl validator.StructLevel) {
	switch val := sl.Current().Interface().(type) {
	case NewUser:
		if tag := checkPassword(val.Password, val.Name, val.Email); tag != "" {
			sl.ReportError(val.Password, "password", "Password", tag, "")
		}
	case Availability:
		// HH:MM strings compare lexically
		if core.IsClockTime(val.StartTime) && core.IsClockTime(val.EndTime) && val.EndTime <= val.StartTime {
			sl.ReportError(val.EndTime, "end_time", "EndTime", slotOrderTag, "")
		}
	}
}

// passwordError converts a password policy violation into a ValidationError.
func passwordError(pwd, name, email string) error {
	if tag := checkPassword(pwd, name, email); tag != "" {
		return core.NewFieldError("password", pwdTexts[tag])
	}
	return nil
}

// checkPassword applies the password policy to provided password and returns the violated tag, if any:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
func checkPassword(pwd, name, email string) string {
	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	// - minLen: 8
	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range pwd {
		// - no whitespace
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == pwdLen {
		return pwdNotAllNumTag
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		return pwdComplexityTag
	}

	// - no user attrs similarity
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	if getRatio(lpwd, strings.ToLower(name)) >= pwdMaxSim || getRatio(lpwd, email) >= pwdMaxSim {
		return pwdAttrSimTag
	}
	return ""
}
