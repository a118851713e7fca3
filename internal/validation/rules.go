// Package validation holds the domain-level format rules for actor and
// co-owner fields: Mexican tax identifiers, CLABE bank accounts and
// property deed numbers.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	rfcPattern  = regexp.MustCompile(`^[A-ZÑ&]{3,4}\d{6}[A-Z0-9]{3}$`)
	curpPattern = regexp.MustCompile(`^[A-Z]{4}\d{6}[HM][A-Z]{5}[A-Z0-9]\d$`)
	deedPattern = regexp.MustCompile(`^[A-Z0-9-]{4,30}$`)
	clabeDigits = regexp.MustCompile(`^\d{18}$`)
)

var clabeWeights = [3]int{3, 7, 1}

var messages = map[string]string{
	"rfc":      "must be a valid RFC",
	"curp":     "must be a valid CURP",
	"clabe":    "must be an 18-digit CLABE with a valid check digit",
	"deed":     "must be 4-30 uppercase letters, digits or dashes",
	"required": "is required",
	"gte":      "must not be negative",
	"email":    "must be a valid email address",
}

// Validator wraps a validator.Validate with the domain rules registered.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, customRules)
	return &Validator{validate: v}
}

var customRules = map[string]func(string) bool{
	"rfc":   IsRFC,
	"curp":  IsCURP,
	"clabe": IsCLABE,
	"deed":  IsDeedNumber,
}

// mustRegister panics on a bad tag or nil rule; both are programming errors.
func mustRegister(v *validator.Validate, rules map[string]func(string) bool) {
	for tag, rule := range rules {
		if rule == nil {
			panic(fmt.Sprintf("validation: nil rule for tag %q", tag))
		}
		check := rule
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool { return check(fl.Field().String()) }); err != nil {
			panic(fmt.Sprintf("validation: register %q: %v", tag, err))
		}
	}
}

// Struct validates s and returns one human-readable message per failing
// field. A nil slice means s is valid.
func (v *Validator) Struct(s interface{}) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "failed " + fe.Tag() + " validation"
		}
		out = append(out, fmt.Sprintf("%s %s", fe.Field(), msg))
	}
	return out
}

func IsRFC(s string) bool {
	return rfcPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

func IsCURP(s string) bool {
	return curpPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

func IsDeedNumber(s string) bool {
	return deedPattern.MatchString(s)
}

// IsCLABE checks length and the weighted modulo-10 control digit.
func IsCLABE(s string) bool {
	if !clabeDigits.MatchString(s) {
		return false
	}
	sum := 0
	for i := 0; i < 17; i++ {
		sum += (int(s[i]-'0') * clabeWeights[i%3]) % 10
	}
	check := (10 - sum%10) % 10
	return check == int(s[17]-'0')
}
