// Package validate checks struct fields against rules declared in a
// `validate` tag and reports the first failing rule per field.
//
// Rules are comma-separated. Multi-value parameters use spaces:
//
//	required         value must not be empty
//	nullable         an empty value skips the remaining rules
//	email            looks like an email address
//	url              absolute http(s) URL
//	numeric          parses as a number
//	digits=N         exactly N decimal digits (phone numbers, pincodes)
//	min=N / max=N    string length, or numeric value for number fields
//	gte=N / lte=N    numeric bounds
//	gt=N             numeric value strictly greater than N
//	in=a b c         value is one of the listed words
//
// Errors are keyed by the field's JSON name:
//
//	type SignupInput struct {
//	    Email    string `json:"email"    validate:"required,email"`
//	    Password string `json:"password" validate:"required,min=6"`
//	    Phone    string `json:"phone"    validate:"nullable,digits=10"`
//	}
//	errs := validate.Struct(in) // map[string]string{"email": "..."}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

type rule func(field, param string, v reflect.Value) string

var rules map[string]rule

func init() {
	rules = map[string]rule{
		"required": required,
		"email":    email,
		"url":      absURL,
		"numeric":  numeric,
		"digits":   digits,
		"min":      minRule,
		"max":      maxRule,
		"gte":      bound(func(a, b float64) bool { return a >= b }, "greater than or equal to"),
		"lte":      bound(func(a, b float64) bool { return a <= b }, "less than or equal to"),
		"gt":       bound(func(a, b float64) bool { return a > b }, "greater than"),
		"in":       in,
	}
}

// Struct validates every tagged field of v (a struct or pointer to one).
// An empty map means v is valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || !f.IsExported() {
			continue
		}
		name := FieldName(f)
		if msg := check(name, tag, rv.Field(i)); msg != "" {
			errs[name] = msg
		}
	}
	return errs
}

// Value validates a single value against a rule tag. It returns "" when v
// passes.
func Value(field string, v interface{}, tag string) string {
	return check(field, tag, reflect.ValueOf(v))
}

// HasErrors reports whether errs is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func check(name, tag string, v reflect.Value) string {
	list := strings.Split(tag, ",")
	for _, r := range list {
		if strings.TrimSpace(r) == "nullable" && isEmpty(v) {
			return ""
		}
	}
	for _, r := range list {
		key, param, _ := strings.Cut(strings.TrimSpace(r), "=")
		fn, ok := rules[key]
		if !ok {
			continue
		}
		if msg := fn(name, param, v); msg != "" {
			return msg
		}
	}
	return ""
}

var (
	emailRE  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitsRE = regexp.MustCompile(`^\d+$`)
)

func required(field, _ string, v reflect.Value) string {
	if isEmpty(v) {
		return fmt.Sprintf("The %s field is required.", field)
	}
	return ""
}

func email(field, _ string, v reflect.Value) string {
	if !emailRE.MatchString(str(v)) {
		return fmt.Sprintf("The %s must be a valid email address.", field)
	}
	return ""
}

func absURL(field, _ string, v reflect.Value) string {
	u, err := url.ParseRequestURI(str(v))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Sprintf("The %s must be a valid URL.", field)
	}
	return ""
}

func numeric(field, _ string, v reflect.Value) string {
	if isNumber(v) {
		return ""
	}
	if _, err := strconv.ParseFloat(str(v), 64); err != nil {
		return fmt.Sprintf("The %s field must be a number.", field)
	}
	return ""
}

func digits(field, param string, v reflect.Value) string {
	s := str(v)
	n, _ := strconv.Atoi(param)
	if !digitsRE.MatchString(s) || len(s) != n {
		return fmt.Sprintf("The %s must be %s digits.", field, param)
	}
	return ""
}

func minRule(field, param string, v reflect.Value) string {
	n := num(param)
	if isNumber(v) {
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		return ""
	}
	if float64(len([]rune(str(v)))) < n {
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	}
	return ""
}

func maxRule(field, param string, v reflect.Value) string {
	n := num(param)
	if isNumber(v) {
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
		return ""
	}
	if float64(len([]rune(str(v)))) > n {
		return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
	}
	return ""
}

func bound(ok func(a, b float64) bool, phrase string) rule {
	return func(field, param string, v reflect.Value) string {
		if !ok(toFloat(v), num(param)) {
			return fmt.Sprintf("The %s must be %s %s.", field, phrase, param)
		}
		return ""
	}
}

func in(field, param string, v reflect.Value) string {
	s := str(v)
	for _, allowed := range strings.Fields(param) {
		if s == allowed {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", field)
}

// FieldName returns the JSON name of f, or its lower-cased Go name.
func FieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func str(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	if isNumber(v) {
		return toFloat(v) == 0
	}
	return false
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return num(str(v))
}

func num(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
