// Package validation holds the account input rules. Error strings are
// the user-facing localized messages and are returned verbatim by the
// auth endpoints.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_\x{4e00}-\x{9fa5}]+$`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	digitRe    = regexp.MustCompile(`\d`)
)

// Result collects every violated rule for one submission.
type Result struct {
	Errors []string
}

// Valid reports whether no rule was violated.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Message joins all violations into the single user-facing string.
func (r Result) Message() string { return strings.Join(r.Errors, ", ") }

// Email checks syntactic validity and the 254-char cap.
func Email(email string) Result {
	var r Result
	switch {
	case email == "":
		r.Errors = append(r.Errors, "邮箱地址不能为空")
	case !emailRe.MatchString(email):
		r.Errors = append(r.Errors, "请输入有效的邮箱地址")
	case len(email) > 254:
		r.Errors = append(r.Errors, "邮箱地址过长")
	}
	return r
}

// Password requires 6-128 chars with at least one lowercase letter,
// one uppercase letter and one digit.
func Password(password string) Result {
	var r Result
	if password == "" {
		r.Errors = append(r.Errors, "密码不能为空")
		return r
	}
	if len(password) < 6 {
		r.Errors = append(r.Errors, "密码至少需要6个字符")
	}
	if len(password) > 128 {
		r.Errors = append(r.Errors, "密码过长")
	}
	if !lowerRe.MatchString(password) {
		r.Errors = append(r.Errors, "密码必须包含至少一个小写字母")
	}
	if !upperRe.MatchString(password) {
		r.Errors = append(r.Errors, "密码必须包含至少一个大写字母")
	}
	if !digitRe.MatchString(password) {
		r.Errors = append(r.Errors, "密码必须包含至少一个数字")
	}
	return r
}

// Username allows 2-30 chars of letters, digits, underscore and CJK.
// Length counts runes so CJK names are not penalized.
func Username(username string) Result {
	var r Result
	if username == "" {
		r.Errors = append(r.Errors, "用户名不能为空")
		return r
	}
	n := utf8.RuneCountInString(username)
	if n < 2 {
		r.Errors = append(r.Errors, "用户名至少需要2个字符")
	}
	if n > 30 {
		r.Errors = append(r.Errors, "用户名不能超过30个字符")
	}
	if !usernameRe.MatchString(username) {
		r.Errors = append(r.Errors, "用户名只能包含字母、数字、下划线和中文字符")
	}
	return r
}

// Registration validates all three registration inputs, concatenating
// violations in email, username, password order.
func Registration(email, username, password string) Result {
	var r Result
	r.Errors = append(r.Errors, Email(email).Errors...)
	r.Errors = append(r.Errors, Username(username).Errors...)
	r.Errors = append(r.Errors, Password(password).Errors...)
	return r
}

// Login only requires both fields to be present; credential checking
// happens against the store.
func Login(email, password string) Result {
	var r Result
	if email == "" {
		r.Errors = append(r.Errors, "邮箱地址不能为空")
	}
	if password == "" {
		r.Errors = append(r.Errors, "密码不能为空")
	}
	return r
}
