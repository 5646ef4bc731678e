package account

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
)

const (
	minNicknameLength = 2
	maxNicknameLength = 10
	minPasswordLength = 8
)

var phonePattern = regexp.MustCompile(`^010-\d{4}-\d{4}$`)

func validateEmail(email, domain string) error {
	if email == "" {
		return svcErr.Invalid("email", "email is required")
	}
	if !strings.HasSuffix(email, domain) || len(email) == len(domain) {
		return svcErr.Invalidf("email", "email must be a %s address", domain)
	}
	return nil
}

func validatePassword(password, confirm string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return svcErr.Invalidf("password", "password must be at least %d characters", minPasswordLength)
	}
	if password != confirm {
		return svcErr.Invalid("password_confirm", "passwords do not match")
	}
	return nil
}

func validateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < minNicknameLength || n > maxNicknameLength {
		return svcErr.Invalidf("nickname", "nickname must be %d to %d characters", minNicknameLength, maxNicknameLength)
	}
	return nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return svcErr.Invalid("phone", "phone must look like 010-1234-5678")
	}
	return nil
}

func validateDepartment(department string) error {
	if !db.IsDepartment(department) {
		return svcErr.Invalidf("department", "unknown department %q", department)
	}
	return nil
}

func validateRoute(from, to string) error {
	if !db.IsLocation(from) {
		return svcErr.Invalidf("from_location", "unknown location %q", from)
	}
	if !db.IsLocation(to) {
		return svcErr.Invalidf("to_location", "unknown location %q", to)
	}
	if from == to {
		return svcErr.Invalid("to_location", "origin and destination must differ")
	}
	return nil
}
