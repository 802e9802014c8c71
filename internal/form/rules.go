package form

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

var (
	validate     = validator.New()
	phonePattern = regexp.MustCompile(`^\+?[0-9\s]+$`)
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
)

// Violation is a failed rule: an i18n message key plus positional parameters.
type Violation struct {
	Key    string   `json:"key"`
	Params []string `json:"params,omitempty"`
}

// Rule checks one field value. now is the controller's clock, used by date rules.
// Rules other than Required accept the empty string; pair them with Required
// when the field is mandatory.
type Rule func(value string, now time.Time) *Violation

func violation(key string, params ...string) *Violation {
	return &Violation{Key: key, Params: params}
}

// Required fails when the value is empty after trimming.
func Required(key string) Rule {
	return func(value string, _ time.Time) *Violation {
		if strings.TrimSpace(value) == "" {
			return violation(key)
		}
		return nil
	}
}

// MinLength fails when the trimmed value is shorter than n runes.
func MinLength(n int, key string) Rule {
	return func(value string, _ time.Time) *Violation {
		if value == "" {
			return nil
		}
		if len([]rune(strings.TrimSpace(value))) < n {
			return violation(key, strconv.Itoa(n))
		}
		return nil
	}
}

// Digits requires exactly n ASCII digits.
func Digits(n int, key string) Rule {
	return func(value string, _ time.Time) *Violation {
		if value == "" {
			return nil
		}
		if len(value) != n || !digitsOnly.MatchString(value) {
			return violation(key, strconv.Itoa(n))
		}
		return nil
	}
}

// Pattern fails when value does not match re.
func Pattern(re *regexp.Regexp, key string) Rule {
	return func(value string, _ time.Time) *Violation {
		if value == "" {
			return nil
		}
		if !re.MatchString(value) {
			return violation(key)
		}
		return nil
	}
}

// Phone accepts an optional leading "+" followed by digits and spaces.
func Phone(key string) Rule {
	return Pattern(phonePattern, key)
}

// Email checks the value with the validator "email" tag.
func Email(key string) Rule {
	return func(value string, _ time.Time) *Violation {
		if value == "" {
			return nil
		}
		if err := validate.Var(value, "email"); err != nil {
			return violation(key)
		}
		return nil
	}
}

// Date requires a YYYY-MM-DD calendar date.
func Date(key string) Rule {
	return func(value string, _ time.Time) *Violation {
		if value == "" {
			return nil
		}
		if _, err := time.Parse(DateLayout, value); err != nil {
			return violation(key)
		}
		return nil
	}
}

// NotAfterToday fails for dates later than the current day. Unparseable
// values are left to Date.
func NotAfterToday(key string) Rule {
	return func(value string, now time.Time) *Violation {
		if value == "" {
			return nil
		}
		d, err := time.Parse(DateLayout, value)
		if err != nil {
			return nil
		}
		today, _ := time.Parse(DateLayout, now.Format(DateLayout))
		if d.After(today) {
			return violation(key)
		}
		return nil
	}
}

// IntRange requires an integer within [min, max].
func IntRange(min, max int, numberKey, minKey, maxKey string) Rule {
	return func(value string, _ time.Time) *Violation {
		if value == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return violation(numberKey)
		}
		if n < min {
			return violation(minKey, strconv.Itoa(min))
		}
		if n > max {
			return violation(maxKey, strconv.Itoa(max))
		}
		return nil
	}
}

// OneOf restricts the value to an enum.
func OneOf(key string, allowed ...string) Rule {
	return func(value string, _ time.Time) *Violation {
		if value == "" {
			return nil
		}
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return violation(key, strings.Join(allowed, ", "))
	}
}
