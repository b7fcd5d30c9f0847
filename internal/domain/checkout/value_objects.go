package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrEmptyName       = errors.New("name is required")
	ErrNegativeMoney   = errors.New("money cannot be negative")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrAmountTooLarge  = errors.New("amount exceeds the supported range")
)

const (
	MaxLineQuantity = 999
	// MaxAmountKobo caps any single price or total at NGN 10 billion.
	MaxAmountKobo = 1_000_000_000_000
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	if !emailRegex.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: strings.ToLower(s)}, nil
}

func (e Email) Value() string {
	return e.value
}

type Phone struct {
	value string
}

// NewPhone keeps a leading plus and the digits.
func NewPhone(s string, minDigits int) (Phone, error) {
	s = strings.TrimSpace(s)
	var b strings.Builder
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return Phone{}, ErrInvalidPhone
		}
	}
	if digits < minDigits {
		return Phone{}, ErrInvalidPhone
	}
	return Phone{value: b.String()}, nil
}

func (p Phone) Value() string {
	return p.value
}

// Money is an amount in kobo.
type Money struct {
	kobo int64
}

func NewMoney(kobo int64) (Money, error) {
	if kobo < 0 {
		return Money{}, ErrNegativeMoney
	}
	return Money{kobo: kobo}, nil
}

func MustMoney(kobo int64) Money {
	m, err := NewMoney(kobo)
	if err != nil {
		panic(err)
	}
	return m
}

func Naira(n int64) Money {
	return MustMoney(n * 100)
}

func (m Money) Kobo() int64 {
	return m.kobo
}

func (m Money) Naira() float64 {
	return float64(m.kobo) / 100.0
}

func (m Money) Add(other Money) Money {
	return Money{kobo: m.kobo + other.kobo}
}

func (m Money) Times(qty int) Money {
	return Money{kobo: m.kobo * int64(qty)}
}

// AddChecked fails instead of going past MaxAmountKobo.
func (m Money) AddChecked(other Money) (Money, error) {
	if other.kobo > MaxAmountKobo-m.kobo {
		return Money{}, ErrAmountTooLarge
	}
	return Money{kobo: m.kobo + other.kobo}, nil
}

// TimesChecked fails instead of going past MaxAmountKobo.
func (m Money) TimesChecked(qty int) (Money, error) {
	if qty < 0 {
		return Money{}, ErrInvalidQuantity
	}
	if qty > 0 && m.kobo > MaxAmountKobo/int64(qty) {
		return Money{}, ErrAmountTooLarge
	}
	return Money{kobo: m.kobo * int64(qty)}, nil
}

// Rate applies basis points, rounding half up.
func (m Money) Rate(bps int64) Money {
	return Money{kobo: (m.kobo*bps + 5000) / 10000}
}

func (m Money) IsZero() bool {
	return m.kobo == 0
}

func (m Money) String() string {
	return fmt.Sprintf("NGN %d.%02d", m.kobo/100, m.kobo%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.kobo, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	kobo, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	parsed, err := NewMoney(kobo)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
