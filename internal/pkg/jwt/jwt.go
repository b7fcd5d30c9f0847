package jwt

import (
	"errors"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims are issued by the storefront's auth service. The profile fields let an
// authenticated customer skip the contact step.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name,omitempty"`
	Email  string    `json:"email,omitempty"`
	Phone  string    `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Profile() *checkout.Contact {
	if c.Name == "" && c.Email == "" && c.Phone == "" {
		return nil
	}
	return &checkout.Contact{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

type Options struct {
	Duration time.Duration
	// Issuer is stamped on issued tokens and, when set, required on validated ones.
	Issuer string
	Leeway time.Duration
}

type Service struct {
	secretKey []byte
	opts      Options
	parser    *jwt.Parser
	now       func() time.Time
}

func NewService(secretKey string, opts Options) *Service {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	return &Service{
		secretKey: []byte(secretKey),
		opts:      opts,
		parser:    jwt.NewParser(parserOpts...),
		now:       time.Now,
	}
}

func (s *Service) GenerateToken(userID uuid.UUID, profile checkout.Contact) (string, error) {
	return s.Sign(userID, profile, s.now())
}

// Sign issues a token as of issuedAt. Tests use it to mint tokens that are already expired.
func (s *Service) Sign(userID uuid.UUID, profile checkout.Contact, issuedAt time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		Name:   profile.Name,
		Email:  profile.Email,
		Phone:  profile.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.opts.Duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
