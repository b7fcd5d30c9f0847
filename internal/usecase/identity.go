package usecase

import (
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/jwt"
)

// IdentityResolver turns a bearer token into a customer identity for middleware.
type IdentityResolver interface {
	ResolveToken(tokenString string) (checkout.Identity, error)
}

type identityResolverImpl struct {
	jwtService *jwt.Service
}

func NewIdentityResolver(jwtService *jwt.Service) IdentityResolver {
	return &identityResolverImpl{
		jwtService: jwtService,
	}
}

func (r *identityResolverImpl) ResolveToken(tokenString string) (checkout.Identity, error) {
	claims, err := r.jwtService.ValidateToken(tokenString)
	if err != nil {
		return checkout.Identity{}, err
	}
	return checkout.Customer(claims.UserID, claims.Profile()), nil
}
