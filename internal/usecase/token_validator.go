package usecase

//go:generate mockgen -source=token_validator.go -destination=../../tests/mock/usecase/token_validator_mock.go -package=usecasemock

import (
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/pkg/jwt"

	"github.com/google/uuid"
)

var ErrUnknownRole = errs.New("unknown operator role")

// TokenValidator provides operator token validation for the admin middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, jwt.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, jwt.Role, error) {
	operatorID, role, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}

	switch role {
	case jwt.RoleViewer, jwt.RoleOperator, jwt.RoleAdmin:
		return operatorID, role, nil
	default:
		return uuid.Nil, "", ErrUnknownRole
	}
}
