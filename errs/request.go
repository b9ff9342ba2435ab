package errs

import (
	"errors"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken = errors.New("No token provided")
	ErrExpiredToken = errors.New("Token expired")
	ErrInvalidToken = errors.New("Invalid token")
	ErrInvalidClaim = errors.New("Invalid token payload")
)

// Authentication & Authorization Error Constructors
func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrMissingToken,
		kind:       ErrUnauthorized,
	}
}

func NewExpiredTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrExpiredToken,
		kind:       ErrUnauthorized,
	}
}

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidToken,
		kind:       ErrUnauthorized,
	}
}

func NewInvalidClaimsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidClaim,
		kind:       ErrUnauthorized,
	}
}

func NewInvalidCredentialsError() *ApiErr {
	return NewUnauthorizedError("invalid email or password")
}

func IsMissingTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

func IsExpiredTokenError(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
