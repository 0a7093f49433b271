package core

import "errors"

var (
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidNonce       = errors.New("nonce already used")
	ErrInvalidAddress     = errors.New("invalid ethereum address")
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrUserRejected is returned by wallet providers when the user
	// declines the signature request.
	ErrUserRejected = errors.New("user rejected signature request")

	ErrSessionInvalid       = errors.New("session is invalid")
	ErrStoreOperationFailed = errors.New("store operation failed")

	// ErrInvalidToken is returned when an API bearer token fails validation.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)
