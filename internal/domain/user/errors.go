package user

import "metric-backend/internal/domain/apperr"

var (
	ErrNotFound            = apperr.New(apperr.KindNotFound, "UserNotFound", "user not found")
	ErrAlreadyExists       = apperr.New(apperr.KindDuplicate, "UserExists", "user already exists")
	ErrInsufficientBalance = apperr.New(apperr.KindInsufficientFunds, "InsufficientBalance", "insufficient balance")
	ErrWalletAlreadyLinked = apperr.New(apperr.KindDuplicate, "WalletAlreadyLinked", "a wallet is already linked to this account")
	ErrAddressInUse        = apperr.New(apperr.KindDuplicate, "AddressInUse", "this address is already linked to another account")
)
