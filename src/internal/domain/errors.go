package domain

import "errors"

var ErrInvalidStatusTransition = errors.New("payment cannot move to the requested status")
var ErrInsufficientBalance = errors.New("insufficient balance")
