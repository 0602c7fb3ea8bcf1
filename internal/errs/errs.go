package errs

import "errors"

var ErrUserNotFound = errors.New("user not found")
var ErrInvalidToken = errors.New("invalid token")
var ErrAccessDenied = errors.New("access denied")
var ErrNoOrdersFound = errors.New("no orders found")
var ErrUnknownLocale = errors.New("unknown month locale")
var ErrLoginAlreadyExists = errors.New("login already exists")
