package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrMissingRequiredFields indicates an order was submitted without the
// minimum fields (tracking code and customer name).
var ErrMissingRequiredFields = errors.New("order code and customer name are required")

// ErrRemoteNotReady indicates the remote data service is not configured for
// the requested role. Callers must treat it like a reachable-but-empty remote.
var ErrRemoteNotReady = errors.New("remote data service not configured")
