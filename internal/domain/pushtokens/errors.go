package pushtokens

import "errors"

var (
	ErrNotFound = errors.New("push token not found")

	// ErrInvalidDeviceType is returned for a device_type outside
	// android, ios, web.
	ErrInvalidDeviceType = errors.New("invalid device type")

	// ErrTokenRequired is returned when the token value is empty.
	ErrTokenRequired = errors.New("token is required")
)
