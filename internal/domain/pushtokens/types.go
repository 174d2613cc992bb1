package pushtokens

import "time"

// DeviceType is the platform a token belongs to.
type DeviceType string

const (
	DeviceAndroid DeviceType = "android"
	DeviceIOS     DeviceType = "ios"
	DeviceWeb     DeviceType = "web"
)

func (d DeviceType) Valid() bool {
	switch d {
	case DeviceAndroid, DeviceIOS, DeviceWeb:
		return true
	}
	return false
}

// PushToken is one device registration. A user holds at most one row
// per token value; re-registering the same token updates the row.
type PushToken struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Token      string     `json:"token"`
	DeviceType DeviceType `json:"device_type"`
	DeviceName string     `json:"device_name,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt time.Time  `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
