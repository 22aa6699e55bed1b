package enums

import "fmt"

// NotificationKind labels catalogue side-effect notifications.
type NotificationKind string

const (
	// NotificationKindDefaultCleared is emitted when saving a new default
	// record disabled the previous default in the same scope.
	NotificationKindDefaultCleared NotificationKind = "default_cleared"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindDefaultCleared,
}

func (k NotificationKind) String() string {
	return string(k)
}

func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
