package auth

// Permission is a named capability.
type Permission string

// Permissions.
const (
	PermDeviceRead      Permission = "device:read"
	PermDeviceConfigure Permission = "device:configure"
	PermDeviceProvision Permission = "device:provision"
	PermEventsSubscribe Permission = "events:subscribe"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermDeviceRead,
		PermEventsSubscribe,
	},
	RoleOperator: {
		PermDeviceRead,
		PermDeviceConfigure,
		PermEventsSubscribe,
	},
	RoleProvisioner: {
		PermDeviceRead,
		PermDeviceConfigure,
		PermDeviceProvision,
		PermEventsSubscribe,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
