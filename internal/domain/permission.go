package domain

// Result of a location-permission request.
type PermissionState bool

const (
	PermissionDenied  PermissionState = false
	PermissionGranted PermissionState = true
)

func (p PermissionState) String() string {
	if p {
		return "granted"
	}
	return "denied"
}
