package domain

// User-editable profile shown alongside songs being played.
type Profile struct {
	Name     string
	ImageURI string
}
