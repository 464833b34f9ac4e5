package dto

// Fields left out of the request are not changed.
type ProfileRequest struct {
	Name     *string `json:"name"`
	ImageURI *string `json:"image_uri"`
}

type ProfileResponse struct {
	Name     string `json:"name"`
	ImageURI string `json:"image_uri"`
}
