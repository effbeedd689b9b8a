package dto

// UploadImageMetadata is the optional "metadata" part of an image upload.
type UploadImageMetadata struct {
	Id     string `json:"id"`
	Alt    string `json:"alt" validate:"max=1000"`
	Width  int    `json:"width" validate:"gte=0"`
	Height int    `json:"height" validate:"gte=0"`
}

type ImageResponse struct {
	Image ImageReference `json:"image"`
}
