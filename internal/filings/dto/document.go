package dto

// Document is a downloaded attachment.
type Document struct {
	URL         string
	ContentType string
	Body        []byte
}
