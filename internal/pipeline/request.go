package pipeline

// Operation identifies which generation capability a request targets.
type Operation string

const (
	OpTextToImage  Operation = "text_to_image"
	OpTextToVideo  Operation = "text_to_video"
	OpImageToVideo Operation = "image_to_video"
)

// DeliveryMode selects how the generated media is returned to the caller.
type DeliveryMode string

const (
	DeliverURL      DeliveryMode = "url"
	DeliverInline   DeliveryMode = "inline"
	DeliverDownload DeliveryMode = "download"
)

// RawInput is the untyped input the HTTP layer hands to the validator. All
// fields are as-parsed from the request body; nothing is trusted yet.
type RawInput struct {
	Operation       string
	Prompt          string
	SourceImageURL  string
	SourceImageData []byte
	SourceImageMIME string
	Size            string
	DurationSeconds int
	Model           string
	Quantity        int
	Delivery        string
	RequestID       string
}

// Request is a validated generation request. Producing one is the validator's
// job; every later stage may assume its invariants hold.
type Request struct {
	Operation       Operation
	Prompt          string
	SourceImageURL  string
	SourceImageData []byte
	SourceImageMIME string
	Size            string
	DurationSeconds int
	Model           string
	Quantity        int
	Delivery        DeliveryMode
	RequestID       string
}
