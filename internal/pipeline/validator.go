package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
)

// ValidatorConfig carries the per-operation allowed sets and limits. The
// allowed-size policy is deliberately configuration, not code: deployments
// differ on which sizes and ratios their vendor plans support.
type ValidatorConfig struct {
	AllowedImageSizes  []string
	AllowedVideoRatios []string
	DefaultImageSize   string
	DefaultVideoRatio  string
	DefaultDuration    int
	MaxDuration        int
	MaxQuantity        int
	DenylistTerms      []string
}

// Validator normalizes raw input into a Request or rejects it. It performs no
// I/O and holds no mutable state, so validating the same input twice yields
// identical results.
type Validator struct {
	cfg           ValidatorConfig
	foldedDenied  []string
	imageSizes    map[string]struct{}
	videoRatios   map[string]struct{}
}

// NewValidator precomputes lookup sets and case-folds the denylist once.
func NewValidator(cfg ValidatorConfig) *Validator {
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 5
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 10
	}
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = 4
	}
	folder := cases.Fold()
	v := &Validator{
		cfg:         cfg,
		imageSizes:  make(map[string]struct{}, len(cfg.AllowedImageSizes)),
		videoRatios: make(map[string]struct{}, len(cfg.AllowedVideoRatios)),
	}
	for _, s := range cfg.AllowedImageSizes {
		v.imageSizes[s] = struct{}{}
	}
	for _, r := range cfg.AllowedVideoRatios {
		v.videoRatios[r] = struct{}{}
	}
	for _, term := range cfg.DenylistTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		v.foldedDenied = append(v.foldedDenied, folder.String(term))
	}
	return v
}

// Validate produces a Request or fails with KindInvalidRequest/KindForbidden.
func (v *Validator) Validate(raw RawInput) (Request, error) {
	var req Request

	switch Operation(strings.TrimSpace(raw.Operation)) {
	case OpTextToImage:
		req.Operation = OpTextToImage
	case OpTextToVideo:
		req.Operation = OpTextToVideo
	case OpImageToVideo:
		req.Operation = OpImageToVideo
	default:
		return req, Errf(KindInvalidRequest, "unknown operation %q", raw.Operation)
	}

	req.Prompt = strings.TrimSpace(raw.Prompt)
	if req.Prompt == "" {
		return req, Errf(KindInvalidRequest, "prompt is required")
	}
	if term, ok := v.deniedTerm(req.Prompt); ok {
		return req, Errf(KindForbidden, "prompt contains a blocked term: %s", term)
	}

	sourceURL := strings.TrimSpace(raw.SourceImageURL)
	if req.Operation == OpImageToVideo {
		if sourceURL == "" && len(raw.SourceImageData) == 0 {
			return req, Errf(KindInvalidRequest, "image_to_video requires a source image")
		}
		req.SourceImageURL = sourceURL
		req.SourceImageData = raw.SourceImageData
		req.SourceImageMIME = raw.SourceImageMIME
	} else if sourceURL != "" || len(raw.SourceImageData) != 0 {
		return req, Errf(KindInvalidRequest, "source image is only accepted for image_to_video")
	}

	size := strings.TrimSpace(raw.Size)
	switch req.Operation {
	case OpTextToImage:
		if size == "" {
			size = v.cfg.DefaultImageSize
		}
		if _, ok := v.imageSizes[size]; !ok {
			return req, Errf(KindInvalidRequest, "size %q is not allowed", size)
		}
	default:
		if size == "" {
			size = v.cfg.DefaultVideoRatio
		}
		if _, ok := v.videoRatios[size]; !ok {
			return req, Errf(KindInvalidRequest, "ratio %q is not allowed", size)
		}
	}
	req.Size = size

	req.DurationSeconds = raw.DurationSeconds
	if req.DurationSeconds == 0 {
		req.DurationSeconds = v.cfg.DefaultDuration
	}
	if req.DurationSeconds < 0 || req.DurationSeconds > v.cfg.MaxDuration {
		return req, Errf(KindInvalidRequest, "duration must be between 1 and %d seconds", v.cfg.MaxDuration)
	}

	req.Quantity = raw.Quantity
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Quantity > v.cfg.MaxQuantity {
		req.Quantity = v.cfg.MaxQuantity
	}
	if req.Operation != OpTextToImage {
		req.Quantity = 1
	}

	switch DeliveryMode(strings.TrimSpace(raw.Delivery)) {
	case "", DeliverURL:
		req.Delivery = DeliverURL
	case DeliverInline:
		req.Delivery = DeliverInline
	case DeliverDownload:
		req.Delivery = DeliverDownload
	default:
		return req, Errf(KindInvalidRequest, "unknown delivery mode %q", raw.Delivery)
	}

	req.Model = strings.TrimSpace(raw.Model)
	req.RequestID = raw.RequestID
	return req, nil
}

// deniedTerm performs a case-folded substring match. This is a best-effort
// pre-filter; the moderation gate remains the authoritative check.
func (v *Validator) deniedTerm(prompt string) (string, bool) {
	if len(v.foldedDenied) == 0 {
		return "", false
	}
	folded := cases.Fold().String(prompt)
	for _, term := range v.foldedDenied {
		if strings.Contains(folded, term) {
			return term, true
		}
	}
	return "", false
}
