package pipeline

import (
	"reflect"
	"testing"
)

func testValidator() *Validator {
	return NewValidator(ValidatorConfig{
		AllowedImageSizes:  []string{"256x256", "512x512", "1024x1024"},
		AllowedVideoRatios: []string{"16:9", "9:16", "1:1"},
		DefaultImageSize:   "1024x1024",
		DefaultVideoRatio:  "16:9",
		MaxDuration:        10,
		MaxQuantity:        4,
		DenylistTerms:      []string{"badword", "Gore"},
	})
}

func TestValidateRejectsEmptyPrompt(t *testing.T) {
	v := testValidator()
	for _, prompt := range []string{"", "   ", "\t\n"} {
		_, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: prompt})
		if KindOf(err) != KindInvalidRequest {
			t.Fatalf("prompt %q: kind = %v, want invalid_request", prompt, KindOf(err))
		}
	}
}

func TestValidateRejectsUnknownOperation(t *testing.T) {
	v := testValidator()
	_, err := v.Validate(RawInput{Operation: "text_to_audio", Prompt: "a song"})
	if KindOf(err) != KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", KindOf(err))
	}
}

func TestValidateSizeSet(t *testing.T) {
	v := testValidator()
	for _, size := range []string{"256x256", "512x512", "1024x1024"} {
		req, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: "a cat", Size: size})
		if err != nil {
			t.Fatalf("size %s: unexpected error: %v", size, err)
		}
		if req.Size != size {
			t.Fatalf("size %s not preserved, got %s", size, req.Size)
		}
	}
	_, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: "a cat", Size: "2048x2048"})
	if KindOf(err) != KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", KindOf(err))
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	v := testValidator()
	req, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: "a cat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Size != "1024x1024" || req.Quantity != 1 || req.Delivery != DeliverURL {
		t.Fatalf("unexpected defaults: %+v", req)
	}

	vid, err := v.Validate(RawInput{Operation: "text_to_video", Prompt: "a storm"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vid.Size != "16:9" || vid.DurationSeconds != 5 {
		t.Fatalf("unexpected video defaults: %+v", vid)
	}
}

func TestValidateImageToVideoRequiresSource(t *testing.T) {
	v := testValidator()
	_, err := v.Validate(RawInput{Operation: "image_to_video", Prompt: "make it move"})
	if KindOf(err) != KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", KindOf(err))
	}

	req, err := v.Validate(RawInput{
		Operation:      "image_to_video",
		Prompt:         "make it move",
		SourceImageURL: "https://example.com/cat.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.SourceImageURL != "https://example.com/cat.png" {
		t.Fatalf("source url not preserved: %q", req.SourceImageURL)
	}
}

func TestValidateRejectsBlankSourceImageURL(t *testing.T) {
	v := testValidator()
	for _, url := range []string{"   ", "\t", "\n"} {
		req, err := v.Validate(RawInput{
			Operation:      "image_to_video",
			Prompt:         "move it",
			SourceImageURL: url,
		})
		if KindOf(err) != KindInvalidRequest {
			t.Fatalf("url %q: kind = %v, want invalid_request (got request %+v)", url, KindOf(err), req)
		}
	}
}

func TestValidateRejectsStraySourceImage(t *testing.T) {
	v := testValidator()
	_, err := v.Validate(RawInput{
		Operation:      "text_to_image",
		Prompt:         "a cat",
		SourceImageURL: "https://example.com/cat.png",
	})
	if KindOf(err) != KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", KindOf(err))
	}
}

func TestValidateDenylistFoldsCase(t *testing.T) {
	v := testValidator()
	for _, prompt := range []string{"some BADWORD here", "gore everywhere", "GoRe"} {
		_, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: prompt})
		if KindOf(err) != KindForbidden {
			t.Fatalf("prompt %q: kind = %v, want forbidden", prompt, KindOf(err))
		}
	}
	if _, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: "a harmless cat"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateDurationBounds(t *testing.T) {
	v := testValidator()
	_, err := v.Validate(RawInput{Operation: "text_to_video", Prompt: "a storm", DurationSeconds: 99})
	if KindOf(err) != KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", KindOf(err))
	}
}

func TestValidateQuantityClamp(t *testing.T) {
	v := testValidator()
	req, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: "cats", Quantity: 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", req.Quantity)
	}

	vid, err := v.Validate(RawInput{Operation: "text_to_video", Prompt: "storm", Quantity: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vid.Quantity != 1 {
		t.Fatalf("video quantity = %d, want 1", vid.Quantity)
	}
}

func TestValidateRejectsUnknownDelivery(t *testing.T) {
	v := testValidator()
	_, err := v.Validate(RawInput{Operation: "text_to_image", Prompt: "a cat", Delivery: "carrier-pigeon"})
	if KindOf(err) != KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", KindOf(err))
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	v := testValidator()
	raw := RawInput{Operation: "text_to_image", Prompt: "  a cat  ", Size: "512x512", Quantity: 2, Delivery: "download"}
	first, err := v.Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := v.Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validation not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}
