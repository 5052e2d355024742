package workflow_test

import (
	"errors"
	"strings"
	"testing"

	"shorts/internal/overlay"
	"shorts/internal/services"
	"shorts/internal/workflow"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func validRequest() workflow.Request {
	return workflow.Request{URL: "https://www.youtube.com/watch?v=abc123", StartTime: 5, Duration: 10}
}

func TestValidateRequestAcceptsMinimal(t *testing.T) {
	cropReq, err := workflow.ValidateRequest(validRequest())
	if err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}
	if cropReq != nil {
		t.Fatalf("expected no crop, got %+v", cropReq)
	}
}

func TestValidateRequestCollectsProblems(t *testing.T) {
	req := workflow.Request{
		URL:       "ftp://example.com/video",
		StartTime: -1,
		Duration:  0,
		Overlay: overlay.Request{
			Text:      strings.Repeat("x", overlay.MaxTextLength+1),
			Font:      "Comic Sans",
			Color:     "red",
			FontSize:  ptrInt(500),
			PositionX: ptrFloat(1.5),
		},
	}
	_, err := workflow.ValidateRequest(req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := services.UserMessage(err)
	for _, want := range []string{"url:", "duration:", "start_time:", "overlay.text:", "overlay.font:", "overlay.color:", "overlay.font_size:", "overlay.position_x:"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
	if strings.Contains(msg, "overlay.position_y") {
		t.Fatalf("omitted position_y should not be reported: %q", msg)
	}
}

func TestValidateRequestTextLengthCountsRunes(t *testing.T) {
	req := validRequest()
	req.Overlay.Text = "  " + strings.Repeat("é", overlay.MaxTextLength) + "  "
	if _, err := workflow.ValidateRequest(req); err != nil {
		t.Fatalf("expected %d runes after trimming to pass, got %v", overlay.MaxTextLength, err)
	}
}

func TestValidateRequestCropAllOrNothing(t *testing.T) {
	req := validRequest()
	req.CropX = ptrFloat(10)
	req.CropY = ptrFloat(10)
	if _, err := workflow.ValidateRequest(req); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected partial crop to be rejected, got %v", err)
	}

	req.CropWidth = ptrFloat(300)
	req.CropHeight = ptrFloat(400)
	cropReq, err := workflow.ValidateRequest(req)
	if err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}
	if cropReq == nil || cropReq.Width != 300 || cropReq.Height != 400 {
		t.Fatalf("unexpected crop request %+v", cropReq)
	}
}

func TestValidateRequestCropBounds(t *testing.T) {
	req := validRequest()
	req.CropX = ptrFloat(-1)
	req.CropY = ptrFloat(0)
	req.CropWidth = ptrFloat(0.5)
	req.CropHeight = ptrFloat(10)
	_, err := workflow.ValidateRequest(req)
	if err == nil {
		t.Fatal("expected crop bounds to be rejected")
	}
	msg := services.UserMessage(err)
	if !strings.Contains(msg, "crop_x") || !strings.Contains(msg, "crop_width") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestValidatePreviewRequest(t *testing.T) {
	if err := workflow.ValidatePreviewRequest(workflow.PreviewRequest{URL: "https://youtu.be/abc", StartTime: 0}); err != nil {
		t.Fatalf("expected valid preview request, got %v", err)
	}
	err := workflow.ValidatePreviewRequest(workflow.PreviewRequest{URL: "not a url", StartTime: -3})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
