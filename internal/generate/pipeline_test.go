package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"stairviz/internal/domain"
	"stairviz/internal/providers/render"
)

type stubRenderer struct {
	uri     string
	err     error
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (s *stubRenderer) Generate(ctx context.Context, req domain.GenerationRequest, instruction string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	return s.uri, s.err
}

func validRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Source: domain.SourceAsset{Name: "stairs.jpg", Data: []byte{1}},
		Style: domain.StyleReference{
			Source: domain.StylePreset,
			Preset: &domain.StylePresetInfo{ID: "oak-01", Name: "Modern Oak"},
		},
		TenantID: "tenant-7",
	}
}

func TestGenerateSuccess(t *testing.T) {
	p := NewPipeline(&stubRenderer{uri: "https://cdn.stairviz.com/out.png"}, zerolog.Nop())
	res, err := p.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Success || res.ImageURI != "https://cdn.stairviz.com/out.png" {
		t.Fatalf("result = %+v", res)
	}
}

func TestGenerateSingleFlight(t *testing.T) {
	renderer := &stubRenderer{
		uri:     "https://cdn.stairviz.com/out.png",
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	p := NewPipeline(renderer, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.Generate(context.Background(), validRequest()); err != nil {
			t.Errorf("first Generate: %v", err)
		}
	}()

	<-renderer.started
	if !p.Busy() {
		t.Fatalf("pipeline should report busy while in flight")
	}
	if _, err := p.Generate(context.Background(), validRequest()); !errors.Is(err, domain.ErrGenerationInFlight) {
		t.Fatalf("second call err = %v, want ErrGenerationInFlight", err)
	}

	close(renderer.release)
	wg.Wait()

	if renderer.calls != 1 {
		t.Fatalf("renderer calls = %d, want 1", renderer.calls)
	}
	if p.Busy() {
		t.Fatalf("pipeline should be idle after resolution")
	}
	// A new submission is possible once the previous one resolved.
	renderer.started, renderer.release = nil, nil
	if _, err := p.Generate(context.Background(), validRequest()); err != nil {
		t.Fatalf("follow-up Generate: %v", err)
	}
}

func TestGenerateMapsBusinessError(t *testing.T) {
	renderer := &stubRenderer{err: &render.RejectedError{Message: "moderation rejected the photo"}}
	p := NewPipeline(renderer, zerolog.Nop())
	res, err := p.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Success || res.Transport {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "moderation rejected the photo" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestGenerateMapsTransportError(t *testing.T) {
	renderer := &stubRenderer{err: fmt.Errorf("render: http request: %w: boom", domain.ErrNetworkFailure)}
	p := NewPipeline(renderer, zerolog.Nop())
	res, err := p.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Success || !res.Transport {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Message, "try again") {
		t.Fatalf("message = %q, want retryable wording", res.Message)
	}
}

func TestGenerateValidatesRequest(t *testing.T) {
	p := NewPipeline(&stubRenderer{}, zerolog.Nop())
	req := validRequest()
	req.Source.Data = nil
	if _, err := p.Generate(context.Background(), req); !errors.Is(err, domain.ErrMissingSourceAsset) {
		t.Fatalf("err = %v", err)
	}
	req = validRequest()
	req.Style.Upload = []byte{1} // both variants set, union invalid
	if _, err := p.Generate(context.Background(), req); !errors.Is(err, domain.ErrMissingStyle) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildInstructionMentionsStyle(t *testing.T) {
	s := domain.StyleReference{
		Source: domain.StylePreset,
		Preset: &domain.StylePresetInfo{Name: "Modern Oak", Description: "light oak treads, black risers"},
	}
	got := BuildInstruction(s)
	if !strings.Contains(got, `"Modern Oak"`) {
		t.Fatalf("instruction missing style name: %q", got)
	}
	if !strings.Contains(got, "light oak treads") {
		t.Fatalf("instruction missing style notes: %q", got)
	}

	upload := BuildInstruction(domain.StyleReference{Source: domain.StyleUpload, Upload: []byte{1}})
	if !strings.Contains(upload, "attached style reference") {
		t.Fatalf("upload instruction = %q", upload)
	}
}
