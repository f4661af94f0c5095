package lead

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stairviz/internal/domain"
	"stairviz/internal/providers/crm"
	"stairviz/internal/session"
)

type stubCRM struct {
	saveErr  error
	saved    []domain.Lead
	estimate domain.Estimate
	estErr   error
}

func (s *stubCRM) SaveLead(ctx context.Context, lead domain.Lead, atts []crm.Attachment) error {
	s.saved = append(s.saved, lead)
	return s.saveErr
}

func (s *stubCRM) Estimate(ctx context.Context, styleID string, feet float64, zip string) (domain.Estimate, error) {
	if s.estErr != nil {
		return domain.Estimate{}, s.estErr
	}
	est := s.estimate
	est.StyleID = styleID
	est.LinearFeet = feet
	est.ZipCode = zip
	return est, nil
}

func newGate(t *testing.T, c *stubCRM) (*Gate, string) {
	t.Helper()
	store := session.NewStore(time.Minute)
	sess := store.Create("tenant-7", domain.OriginDecision{Allowed: true}, nil)
	return NewGate(store, c, c, zerolog.Nop()), sess.ID
}

func TestFirstDownloadIsGated(t *testing.T) {
	gate, id := newGate(t, &stubCRM{})
	if err := gate.RequestDownload(id); !errors.Is(err, domain.ErrDownloadLocked) {
		t.Fatalf("err = %v, want ErrDownloadLocked", err)
	}
}

func TestUnlockResumesPendingDownloadAndStays(t *testing.T) {
	c := &stubCRM{}
	gate, id := newGate(t, c)

	_ = gate.RequestDownload(id) // records the pending download

	res, err := gate.SubmitGate(context.Background(), id, domain.LeadIdentity{Name: "Pat", Email: "pat@example.com"}, "Modern Oak", "https://cdn/x.png", "tenant-7")
	if err != nil {
		t.Fatalf("SubmitGate: %v", err)
	}
	if !res.Resume || res.ResumeAfter <= 0 {
		t.Fatalf("result = %+v, want resumed pending download", res)
	}
	if len(c.saved) != 1 || c.saved[0].Kind != domain.LeadGateCapture {
		t.Fatalf("saved leads = %+v", c.saved)
	}

	// Any later download in the same session skips the gate.
	for i := 0; i < 3; i++ {
		if err := gate.RequestDownload(id); err != nil {
			t.Fatalf("download %d after unlock: %v", i, err)
		}
	}
}

func TestLeadSaveFailureStillUnlocks(t *testing.T) {
	c := &stubCRM{saveErr: errors.New("crm offline")}
	gate, id := newGate(t, c)
	_ = gate.RequestDownload(id)

	res, err := gate.SubmitGate(context.Background(), id, domain.LeadIdentity{Email: "pat@example.com"}, "", "", "tenant-7")
	if err != nil {
		t.Fatalf("unlock must not depend on the lead save: %v", err)
	}
	if !res.Resume {
		t.Fatalf("pending download should resume")
	}
	if err := gate.RequestDownload(id); err != nil {
		t.Fatalf("session should stay unlocked: %v", err)
	}
}

func TestEstimateRequiresMonetizedStyle(t *testing.T) {
	gate, id := newGate(t, &stubCRM{})
	free := domain.StylePresetInfo{ID: "basic", Name: "Basic"}
	if _, err := gate.Estimate(context.Background(), id, free, 20, "94110"); !errors.Is(err, domain.ErrEstimateUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestEstimateStoredOnSessionAndAttachedToQuote(t *testing.T) {
	c := &stubCRM{estimate: domain.Estimate{MinPrice: 1000, MaxPrice: 1600, DistanceMi: 12}}
	gate, id := newGate(t, c)
	preset := domain.StylePresetInfo{ID: "oak-01", Name: "Modern Oak", PricePerFtMin: 50, PricePerFtMax: 80}

	est, err := gate.Estimate(context.Background(), id, preset, 20, "94110")
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.MinPrice != 1000 || est.ZipCode != "94110" {
		t.Fatalf("estimate = %+v", est)
	}

	msg := QuoteMessage(preset, est)
	err = gate.SubmitQuote(context.Background(), id, domain.LeadIdentity{Email: "pat@example.com"}, msg, preset.Name, "", "tenant-7", nil)
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	last := c.saved[len(c.saved)-1]
	if last.Kind != domain.LeadQuoteRequest {
		t.Fatalf("kind = %q", last.Kind)
	}
	if last.Estimate == nil || last.Estimate.MinPrice != 1000 {
		t.Fatalf("estimate not attached: %+v", last.Estimate)
	}
}

func TestQuoteMessageNamesBoundsAndZip(t *testing.T) {
	preset := domain.StylePresetInfo{ID: "oak-01", Name: "Modern Oak", PricePerFtMin: 50, PricePerFtMax: 80}
	est := domain.Estimate{MinPrice: 1000, MaxPrice: 1600, LinearFeet: 20, ZipCode: "94110"}
	msg := QuoteMessage(preset, est)
	for _, want := range []string{"$1000", "$1600", "94110", "20 linear ft", "Modern Oak"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestEstimateValidatesFootage(t *testing.T) {
	gate, id := newGate(t, &stubCRM{})
	preset := domain.StylePresetInfo{ID: "oak-01", Name: "Modern Oak", PricePerFtMin: 50, PricePerFtMax: 80}
	if _, err := gate.Estimate(context.Background(), id, preset, 0, "94110"); !errors.Is(err, domain.ErrEstimateUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
