package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stairviz/internal/domain"
)

func newTestClient(t *testing.T, leadURL, estimateURL string) *Client {
	t.Helper()
	if leadURL == "" {
		leadURL = "https://crm.example.com/leads"
	}
	if estimateURL == "" {
		estimateURL = "https://crm.example.com/estimates"
	}
	client, err := NewClient(Options{LeadEndpoint: leadURL, EstimateEndpoint: estimateURL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSaveLeadSendsFieldsAndEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("email"); got != "pat@example.com" {
			t.Fatalf("email = %q", got)
		}
		if got := r.FormValue("kind"); got != "quote" {
			t.Fatalf("kind = %q", got)
		}
		var est domain.Estimate
		if err := json.Unmarshal([]byte(r.FormValue("estimate")), &est); err != nil {
			t.Fatalf("estimate field: %v", err)
		}
		if est.MinPrice != 1000 || est.MaxPrice != 1600 {
			t.Fatalf("estimate = %+v", est)
		}
		if _, _, err := r.FormFile("attachments"); err != nil {
			t.Fatalf("attachments: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "warnings": []string{"duplicate email"}})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, "")
	lead := domain.Lead{
		Identity:  domain.LeadIdentity{Name: "Pat", Email: "pat@example.com"},
		StyleName: "Modern Oak",
		TenantID:  "tenant-7",
		Kind:      domain.LeadQuoteRequest,
		Estimate:  &domain.Estimate{MinPrice: 1000, MaxPrice: 1600},
	}
	atts := []Attachment{{Name: "render.png", Data: []byte{1, 2}}}
	if err := client.SaveLead(context.Background(), lead, atts); err != nil {
		t.Fatalf("SaveLead: %v", err)
	}
}

func TestSaveLeadRejectionReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "invalid email"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, "")
	err := client.SaveLead(context.Background(), domain.Lead{}, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid email") {
		t.Fatalf("err = %v", err)
	}
}

func TestEstimateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if in["zip_code"] != "94110" {
			t.Fatalf("zip = %v", in["zip_code"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":            true,
			"min_price":          1000.0,
			"max_price":          1600.0,
			"travel_distance_mi": 12.5,
			"breakdown":          map[string]float64{"labor": 800},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, "", srv.URL)
	est, err := client.Estimate(context.Background(), "oak-01", 20, "94110")
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.MinPrice != 1000 || est.MaxPrice != 1600 || est.DistanceMi != 12.5 {
		t.Fatalf("estimate = %+v", est)
	}
	if est.LinearFeet != 20 || est.ZipCode != "94110" {
		t.Fatalf("inputs not echoed: %+v", est)
	}
}

func TestEstimateFailureWrapsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "pricing offline"})
	}))
	defer srv.Close()

	client := newTestClient(t, "", srv.URL)
	if _, err := client.Estimate(context.Background(), "oak-01", 20, "94110"); !errors.Is(err, domain.ErrEstimateUnavailable) {
		t.Fatalf("err = %v, want ErrEstimateUnavailable", err)
	}
}
