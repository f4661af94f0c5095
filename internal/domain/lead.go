package domain

// LeadIdentity is the minimum the download gate asks for.
type LeadIdentity struct {
	Name  string
	Email string
	Phone string
}

// Lead is the record shipped to the lead persistence collaborator. Saving it
// is best-effort; the download gate unlocks regardless.
type Lead struct {
	Identity  LeadIdentity
	Message   string
	StyleName string
	ImageURI  string
	TenantID  string
	Estimate  *Estimate
	// Kind distinguishes the soft gate capture from an explicit quote request.
	Kind LeadKind
}

// LeadKind labels how the lead entered the funnel.
type LeadKind string

const (
	LeadGateCapture  LeadKind = "gate"
	LeadQuoteRequest LeadKind = "quote"
)

// Estimate is the priced outcome of the linear-footage funnel for a
// monetized style.
type Estimate struct {
	StyleID    string
	LinearFeet float64
	ZipCode    string
	MinPrice   float64
	MaxPrice   float64
	DistanceMi float64
	Breakdown  map[string]float64
}
