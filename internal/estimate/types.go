package estimate

import "strings"

// ProjectRequest is the caller-owned input to one synthesis run.
// The pipeline never mutates it.
type ProjectRequest struct {
	Scope       string      `json:"scope"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Attachment  *Attachment `json:"attachment,omitempty"`
}

// Attachment carries an uploaded blueprint/plan as raw bytes plus media type.
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Validate checks the basic presence rules. It returns an *InvalidRequestError
// naming the first empty field, before any external call is made.
func (p ProjectRequest) Validate() error {
	if strings.TrimSpace(p.Scope) == "" {
		return &InvalidRequestError{Field: "scope"}
	}
	if strings.TrimSpace(p.Location) == "" {
		return &InvalidRequestError{Field: "location"}
	}
	if strings.TrimSpace(p.Description) == "" {
		return &InvalidRequestError{Field: "description"}
	}
	if p.Attachment != nil && strings.TrimSpace(p.Attachment.MIMEType) == "" {
		return &InvalidRequestError{Field: "attachment.mimeType"}
	}
	return nil
}

// Category is the closed set of line-item categories.
type Category string

const (
	CategoryMaterial  Category = "Material"
	CategoryLabor     Category = "Labor"
	CategoryPermit    Category = "Permit"
	CategorySub       Category = "Sub"
	CategoryEquipment Category = "Equipment"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMaterial, CategoryLabor, CategoryPermit, CategorySub, CategoryEquipment:
		return true
	}
	return false
}

// LineItem is one priced unit of work or material.
// Total is always recomputed as Qty*Rate by the validator; the generated
// value is never trusted.
type LineItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Qty          float64  `json:"qty"`
	Unit         string   `json:"unit"`
	Rate         float64  `json:"rate"`
	Total        float64  `json:"total"`
	Category     Category `json:"category"`
	CSIDivision  string   `json:"csi_division"`
	RetailerName string   `json:"retailerName"`
	StoreLink    string   `json:"storeLink"`
	Logic        string   `json:"logic,omitempty"`
}

// InsightType is the closed set of insight flavors.
type InsightType string

const (
	InsightRisk       InsightType = "risk"
	InsightMarket     InsightType = "market"
	InsightCompliance InsightType = "compliance"
)

func (t InsightType) Valid() bool {
	switch t {
	case InsightRisk, InsightMarket, InsightCompliance:
		return true
	}
	return false
}

// Impact levels are stored lowercase; the validator normalizes case before
// checking membership.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

func (i Impact) Valid() bool {
	switch i {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return true
	}
	return false
}

// Insight is a qualitative risk/market/compliance flag attached to a result.
type Insight struct {
	Type   InsightType `json:"type"`
	Title  string      `json:"title"`
	Text   string      `json:"text"`
	Impact Impact      `json:"impact"`
}

// GroundingSource is a citation for a price or fact used during synthesis.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// HistoricalBid is a read-only weighting signal sourced from the ledger.
// Only bids with status "won" are ever fed to the pipeline.
type HistoricalBid struct {
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Margin float64 `json:"margin"`
}

// EstimateResult is the output of one successful pipeline run. It is created
// once and immutable thereafter; ownership passes to the caller.
type EstimateResult struct {
	ProjectSummary     string            `json:"projectSummary"`
	PaymentTerms       string            `json:"paymentTerms"`
	Items              []LineItem        `json:"items"`
	Insights           []Insight         `json:"insights"`
	MarketConfidence   float64           `json:"marketConfidence"`
	RegionalMultiplier float64           `json:"regionalMultiplier"`
	GroundingSources   []GroundingSource `json:"groundingSources,omitempty"`
	SuggestedAgenda    []string          `json:"suggestedAgenda,omitempty"`
}
