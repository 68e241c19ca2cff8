package model

import "encoding/json"

// DateRange is an optional filter passed through to the export API as-is.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ExportRequest describes one logical export pull from the Brandlight API.
// Amount may exceed the API's per-call page size; the client splits it into
// pages transparently.
type ExportRequest struct {
	TenantID    string     `json:"tenantId"`
	BrandID     string     `json:"brandId"`
	Start       int        `json:"start"`
	Amount      int        `json:"amount"`
	EngineIDs   []string   `json:"engineIds,omitempty"`
	CategoryIDs []string   `json:"categoryIds,omitempty"`
	PersonaIDs  []string   `json:"personaIds,omitempty"`
	LocationIDs []string   `json:"locationIds,omitempty"`
	DateRange   *DateRange `json:"dateRange,omitempty"`
}

// ExportPage is one fetched slice of an export, tagged with its position in
// the original request so results can be reassembled deterministically.
type ExportPage struct {
	PageIndex int
	Items     []json.RawMessage
}

// ExportResult is the reassembled export: items are concatenated in
// ascending PageIndex order, so their order matches what a single
// unpaginated fetch would have returned.
type ExportResult struct {
	Items        []json.RawMessage
	TotalFetched int
	PageCount    int
}
