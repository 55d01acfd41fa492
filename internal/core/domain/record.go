package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// FlexString decodes a JSON value that the portal serialises sometimes as
// a string and sometimes as a number. Numbers are kept verbatim as text so
// leading zeros survive when the portal does send strings.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// LabelledField is one entry of a record's free-form sub-field list.
type LabelledField struct {
	Label string `json:"ttruong"`
	Value string `json:"dlieu"`
}

// trackingLabels are the sub-field labels under which portals are known to
// publish the lookup reference.
var trackingLabels = map[string]bool{
	"Mã tra cứu":    true,
	"Ma tra cuu":    true,
	"Mã số bí mật":  true,
	"Fkey":          true,
	"MTC":           true,
}

// RawRecord is one invoice record as returned by the portal's query API.
// Field tags follow the portal's wire names.
type RawRecord struct {
	// SellerTaxCode is the issuer's tax code ("nbmst").
	SellerTaxCode string `json:"nbmst"`

	// SellerName is the issuer's display name ("nbten").
	SellerName string `json:"nbten"`

	// SourceMarker identifies the issuing channel ("ngcnhat"). A
	// "tvan_" prefix marks an intermediary provider.
	SourceMarker string `json:"ngcnhat"`

	// Form, Series and Number form the invoice natural key.
	Form   FlexString `json:"khmshdon"`
	Series FlexString `json:"khhdon"`
	Number FlexString `json:"shdon"`

	// IssuedAt is the issue timestamp ("tdlap"), ISO-ish.
	IssuedAt string `json:"tdlap"`

	// TrackingCode is the direct lookup reference ("mhdon"), when the
	// portal supplies one. Takes precedence over the Extras scan.
	TrackingCode string `json:"mhdon"`

	// Extras is the labelled sub-field list ("ttkhac") among which a
	// tracking code may hide.
	Extras []LabelledField `json:"ttkhac"`
}

// Key extracts the invoice natural key. The boolean is false when any
// component is missing and the record must be dropped.
func (r RawRecord) Key() (InvoiceKey, bool) {
	k := InvoiceKey{
		Form:   strings.TrimSpace(string(r.Form)),
		Series: strings.TrimSpace(string(r.Series)),
		Number: strings.TrimSpace(string(r.Number)),
	}
	return k, k.Valid()
}

// TaxProviderName derives the provider name from the source marker.
// Returns "" when the marker is absent or carries no provider prefix.
func (r RawRecord) TaxProviderName() string {
	if strings.HasPrefix(r.SourceMarker, SourceMarkerPrefix) {
		return strings.TrimPrefix(r.SourceMarker, SourceMarkerPrefix)
	}
	return ""
}

// ResolveTrackingCode returns the record's tracking code. A direct
// TrackingCode field wins; otherwise the labelled sub-fields are scanned
// for a recognised label.
func (r RawRecord) ResolveTrackingCode() string {
	if code := strings.TrimSpace(r.TrackingCode); code != "" {
		return code
	}
	for _, f := range r.Extras {
		if trackingLabels[strings.TrimSpace(f.Label)] {
			if v := strings.TrimSpace(f.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// issuedAtLayouts are the timestamp layouts the portal has been seen to use.
var issuedAtLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// Timestamp parses the record's issue timestamp.
func (r RawRecord) Timestamp() (time.Time, error) {
	var lastErr error
	for _, layout := range issuedAtLayouts {
		t, err := time.Parse(layout, r.IssuedAt)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
