package domain

import (
	"encoding/json"
	"strings"
)

// CategoryName is the display name a record is keyed by. Stored
// records are inconsistent: some carry a plain string, some an
// embedded category object. Decoding normalizes both shapes at the
// boundary so the rest of the engine only ever sees a name.
type CategoryName string

func (c CategoryName) String() string {
	return string(c)
}

// UnmarshalJSON accepts "Transporte", {"name": "Transporte"} or the
// legacy {"nombre": "Transporte"} shape. Anything else decodes to
// the empty name, which the aggregator surfaces as "Sin categoría".
func (c *CategoryName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = CategoryName(strings.TrimSpace(s))
		return nil
	}
	var obj struct {
		Name   string `json:"name"`
		Nombre string `json:"nombre"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		*c = ""
		return nil
	}
	name := obj.Name
	if name == "" {
		name = obj.Nombre
	}
	*c = CategoryName(strings.TrimSpace(name))
	return nil
}

// MarshalJSON always encodes the normalized string form.
func (c CategoryName) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}
