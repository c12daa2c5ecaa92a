package types

import "strconv"

// Record is one monitoring record as returned by the server. Keys are
// either numeric field ids rendered as strings (raw / element queries)
// or resolved field labels (table / CSV queries), depending on the
// field format configured on the query.
type Record map[string]any

// Batch is the set of records carried by a single response message.
// A response message with no records contributes no batch.
type Batch []Record

// Copy returns a deep copy of the batch. Record values are shallow
// copied; they are treated as immutable once received.
func (b Batch) Copy() Batch {
	if b == nil {
		return nil
	}
	out := make(Batch, len(b))
	for i, rec := range b {
		cp := make(Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// FieldInfo describes one log field as resolved by the server. ID is
// the protocol-assigned numeric identifier, Name the internal field
// name and Pretty the display label shown in the console UI.
type FieldInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Pretty string `json:"pretty"`
}

// Label returns the field's representation for the given field format
// ("id", "name" or "pretty"). Unknown formats return the empty string.
func (f FieldInfo) Label(fieldFormat string) string {
	switch fieldFormat {
	case "id":
		return strconv.Itoa(f.ID)
	case "name":
		return f.Name
	case "pretty":
		return f.Pretty
	}
	return ""
}
