package query

import "fmt"

// Value is a typed leaf used on either side of a filter. Each value
// carries an ordered list of descriptors; order is preserved so
// filters that pair N fields with N value lists keep positional
// correspondence.
type Value interface {
	// Descriptors returns the wire descriptors, one per scalar the
	// value was built from.
	Descriptors() []map[string]any
}

type listValue struct {
	descs []map[string]any
}

func (v listValue) Descriptors() []map[string]any {
	out := make([]map[string]any, len(v.descs))
	for i, d := range v.descs {
		cp := make(map[string]any, len(d))
		for k, val := range d {
			cp[k] = val
		}
		out[i] = cp
	}
	return out
}

// ServiceValue matches the service field. Specify services as
// protocol/port, e.g. "TCP/80" or "UDP/53"; for ICMP use
// ICMP/Type/Code (code optional).
func ServiceValue(services ...string) Value {
	descs := make([]map[string]any, 0, len(services))
	for _, svc := range services {
		descs = append(descs, map[string]any{"type": "service", "value": svc})
	}
	return listValue{descs}
}

// ConstantValue matches enumerated field values such as actions or
// alert severities. Constants are not field names; use FieldValue
// for those.
func ConstantValue(constants ...any) Value {
	descs := make([]map[string]any, 0, len(constants))
	for _, c := range constants {
		descs = append(descs, map[string]any{"type": "constant", "value": c})
	}
	return listValue{descs}
}

// FieldValue references log fields by id or internal name. The
// descriptor shape is decided per element: an int or LogField emits
// an id descriptor, a string emits a name descriptor, so a single
// call may mix both. Any other type is rendered as a name via
// fmt.Sprint.
func FieldValue(fields ...any) Value {
	descs := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		switch f := field.(type) {
		case LogField:
			descs = append(descs, map[string]any{"type": "field", "id": int(f)})
		case int:
			descs = append(descs, map[string]any{"type": "field", "id": f})
		case string:
			descs = append(descs, map[string]any{"type": "field", "name": f})
		default:
			descs = append(descs, map[string]any{"type": "field", "name": fmt.Sprint(f)})
		}
	}
	return listValue{descs}
}

// ElementValue references elements already defined on the server by
// href. Element matches can expand the search, e.g. a host element
// matches all of its addresses.
func ElementValue(hrefs ...string) Value {
	descs := make([]map[string]any, 0, len(hrefs))
	for _, href := range hrefs {
		descs = append(descs, map[string]any{"type": "element", "href": href})
	}
	return listValue{descs}
}

// IPValue matches IP addresses in address-typed fields.
func IPValue(addresses ...string) Value {
	descs := make([]map[string]any, 0, len(addresses))
	for _, addr := range addresses {
		descs = append(descs, map[string]any{"type": "ip", "value": addr})
	}
	return listValue{descs}
}

// StringValue is an exact string match. Only string-typed fields
// match; no type conversion is applied server-side.
func StringValue(values ...string) Value {
	descs := make([]map[string]any, 0, len(values))
	for _, v := range values {
		descs = append(descs, map[string]any{"type": "string", "value": v})
	}
	return listValue{descs}
}
