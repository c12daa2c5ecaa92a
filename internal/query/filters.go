package query

import (
	"fmt"
	"strings"
)

// Filter is a boolean predicate attached to a query. Build filters
// from the constructors below and attach them with Query.UpdateFilter
// or the query's AddXFilter helpers. A filter tree is treated as
// immutable once attached; TranslatedFilter is the one exception and
// is deep-copied on clone for that reason.
type Filter interface {
	filterData() map[string]any
	clone() Filter
}

// InFilter matches when the evaluation of the left value equals one
// of the elements of the right side. The most common shape matches a
// field against candidate values:
//
//	InFilter(FieldValue(FieldSrc), IPValue("192.168.4.84"))
//
// The logic also reverses: search one IP across several fields by
// swapping the sides.
type InFilter struct {
	left  map[string]any
	right []map[string]any
}

// NewInFilter builds an IN filter from a left value and one or more
// right-side values. The right-side descriptor lists are concatenated
// in argument order.
func NewInFilter(left Value, right ...Value) *InFilter {
	f := &InFilter{}
	if descs := left.Descriptors(); len(descs) > 0 {
		f.left = descs[0]
	}
	for _, v := range right {
		f.right = append(f.right, v.Descriptors()...)
	}
	return f
}

func (f *InFilter) filterData() map[string]any {
	m := map[string]any{"type": "in"}
	if f.left != nil {
		m["left"] = f.left
	}
	m["right"] = append([]map[string]any{}, f.right...)
	return m
}

func (f *InFilter) clone() Filter {
	cp := &InFilter{}
	if f.left != nil {
		cp.left = copyDescriptor(f.left)
	}
	for _, d := range f.right {
		cp.right = append(cp.right, copyDescriptor(d))
	}
	return cp
}

// AndFilter matches when every child filter matches.
type AndFilter struct {
	children []Filter
}

// NewAndFilter combines child filters with AND logic.
func NewAndFilter(filters ...Filter) *AndFilter {
	return &AndFilter{children: append([]Filter{}, filters...)}
}

func (f *AndFilter) filterData() map[string]any {
	return map[string]any{"type": "and", "values": childData(f.children)}
}

func (f *AndFilter) clone() Filter {
	return &AndFilter{children: cloneChildren(f.children)}
}

// OrFilter matches when any child filter matches.
type OrFilter struct {
	children []Filter
}

// NewOrFilter combines child filters with OR logic.
func NewOrFilter(filters ...Filter) *OrFilter {
	return &OrFilter{children: append([]Filter{}, filters...)}
}

func (f *OrFilter) filterData() map[string]any {
	return map[string]any{"type": "or", "values": childData(f.children)}
}

func (f *OrFilter) clone() Filter {
	return &OrFilter{children: cloneChildren(f.children)}
}

// NotFilter suppresses records matching its child filter. Typically
// nested under an AndFilter to drop unwanted entries, useful on live
// feeds.
type NotFilter struct {
	child Filter
}

// NewNotFilter negates a filter.
func NewNotFilter(filter Filter) *NotFilter {
	return &NotFilter{child: filter}
}

func (f *NotFilter) filterData() map[string]any {
	m := map[string]any{"type": "not"}
	if f.child != nil {
		m["value"] = f.child.filterData()
	}
	return m
}

func (f *NotFilter) clone() Filter {
	cp := &NotFilter{}
	if f.child != nil {
		cp.child = f.child.clone()
	}
	return cp
}

// DefinedFilter matches records where the given value has a value at
// all, e.g. "only records with an action".
type DefinedFilter struct {
	value map[string]any
}

// NewDefinedFilter requires the first descriptor of v to be defined.
func NewDefinedFilter(v Value) *DefinedFilter {
	f := &DefinedFilter{}
	if descs := v.Descriptors(); len(descs) > 0 {
		f.value = descs[0]
	}
	return f
}

func (f *DefinedFilter) filterData() map[string]any {
	m := map[string]any{"type": "defined"}
	if f.value != nil {
		m["value"] = copyDescriptor(f.value)
	}
	return m
}

func (f *DefinedFilter) clone() Filter {
	cp := &DefinedFilter{}
	if f.value != nil {
		cp.value = copyDescriptor(f.value)
	}
	return cp
}

// TranslatedFilter carries a filter expression in the server's
// internal expression syntax, the same text the console shows under
// "Show Expression". Builder methods compose common expressions;
// Expression sets one verbatim.
type TranslatedFilter struct {
	expr string
}

// NewTranslatedFilter returns an empty translated filter.
func NewTranslatedFilter() *TranslatedFilter {
	return &TranslatedFilter{}
}

// Expression sets the expression text verbatim.
func (f *TranslatedFilter) Expression(expr string) {
	f.expr = expr
}

// WithinIPv4Network matches when the field falls inside any of the
// given CIDR networks, e.g. "192.168.4.0/24".
func (f *TranslatedFilter) WithinIPv4Network(field string, networks []string) {
	parts := make([]string, 0, len(networks))
	for _, net := range networks {
		parts = append(parts, fmt.Sprintf("ipv4_net(%q)", net))
	}
	f.expr = fmt.Sprintf("%s IN union(%s)", field, strings.Join(parts, ","))
}

// WithinIPv4Range matches when the field falls inside the given
// dash-separated ranges, e.g. "10.0.0.1-10.0.0.254". Only one range
// is honored per expression.
func (f *TranslatedFilter) WithinIPv4Range(field string, ranges []string) {
	var parts []string
	for _, r := range ranges {
		for _, ip := range strings.Split(r, "-") {
			parts = append(parts, fmt.Sprintf("ipv4(%q)", ip))
		}
	}
	f.expr = fmt.Sprintf("%s IN range(%s)", field, strings.Join(parts, ","))
}

// ExactIPv4Match matches the field against the addresses exactly.
// More than one address widens the expression to a union.
func (f *TranslatedFilter) ExactIPv4Match(field string, addresses []string) {
	if len(addresses) > 1 {
		parts := make([]string, 0, len(addresses))
		for _, ip := range addresses {
			parts = append(parts, fmt.Sprintf("ipv4(%q)", ip))
		}
		f.expr = fmt.Sprintf("%s IN union(%s)", field, strings.Join(parts, ","))
		return
	}
	if len(addresses) == 1 {
		f.expr = fmt.Sprintf("%s == ipv4(%q)", field, addresses[0])
	}
}

func (f *TranslatedFilter) filterData() map[string]any {
	return map[string]any{"type": "translated", "value": f.expr}
}

func (f *TranslatedFilter) clone() Filter {
	return &TranslatedFilter{expr: f.expr}
}

func childData(children []Filter) []map[string]any {
	out := make([]map[string]any, 0, len(children))
	for _, c := range children {
		out = append(out, c.filterData())
	}
	return out
}

func cloneChildren(children []Filter) []Filter {
	out := make([]Filter, 0, len(children))
	for _, c := range children {
		out = append(out, c.clone())
	}
	return out
}

func copyDescriptor(d map[string]any) map[string]any {
	cp := make(map[string]any, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}
