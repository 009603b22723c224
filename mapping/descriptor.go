package mapping

import (
	"reflect"
	"strconv"
	"strings"
)

// Binding declares that a view field is copied from a field of a source type.
type Binding struct {
	target string
	field  string
	source reflect.Type
	param  string
}

// Bind declares that the view field target is read from field sourceField of
// the source type S.
func Bind[S any](target, sourceField string) Binding {
	return Binding{
		target: target,
		field:  sourceField,
		source: reflect.TypeFor[S](),
	}
}

// Via binds the provider of this binding's source type to a single argument
// read from the named parameter instead of the provider's declared name.
func (b Binding) Via(param string) Binding {
	b.param = param
	return b
}

// Target returns the view field name.
func (b Binding) Target() string { return b.target }

// Field returns the source field name.
func (b Binding) Field() string { return b.field }

// Source returns the source type.
func (b Binding) Source() reflect.Type { return b.source }

// Param returns the parameter alias, if any.
func (b Binding) Param() string { return b.param }

// FieldMapping is a compiled binding: precomputed field index paths on the
// view and on the source.
type FieldMapping struct {
	Target string
	Field  string

	targetIndex []int
	sourceIndex []int
}

// Group is the set of view fields fed by one source type.
type Group struct {
	Source reflect.Type
	// Param is the parameter alias shared by every binding of the group.
	Param  string
	Fields []FieldMapping
}

// Assign copies every mapped field from src onto view.
// view must be a settable struct value of the descriptor's view type and src
// a value of the group's source type (a non-nil pointer when Source is one).
func (g *Group) Assign(view, src reflect.Value) error {
	src = reflect.Indirect(src)
	for _, fm := range g.Fields {
		value, err := src.FieldByIndexErr(fm.sourceIndex)
		if err != nil {
			return &UnknownSourceFieldError{Source: g.Source, Field: fm.Field}
		}
		view.FieldByIndex(fm.targetIndex).Set(value)
	}
	return nil
}

// Descriptor maps the fields of one view type onto source types.
type Descriptor struct {
	view   reflect.Type
	groups []*Group
}

// NewDescriptor compiles bindings for the view type V.
func NewDescriptor[V any](bindings ...Binding) (*Descriptor, error) {
	return Compile(reflect.TypeFor[V](), bindings...)
}

// Compile is NewDescriptor for a view type known only at run time.
func Compile(view reflect.Type, bindings ...Binding) (*Descriptor, error) {
	if view == nil || view.Kind() != reflect.Struct {
		return nil, &DescriptorError{View: view, Reason: "view type must be a struct"}
	}

	d := &Descriptor{view: view}
	bySource := make(map[reflect.Type]*Group)
	seen := make(map[string]bool, len(bindings))

	for _, b := range bindings {
		if seen[b.target] {
			return nil, &DescriptorError{View: view, Field: b.target, Reason: "field is bound more than once"}
		}
		seen[b.target] = true

		fm, err := compileBinding(view, b)
		if err != nil {
			return nil, err
		}
		for _, g := range d.groups {
			for _, other := range g.Fields {
				if overlaps(fm.targetIndex, other.targetIndex) {
					return nil, &DescriptorError{View: view, Field: b.target, Reason: "overlaps field " + other.Target}
				}
			}
		}

		g, ok := bySource[b.source]
		if !ok {
			g = &Group{Source: b.source, Param: b.param}
			bySource[b.source] = g
			d.groups = append(d.groups, g)
		} else if !strings.EqualFold(g.Param, b.param) {
			return nil, &DescriptorError{
				View:   view,
				Field:  b.target,
				Reason: "does not follow the parameter name " + strconv.Quote(g.Param) + " set for source " + typeName(b.source),
			}
		}
		g.Fields = append(g.Fields, fm)
	}

	return d, nil
}

func compileBinding(view reflect.Type, b Binding) (FieldMapping, error) {
	if b.source == nil {
		return FieldMapping{}, &DescriptorError{View: view, Field: b.target, Reason: "source type is nil"}
	}

	tf, ok := view.FieldByName(b.target)
	if !ok {
		return FieldMapping{}, &DescriptorError{View: view, Field: b.target, Reason: "field does not exist"}
	}
	if !tf.IsExported() {
		return FieldMapping{}, &DescriptorError{View: view, Field: b.target, Reason: "field is not exported"}
	}
	if throughPointer(view, tf.Index) {
		return FieldMapping{}, &DescriptorError{View: view, Field: b.target, Reason: "field is promoted through an embedded pointer"}
	}

	src := b.source
	if src.Kind() == reflect.Pointer {
		src = src.Elem()
	}
	if src.Kind() != reflect.Struct {
		return FieldMapping{}, &DescriptorError{View: view, Field: b.target, Reason: "source " + typeName(b.source) + " is not a struct"}
	}

	sf, ok := src.FieldByName(b.field)
	if !ok || !sf.IsExported() {
		return FieldMapping{}, &UnknownSourceFieldError{Source: b.source, Field: b.field}
	}
	if !sf.Type.AssignableTo(tf.Type) {
		return FieldMapping{}, &DescriptorError{
			View:   view,
			Field:  b.target,
			Reason: "source field " + b.field + " of type " + sf.Type.String() + " is not assignable to " + tf.Type.String(),
		}
	}

	return FieldMapping{
		Target:      b.target,
		Field:       b.field,
		targetIndex: tf.Index,
		sourceIndex: sf.Index,
	}, nil
}

// View returns the view type the descriptor builds.
func (d *Descriptor) View() reflect.Type { return d.view }

// Groups returns the source groups in first-binding order.
func (d *Descriptor) Groups() []*Group { return d.groups }

// Sources returns the distinct source types in first-binding order.
func (d *Descriptor) Sources() []reflect.Type {
	out := make([]reflect.Type, len(d.groups))
	for i, g := range d.groups {
		out[i] = g.Source
	}
	return out
}

// throughPointer reports whether the index path crosses an embedded pointer,
// which FieldByIndex cannot set without allocating.
func throughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return true
		}
		t = f.Type
	}
	return false
}

// overlaps reports whether one index path is a prefix of the other, i.e. one
// target field contains the other through embedding.
func overlaps(a, b []int) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
