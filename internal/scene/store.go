package scene

import (
	"fmt"
	"time"

	"github.com/example/glowplan/internal/geometry"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LengthFunc returns the real-world length in feet of the segment a→b, or
// false when no scale is known.
type LengthFunc func(a, b geometry.Point) (float64, bool)

// Store holds the four entity collections and the selection.
type Store struct {
	strings      []LightString
	lights       []SingularLight
	decor        []DecorShape
	measurements []MeasurementLine

	selection Selection

	bounds  DecorBounds
	length  LengthFunc
	printer *message.Printer
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithDecorBounds sets the decor radius limits.
func WithDecorBounds(b DecorBounds) Option { return func(s *Store) { s.bounds = b } }

// WithLengthFunc sets the function used to compute measurement lengths.
func WithLengthFunc(fn LengthFunc) Option { return func(s *Store) { s.length = fn } }

// WithLanguage sets the language used to format measurement labels.
func WithLanguage(tag language.Tag) Option {
	return func(s *Store) { s.printer = message.NewPrinter(tag) }
}

// WithClock sets the clock used to stamp new entities.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDFunc sets the generator used for new entity ids.
func WithIDFunc(fn func() string) Option { return func(s *Store) { s.newID = fn } }

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		bounds:  DefaultDecorBounds(),
		printer: message.NewPrinter(language.English),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetLengthFunc replaces the measurement length function.
func (s *Store) SetLengthFunc(fn LengthFunc) { s.length = fn }

// DecorBounds returns the decor radius limits in use.
func (s *Store) DecorBounds() DecorBounds { return s.bounds }

// AddLightString appends a light string, assigning an id and creation time
// when they are unset, and returns the stored value.
func (s *Store) AddLightString(ls LightString) LightString {
	if ls.ID == "" {
		ls.ID = s.newID()
	}
	if ls.CreatedAt.IsZero() {
		ls.CreatedAt = s.now()
	}
	s.strings = append(s.strings, ls)
	return ls
}

// AddSingularLight appends a singular light.
func (s *Store) AddSingularLight(l SingularLight) SingularLight {
	if l.ID == "" {
		l.ID = s.newID()
	}
	s.lights = append(s.lights, l)
	return l
}

// AddDecor appends a decor shape. The radius is clamped to the decor bounds.
func (s *Store) AddDecor(d DecorShape) DecorShape {
	if d.ID == "" {
		d.ID = s.newID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	d.Radius = s.bounds.Clamp(d.Radius)
	s.decor = append(s.decor, d)
	return d
}

// AddMeasurement appends a measurement line. Derived fields on m are ignored.
func (s *Store) AddMeasurement(m MeasurementLine) MeasurementLine {
	if m.ID == "" {
		m.ID = s.newID()
	}
	m.LengthInFeet = nil
	m.Label = ""
	s.measurements = append(s.measurements, m)
	return s.measure(m)
}

// Insert places e at index within its collection. An index outside the
// collection appends. It fails when an entity with the same id exists.
func (s *Store) Insert(e Entity, index int) error {
	if _, ok := s.indexOf(e.EntityKind(), e.EntityID()); ok {
		return fmt.Errorf("insert %s %s: duplicate id", e.EntityKind(), e.EntityID())
	}
	switch v := e.(type) {
	case LightString:
		s.strings = insertAt(s.strings, index, v)
	case SingularLight:
		s.lights = insertAt(s.lights, index, v)
	case DecorShape:
		v.Radius = s.bounds.Clamp(v.Radius)
		s.decor = insertAt(s.decor, index, v)
	case MeasurementLine:
		v.LengthInFeet = nil
		v.Label = ""
		s.measurements = insertAt(s.measurements, index, v)
	default:
		return fmt.Errorf("insert: unsupported entity %T", e)
	}
	return nil
}

func insertAt[T any](list []T, index int, v T) []T {
	if index < 0 || index >= len(list) {
		return append(list, v)
	}
	list = append(list, v)
	copy(list[index+1:], list[index:])
	list[index] = v
	return list
}

func removeAt[T any](list []T, index int) []T {
	return append(list[:index], list[index+1:]...)
}

// Removed describes an entity taken out of the store.
type Removed struct {
	Entity      Entity
	Index       int
	WasSelected bool
}

// Remove deletes the entity kind/id. Removing the selected entity clears the
// selection.
func (s *Store) Remove(kind Kind, id string) (Removed, error) {
	idx, ok := s.indexOf(kind, id)
	if !ok {
		return Removed{}, fmt.Errorf("remove %s %s: %w", kind, id, ErrNotFound)
	}
	r := Removed{Index: idx, WasSelected: s.IsSelected(kind, id)}
	switch kind {
	case KindLightString:
		r.Entity = s.strings[idx]
		s.strings = removeAt(s.strings, idx)
	case KindSingularLight:
		r.Entity = s.lights[idx]
		s.lights = removeAt(s.lights, idx)
	case KindDecor:
		r.Entity = s.decor[idx]
		s.decor = removeAt(s.decor, idx)
	case KindMeasurement:
		r.Entity = s.measurements[idx]
		s.measurements = removeAt(s.measurements, idx)
	}
	if r.WasSelected {
		s.selection = Selection{}
	}
	return r, nil
}

// RemoveLightString deletes a light string.
func (s *Store) RemoveLightString(id string) (LightString, error) {
	r, err := s.Remove(KindLightString, id)
	if err != nil {
		return LightString{}, err
	}
	return r.Entity.(LightString), nil
}

// RemoveSingularLight deletes a singular light.
func (s *Store) RemoveSingularLight(id string) (SingularLight, error) {
	r, err := s.Remove(KindSingularLight, id)
	if err != nil {
		return SingularLight{}, err
	}
	return r.Entity.(SingularLight), nil
}

// RemoveDecor deletes a decor shape.
func (s *Store) RemoveDecor(id string) (DecorShape, error) {
	r, err := s.Remove(KindDecor, id)
	if err != nil {
		return DecorShape{}, err
	}
	return r.Entity.(DecorShape), nil
}

// RemoveMeasurement deletes a measurement line.
func (s *Store) RemoveMeasurement(id string) (MeasurementLine, error) {
	r, err := s.Remove(KindMeasurement, id)
	if err != nil {
		return MeasurementLine{}, err
	}
	return r.Entity.(MeasurementLine), nil
}

// LightStringPatch lists the light string fields to change. Nil fields are
// left alone.
type LightStringPatch struct {
	Start   *geometry.Point
	End     *geometry.Point
	AssetID *string
	Spacing *float64
}

// SingularLightPatch lists the singular light fields to change.
type SingularLightPatch struct {
	Position   *geometry.Point
	AssetID    *string
	LightIndex *int
}

// DecorPatch lists the decor fields to change.
type DecorPatch struct {
	Center       *geometry.Point
	Radius       *float64
	AssetID      *string
	LightSpacing *float64
}

// MeasurementPatch lists the measurement line fields to change.
type MeasurementPatch struct {
	Start *geometry.Point
	End   *geometry.Point
}

// UpdateLightString applies p to the light string id.
func (s *Store) UpdateLightString(id string, p LightStringPatch) (LightString, error) {
	idx, ok := s.indexOf(KindLightString, id)
	if !ok {
		return LightString{}, fmt.Errorf("update light string %s: %w", id, ErrNotFound)
	}
	ls := &s.strings[idx]
	if p.Start != nil {
		ls.Start = *p.Start
	}
	if p.End != nil {
		ls.End = *p.End
	}
	if p.AssetID != nil {
		ls.AssetID = *p.AssetID
	}
	if p.Spacing != nil {
		v := *p.Spacing
		ls.Spacing = &v
	}
	return *ls, nil
}

// UpdateSingularLight applies p to the singular light id.
func (s *Store) UpdateSingularLight(id string, p SingularLightPatch) (SingularLight, error) {
	idx, ok := s.indexOf(KindSingularLight, id)
	if !ok {
		return SingularLight{}, fmt.Errorf("update singular light %s: %w", id, ErrNotFound)
	}
	l := &s.lights[idx]
	if p.Position != nil {
		l.Position = *p.Position
	}
	if p.AssetID != nil {
		l.AssetID = *p.AssetID
	}
	if p.LightIndex != nil {
		l.LightIndex = *p.LightIndex
	}
	return *l, nil
}

// UpdateDecor applies p to the decor shape id. The radius is clamped to the
// decor bounds.
func (s *Store) UpdateDecor(id string, p DecorPatch) (DecorShape, error) {
	idx, ok := s.indexOf(KindDecor, id)
	if !ok {
		return DecorShape{}, fmt.Errorf("update decor %s: %w", id, ErrNotFound)
	}
	d := &s.decor[idx]
	if p.Center != nil {
		d.Center = *p.Center
	}
	if p.Radius != nil {
		d.Radius = s.bounds.Clamp(*p.Radius)
	}
	if p.AssetID != nil {
		d.AssetID = *p.AssetID
	}
	if p.LightSpacing != nil {
		d.LightSpacing = *p.LightSpacing
	}
	return *d, nil
}

// UpdateMeasurement applies p to the measurement line id.
func (s *Store) UpdateMeasurement(id string, p MeasurementPatch) (MeasurementLine, error) {
	idx, ok := s.indexOf(KindMeasurement, id)
	if !ok {
		return MeasurementLine{}, fmt.Errorf("update measurement %s: %w", id, ErrNotFound)
	}
	m := &s.measurements[idx]
	if p.Start != nil {
		m.Start = *p.Start
	}
	if p.End != nil {
		m.End = *p.End
	}
	return s.measure(*m), nil
}

// PlacementOf returns the current placement of kind/id.
func (s *Store) PlacementOf(kind Kind, id string) (Placement, bool) {
	idx, ok := s.indexOf(kind, id)
	if !ok {
		return Placement{}, false
	}
	switch kind {
	case KindLightString:
		ls := s.strings[idx]
		return Placement{Start: ls.Start, End: ls.End}, true
	case KindSingularLight:
		return Placement{Center: s.lights[idx].Position}, true
	case KindDecor:
		d := s.decor[idx]
		return Placement{Center: d.Center, Radius: d.Radius}, true
	case KindMeasurement:
		m := s.measurements[idx]
		return Placement{Start: m.Start, End: m.End}, true
	}
	return Placement{}, false
}

// ApplyPlacement writes p back onto kind/id. Decor radii are clamped.
func (s *Store) ApplyPlacement(kind Kind, id string, p Placement) error {
	idx, ok := s.indexOf(kind, id)
	if !ok {
		return fmt.Errorf("apply placement to %s %s: %w", kind, id, ErrNotFound)
	}
	switch kind {
	case KindLightString:
		s.strings[idx].Start = p.Start
		s.strings[idx].End = p.End
	case KindSingularLight:
		s.lights[idx].Position = p.Center
	case KindDecor:
		s.decor[idx].Center = p.Center
		s.decor[idx].Radius = s.bounds.Clamp(p.Radius)
	case KindMeasurement:
		s.measurements[idx].Start = p.Start
		s.measurements[idx].End = p.End
	}
	return nil
}

// Select makes kind/id the only selected entity.
func (s *Store) Select(kind Kind, id string) error {
	if _, ok := s.indexOf(kind, id); !ok {
		return fmt.Errorf("select %s %s: %w", kind, id, ErrNotFound)
	}
	s.selection = Selection{Kind: kind, ID: id}
	return nil
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() { s.selection = Selection{} }

// Selected returns the current selection.
func (s *Store) Selected() (Selection, bool) {
	if s.selection.IsZero() {
		return Selection{}, false
	}
	return s.selection, true
}

// IsSelected reports whether kind/id is the selected entity.
func (s *Store) IsSelected(kind Kind, id string) bool {
	return !s.selection.IsZero() && s.selection.Kind == kind && s.selection.ID == id
}

// Clear removes every entity and the selection.
func (s *Store) Clear() {
	s.strings = nil
	s.lights = nil
	s.decor = nil
	s.measurements = nil
	s.selection = Selection{}
}

// Len returns the total number of entities.
func (s *Store) Len() int {
	return len(s.strings) + len(s.lights) + len(s.decor) + len(s.measurements)
}

// LightStrings returns a copy of the light strings in insertion order.
func (s *Store) LightStrings() []LightString {
	out := make([]LightString, len(s.strings))
	for i, ls := range s.strings {
		if ls.Spacing != nil {
			v := *ls.Spacing
			ls.Spacing = &v
		}
		out[i] = ls
	}
	return out
}

// SingularLights returns a copy of the singular lights in insertion order.
func (s *Store) SingularLights() []SingularLight {
	return append([]SingularLight(nil), s.lights...)
}

// Decor returns a copy of the decor shapes in insertion order.
func (s *Store) Decor() []DecorShape {
	return append([]DecorShape(nil), s.decor...)
}

// MeasurementLines returns the measurement lines with lengths and labels
// computed from the current scale.
func (s *Store) MeasurementLines() []MeasurementLine {
	out := make([]MeasurementLine, len(s.measurements))
	for i, m := range s.measurements {
		out[i] = s.measure(m)
	}
	return out
}

// LightString looks up a light string by id.
func (s *Store) LightString(id string) (LightString, bool) {
	idx, ok := s.indexOf(KindLightString, id)
	if !ok {
		return LightString{}, false
	}
	return s.strings[idx], true
}

// SingularLight looks up a singular light by id.
func (s *Store) SingularLight(id string) (SingularLight, bool) {
	idx, ok := s.indexOf(KindSingularLight, id)
	if !ok {
		return SingularLight{}, false
	}
	return s.lights[idx], true
}

// DecorShape looks up a decor shape by id.
func (s *Store) DecorShape(id string) (DecorShape, bool) {
	idx, ok := s.indexOf(KindDecor, id)
	if !ok {
		return DecorShape{}, false
	}
	return s.decor[idx], true
}

// MeasurementLine looks up a measurement line by id.
func (s *Store) MeasurementLine(id string) (MeasurementLine, bool) {
	idx, ok := s.indexOf(KindMeasurement, id)
	if !ok {
		return MeasurementLine{}, false
	}
	return s.measure(s.measurements[idx]), true
}

// Entity looks up any entity by kind and id.
func (s *Store) Entity(kind Kind, id string) (Entity, bool) {
	idx, ok := s.indexOf(kind, id)
	if !ok {
		return nil, false
	}
	switch kind {
	case KindLightString:
		return s.strings[idx], true
	case KindSingularLight:
		return s.lights[idx], true
	case KindDecor:
		return s.decor[idx], true
	case KindMeasurement:
		return s.measure(s.measurements[idx]), true
	}
	return nil, false
}

func (s *Store) indexOf(kind Kind, id string) (int, bool) {
	switch kind {
	case KindLightString:
		return find(s.strings, id)
	case KindSingularLight:
		return find(s.lights, id)
	case KindDecor:
		return find(s.decor, id)
	case KindMeasurement:
		return find(s.measurements, id)
	}
	return -1, false
}

func find[T Entity](list []T, id string) (int, bool) {
	for i, e := range list {
		if e.EntityID() == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) measure(m MeasurementLine) MeasurementLine {
	m.LengthInFeet = nil
	m.Label = "? ft"
	if s.length == nil {
		return m
	}
	if ft, ok := s.length(m.Start, m.End); ok {
		v := ft
		m.LengthInFeet = &v
		m.Label = s.printer.Sprintf("%.1f ft", ft)
	}
	return m
}
