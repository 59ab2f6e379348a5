package render

import "fmt"

// InterfaceEntry is one named, typed slot a ProgramInterface requires.
type InterfaceEntry struct {
	Name string
	Type Type
}

// ProgramInterface declares the uniforms, samplers and attributes a
// consumer expects a program to provide. Asset readers use it to reject a
// program before it is ever drawn with.
type ProgramInterface struct {
	Uniforms   []InterfaceEntry
	Samplers   []InterfaceEntry
	Attributes []InterfaceEntry
}

// AddUniform declares a required uniform.
func (pi *ProgramInterface) AddUniform(name string, t Type) {
	pi.Uniforms = append(pi.Uniforms, InterfaceEntry{Name: name, Type: t})
}

// AddSampler declares a required sampler.
func (pi *ProgramInterface) AddSampler(name string, t Type) {
	pi.Samplers = append(pi.Samplers, InterfaceEntry{Name: name, Type: t})
}

// AddAttribute declares a required vertex attribute.
func (pi *ProgramInterface) AddAttribute(name string, t Type) {
	pi.Attributes = append(pi.Attributes, InterfaceEntry{Name: name, Type: t})
}

// Check returns an error naming the first entry the program lacks or
// declares with a different type.
func (pi *ProgramInterface) Check(p *Program) error {
	for _, e := range pi.Uniforms {
		u := p.Uniform(e.Name)
		if u == nil || u.Type != e.Type {
			return fmt.Errorf("uniform %s missing or not of type %s: %w", e.Name, e.Type, ErrInterfaceMismatch)
		}
	}
	for _, e := range pi.Samplers {
		s := p.Sampler(e.Name)
		if s == nil || s.Type != e.Type {
			return fmt.Errorf("sampler %s missing or not of type %s: %w", e.Name, e.Type, ErrInterfaceMismatch)
		}
	}
	for _, e := range pi.Attributes {
		a, ok := p.Attribute(e.Name)
		if !ok || a.Type != e.Type {
			return fmt.Errorf("attribute %s missing or not of type %s: %w", e.Name, e.Type, ErrInterfaceMismatch)
		}
	}
	return nil
}

// Matches reports whether the program satisfies the interface. With verbose
// set, a mismatch is logged naming the offending entry.
func (pi *ProgramInterface) Matches(p *Program, verbose bool) bool {
	err := pi.Check(p)
	if err != nil && verbose {
		logger.Error("program does not match interface", "error", err)
	}
	return err == nil
}

// CheckFormat returns an error naming the first declared attribute that has
// no same-named component of matching width in format.
func (pi *ProgramInterface) CheckFormat(format VertexFormat) error {
	for _, e := range pi.Attributes {
		c, ok := format.Component(e.Name)
		if !ok || c.Count != e.Type.Components() {
			return fmt.Errorf("vertex component %s missing or not compatible with %s: %w", e.Name, e.Type, ErrInterfaceMismatch)
		}
	}
	return nil
}

// MatchesFormat reports whether a vertex format provides every declared
// attribute. With verbose set, a mismatch is logged.
func (pi *ProgramInterface) MatchesFormat(format VertexFormat, verbose bool) bool {
	err := pi.CheckFormat(format)
	if err != nil && verbose {
		logger.Error("vertex format does not match interface", "error", err)
	}
	return err == nil
}
