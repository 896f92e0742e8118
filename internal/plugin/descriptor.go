package plugin

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Ident identifies a plugin: its class name plus version requirements.
// Identity is the class name alone.
type Ident struct {
	ClassName             string
	Version               Version
	RequiredKernelVersion Version
}

// SimpleName returns the last dot-separated segment of the class name.
func (id Ident) SimpleName() string {
	name := id.ClassName
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}

// Equal reports whether both idents share the class name and version.
func (id Ident) Equal(other Ident) bool {
	return id.ClassName == other.ClassName && id.Version.Equal(other.Version)
}

// Descriptor is the metadata record of a plugin: its ident plus display
// information and dependency list.
type Descriptor struct {
	Ident
	Name         string
	Author       string
	Description  string
	Dependencies []Ident
}

// NewDescriptor creates a descriptor whose display name defaults to the
// simple class name.
func NewDescriptor(className string, version Version) *Descriptor {
	d := &Descriptor{Ident: Ident{ClassName: className, Version: version}}
	d.Name = d.SimpleName()
	return d
}

// xmlDescriptor is the on-disk descriptor form. Every element holds a single
// string value; dependency entries carry only a class name, so dependency
// versions round-trip as "any".
type xmlDescriptor struct {
	XMLName               xml.Name         `xml:"plugin"`
	ClassName             string           `xml:"classname"`
	Version               string           `xml:"version"`
	RequiredKernelVersion string           `xml:"required_kernel_version"`
	Name                  string           `xml:"name,omitempty"`
	Author                string           `xml:"author,omitempty"`
	Description           string           `xml:"description,omitempty"`
	Dependencies          *xmlDependencies `xml:"dependencies,omitempty"`
}

type xmlDependencies struct {
	Dependency []string `xml:"dependency"`
}

// SaveXML writes the descriptor as a <plugin> XML document.
func (d *Descriptor) SaveXML(w io.Writer) error {
	xd := xmlDescriptor{
		ClassName:             d.ClassName,
		Version:               d.Version.String(),
		RequiredKernelVersion: d.RequiredKernelVersion.String(),
		Name:                  d.Name,
		Author:                d.Author,
		Description:           d.Description,
	}
	if len(d.Dependencies) > 0 {
		xd.Dependencies = &xmlDependencies{}
		for _, dep := range d.Dependencies {
			xd.Dependencies.Dependency = append(xd.Dependencies.Dependency, dep.ClassName)
		}
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xd); err != nil {
		return fmt.Errorf("encoding plugin descriptor: %w", err)
	}
	return enc.Close()
}

// LoadXML reads a <plugin> XML document.
func LoadXML(r io.Reader) (*Descriptor, error) {
	var xd xmlDescriptor
	if err := xml.NewDecoder(r).Decode(&xd); err != nil {
		return nil, fmt.Errorf("decoding plugin descriptor: %w", err)
	}
	if xd.ClassName == "" {
		return nil, fmt.Errorf("plugin descriptor missing classname")
	}
	version, err := ParseVersion(xd.Version)
	if err != nil {
		return nil, err
	}
	kernel, err := ParseVersion(xd.RequiredKernelVersion)
	if err != nil {
		return nil, err
	}
	d := &Descriptor{
		Ident: Ident{
			ClassName:             xd.ClassName,
			Version:               version,
			RequiredKernelVersion: kernel,
		},
		Name:        xd.Name,
		Author:      xd.Author,
		Description: xd.Description,
	}
	if d.Name == "" {
		d.Name = d.SimpleName()
	}
	if xd.Dependencies != nil {
		for _, dep := range xd.Dependencies.Dependency {
			d.Dependencies = append(d.Dependencies, Ident{ClassName: dep})
		}
	}
	return d, nil
}
