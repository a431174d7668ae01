package license

import (
	"context"
	"strings"

	"smallbiznis-paytopublish/pkg/errutil"
)

// Configuration holds the settings of one license type instance.
type Configuration map[string]string

// Merge returns a copy of c overlaid with values from other.
func (c Configuration) Merge(other Configuration) Configuration {
	out := make(Configuration, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

type FormElement struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	DefaultValue string `json:"default_value"`
	Required     bool   `json:"required"`
}

// FieldDefinition describes a field a license type adds to its licenses.
type FieldDefinition struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Cardinality int    `json:"cardinality"`
	Required    bool   `json:"required"`
}

// Type is a license type. Instances are created through the Registry and
// carry their own configuration.
type Type interface {
	ID() string
	Label() string
	ActivationOrderState() string

	DefaultConfiguration() Configuration
	Configuration() Configuration
	SetConfiguration(cfg Configuration)

	SetConfigurationValuesOnLicense(l *License)
	GrantLicense(ctx context.Context, l *License) error
	RevokeLicense(ctx context.Context, l *License) error
	BuildLabel(ctx context.Context, l *License) string

	BuildConfigurationForm() []FormElement
	SubmitConfigurationForm(values Configuration) (Configuration, error)
	BuildFieldDefinitions() []FieldDefinition
}

const defaultActivationOrderState = "complete"

// Base carries the configuration shared by every license type. Types embed it.
type Base struct {
	configuration Configuration
}

func (b *Base) ActivationOrderState() string { return defaultActivationOrderState }

func (b *Base) DefaultConfiguration() Configuration { return Configuration{} }

func (b *Base) Configuration() Configuration {
	return Configuration{}.Merge(b.configuration)
}

func (b *Base) SetConfiguration(cfg Configuration) {
	b.configuration = Configuration{}.Merge(cfg)
}

func (b *Base) BuildConfigurationForm() []FormElement { return nil }

func (b *Base) BuildFieldDefinitions() []FieldDefinition { return nil }

// ValidateForm checks values against the required elements of form and
// returns only the values the form knows about.
func ValidateForm(form []FormElement, values Configuration) (Configuration, error) {
	out := make(Configuration, len(form))
	var details []errutil.Detail
	for _, el := range form {
		v := strings.TrimSpace(values[el.Name])
		if el.Required && v == "" {
			details = append(details, errutil.Detail{Field: el.Name, Message: el.Title + " field is required."})
			continue
		}
		out[el.Name] = v
	}

	if len(details) > 0 {
		return nil, errutil.ValidationFailed("invalid license type configuration", nil, errutil.WithDetails(details...))
	}
	return out, nil
}
