package assets

import "errors"

// Resolver tries a custom directory first and falls back to the embedded
// sheets when the name is not found there.
type Resolver struct {
	custom   Loader // nil without a custom directory
	embedded Loader
}

// NewResolver returns a Resolver over customBasePath; "" uses the embedded
// sheets only.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: EmbeddedLoader{}}
	if customBasePath != "" {
		fl, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fl
	}
	return r, nil
}

// LoadSheet loads name. Validation and read errors of the custom directory
// are returned as is; only a missing sheet falls back.
func (r *Resolver) LoadSheet(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadSheet(name)
	}
	css, err := r.custom.LoadSheet(name)
	if err == nil {
		return css, nil
	}
	if !errors.Is(err, ErrSheetNotFound) {
		return "", err
	}
	return r.embedded.LoadSheet(name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

var _ Loader = (*Resolver)(nil)
