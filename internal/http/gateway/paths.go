package gateway

import (
	"fmt"
	"strings"
)

// Category es la sensibilidad del endpoint.
type Category string

const (
	CategoryPublic       Category = "public"
	CategoryProtected    Category = "protected"
	CategoryLogout       Category = "logout"
	CategoryRefresh      Category = "refresh"
	CategoryVerification Category = "verification"
)

// IsAction: los paths de acción exigen un token válido del propósito correcto
// y fallan cerrado (401). Los protegidos dejan pasar sin identidad.
func (c Category) IsAction() bool {
	switch c {
	case CategoryLogout, CategoryRefresh, CategoryVerification:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// Paths son los conjuntos configurados. Todo lo que no aparece es protegido.
type Paths struct {
	Public       []string
	Logout       []string
	Refresh      []string
	Verification []string
}

// PathSet resuelve un path a su categoría por match exacto.
type PathSet struct {
	byPath map[string]Category
}

// NewPathSet falla si un path aparece en más de un conjunto.
func NewPathSet(p Paths) (*PathSet, error) {
	s := &PathSet{byPath: map[string]Category{}}
	groups := []struct {
		cat   Category
		paths []string
	}{
		{CategoryPublic, p.Public},
		{CategoryLogout, p.Logout},
		{CategoryRefresh, p.Refresh},
		{CategoryVerification, p.Verification},
	}
	for _, g := range groups {
		for _, raw := range g.paths {
			path := normalizePath(raw)
			if path == "" {
				continue
			}
			if prev, ok := s.byPath[path]; ok && prev != g.cat {
				return nil, fmt.Errorf("gateway: path %q is both %s and %s", path, prev, g.cat)
			}
			s.byPath[path] = g.cat
		}
	}
	return s, nil
}

// Categorize retorna la categoría del path; CategoryProtected por defecto.
func (s *PathSet) Categorize(path string) Category {
	if c, ok := s.byPath[normalizePath(path)]; ok {
		return c
	}
	return CategoryProtected
}

// normalizePath recorta espacios y la barra final ("/v1/x/" == "/v1/x").
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
