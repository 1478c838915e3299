// Package helpers tiene utilidades de lectura de requests compartidas por controllers.
package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// MaxBodyBytes limita el body de los formularios de auth.
const MaxBodyBytes = 64 << 10

var ErrBadBody = errors.New("helpers: invalid request body")

// ReadFields lee un form (urlencoded o multipart) o un objeto JSON plano de
// strings. Campos desconocidos se ignoran.
func ReadFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	out := map[string]string{}

	switch ct {
	case "application/json":
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
		}
		for k, v := range raw {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
		}
	}
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}

// Field retorna el campo recortado.
func Field(fields map[string]string, name string) string {
	return strings.TrimSpace(fields[name])
}
