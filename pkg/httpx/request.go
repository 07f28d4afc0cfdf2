package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/oauthgw/pkg/errx"
)

// MaxBodyBytes caps every request body the gateway reads.
const MaxBodyBytes = 1 << 20

// Fields is a flat view of a request body.
type Fields map[string]string

// First returns the first non-blank value among keys. Used for fields that
// accept more than one spelling (first-name / firstName).
func (f Fields) First(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(f[k]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether any of keys was sent, even if blank.
func (f Fields) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := f[k]; ok {
			return true
		}
	}
	return false
}

// ReadFields reads a flat body from a JSON object, an urlencoded form or a
// multipart form. An empty body yields empty Fields. Malformed bodies are
// validation errors.
func ReadFields(w http.ResponseWriter, r *http.Request) (Fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, errx.Validation("malformed form body")
		}
		return fromValues(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return nil, errx.Validation("malformed multipart body")
		}
		return fromValues(r.MultipartForm.Value), nil
	default:
		return readJSONFields(r.Body)
	}
}

func fromValues(v map[string][]string) Fields {
	f := make(Fields, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			f[k] = vals[0]
		}
	}
	return f
}

func readJSONFields(body io.Reader) (Fields, error) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Fields{}, nil
		}
		return nil, errx.Validation("malformed JSON body")
	}

	f := make(Fields, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			f[k] = t
		case bool:
			f[k] = strconv.FormatBool(t)
		case float64:
			f[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			return nil, errx.Validationf("field %q must be a scalar", k)
		}
	}
	return f, nil
}
