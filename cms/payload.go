package cms

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/rneambassadors/portal/apperr"
)

// sanitizer strips script content from every stored free-text field; these
// values render on public pages.
var sanitizer = bluemonday.UGCPolicy()

// payload is a decoded mutation request: the text fields the caller actually
// sent, plus the raw image upload when one was attached. Absent and empty
// fields are distinguishable, which is what makes partial updates work.
type payload struct {
	fields map[string]string
	image  []byte
}

// decodePayload branches on content type: multipart when the request carries
// a binary image, JSON otherwise. A zero-byte upload counts as no file.
func decodePayload(c *gin.Context) (*payload, error) {
	p := &payload{fields: map[string]string{}}

	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperr.Wrap(err, apperr.ErrBadRequest, "malformed multipart body")
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				p.fields[k] = vs[0]
			}
		}
		if files := form.File["image"]; len(files) > 0 && files[0].Size > 0 {
			f, err := files[0].Open()
			if err != nil {
				return nil, apperr.Wrap(err, apperr.ErrBadRequest, "unreadable image upload")
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, apperr.Wrap(err, apperr.ErrBadRequest, "unreadable image upload")
			}
			p.image = data
		}
		return p, nil
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrBadRequest, "malformed json body")
	}
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			p.fields[k] = t
		case bool:
			p.fields[k] = strconv.FormatBool(t)
		case float64:
			p.fields[k] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return p, nil
}

func (p *payload) get(key string) string {
	return p.fields[key]
}

func (p *payload) has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// firstMissing returns the first required key whose value is empty.
func (p *payload) firstMissing(keys ...string) (string, bool) {
	for _, k := range keys {
		if strings.TrimSpace(p.fields[k]) == "" {
			return k, true
		}
	}
	return "", false
}

// sanitize runs the HTML policy over every provided text field, uniformly
// for all entity kinds.
func (p *payload) sanitize() {
	for k, v := range p.fields {
		p.fields[k] = strings.TrimSpace(sanitizer.Sanitize(v))
	}
}

// boolOr parses a provided boolean field, falling back when absent.
func (p *payload) boolOr(key string, fallback bool) bool {
	v, ok := p.fields[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// apply copies a provided field into a column-keyed update map.
func (p *payload) apply(updates map[string]any, key, column string) {
	if v, ok := p.fields[key]; ok {
		updates[column] = v
	}
}

// applyBool copies a provided boolean field into the update map.
func (p *payload) applyBool(updates map[string]any, key, column string) {
	if v, ok := p.fields[key]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			updates[column] = b
		}
	}
}
