package pms

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"hotel_desk/internal/domain"
)

type formField struct {
	name      string
	value     string
	clearable bool
}

func field(name, value string) formField { return formField{name: name, value: value} }

// clearable marks an optional field the API accepts empty to erase it.
func clearable(name, value string) formField { return formField{name: name, value: value, clearable: true} }

// multipartRequest encodes fields plus an optional "image" part. Empty values
// are skipped, except that a full (non-partial) write sends empty clearable
// fields so the stored value is erased.
func multipartRequest(method, path, route string, fields []formField, img *domain.Upload, partial bool) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.value == "" && (partial || !f.clearable) {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return request{}, err
		}
	}
	if img != nil && len(img.Data) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+escapeQuotes(img.Filename)+`"`)
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, err
		}
		if _, err := part.Write(img.Data); err != nil {
			return request{}, err
		}
	}
	if err := w.Close(); err != nil {
		return request{}, err
	}
	return request{method: method, path: path, route: route, body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
