// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/goccy/go-json"
)

// Part is one part of a multipart form. A part with a FileName is sent as a file, a
// part with a ContentType but no FileName as a typed blob, everything else as a
// plain form field.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// Multipart is a multipart form
type Multipart struct {
	Parts []Part
}

// JSONPart returns a blob part holding the JSON encoding of v with its own
// application/json content type
func JSONPart(name string, v interface{}) (Part, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Part{}, fmt.Errorf("cannot encode part %s: %w", name, err)
	}
	return Part{Name: name, ContentType: "application/json", Data: data}, nil
}

// FilePart returns a file part. The content type is sniffed from the data.
func FilePart(name, fileName string, data []byte) Part {
	return Part{Name: name, FileName: fileName, ContentType: http.DetectContentType(data), Data: data}
}

// FieldPart returns a plain form field
func FieldPart(name, value string) Part {
	return Part{Name: name, Data: []byte(value)}
}

// Add appends parts to the form
func (m *Multipart) Add(parts ...Part) {
	m.Parts = append(m.Parts, parts...)
}

// Part returns the part with the given name
func (m Multipart) Part(name string) (Part, bool) {
	for _, p := range m.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes the form. The returned content type carries the boundary chosen by
// the writer.
func (m Multipart) Encode() ([]byte, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for _, p := range m.Parts {
		if p.FileName == "" && p.ContentType == "" {
			if err := w.WriteField(p.Name, string(p.Data)); err != nil {
				return nil, "", err
			}
			continue
		}
		fileName := p.FileName
		if fileName == "" {
			fileName = "blob"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.Name), quoteEscaper.Replace(fileName)))
		h.Set("Content-Type", p.ContentType)
		fw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err = fw.Write(p.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return b.Bytes(), w.FormDataContentType(), nil
}
