package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// PhotoOpener is the subset of photostore.PhotoStore the encoder needs.
type PhotoOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Encoder turns a validated payload into a request body.
type Encoder interface {
	Encode(ctx context.Context, s Schema, p *Payload) (body []byte, contentType string, err error)
}

// Multipart encodes payloads as multipart/form-data. Image fields become
// binary JPEG parts; everything else is a plain form field.
type Multipart struct {
	Photos PhotoOpener
	// Prepare converts stored photo bytes before upload. Nil sends them as is.
	Prepare func([]byte) ([]byte, error)
}

func (m Multipart) Encode(ctx context.Context, s Schema, p *Payload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range p.Fields() {
		txt, ok := text(f.Value)
		if !ok {
			continue
		}

		if img, isImage := f.Value.(Image); isImage {
			filename, declared := s.Images[f.Name]
			if !declared {
				return nil, "", fmt.Errorf("field %s is not an image field", f.Name)
			}
			if err := m.writeImage(ctx, w, f.Name, filename, img.Key); err != nil {
				return nil, "", err
			}
			continue
		}

		if slices.Contains(s.Numeric, f.Name) {
			d, err := decimal.NewFromString(txt)
			if err != nil {
				return nil, "", fmt.Errorf("field %s: %w", f.Name, err)
			}
			txt = d.String()
		}

		if err := w.WriteField(f.Name, txt); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (m Multipart) writeImage(ctx context.Context, w *multipart.Writer, field, filename, key string) error {
	if m.Photos == nil {
		return fmt.Errorf("no photo store configured for field %s", field)
	}
	rc, err := m.Photos.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to open photo for %s: %w", field, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("failed to read photo for %s: %w", field, err)
	}
	if m.Prepare != nil {
		if data, err = m.Prepare(data); err != nil {
			return fmt.Errorf("failed to prepare photo for %s: %w", field, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write part %s: %w", field, err)
	}
	return nil
}

// JSON encodes payloads as a JSON object. Integer fields and numeric values
// (decimals, ints, floats) are sent as numbers; strings stay strings, so a
// preformatted amount such as "3000.00" keeps its digits.
type JSON struct{}

func (JSON) Encode(_ context.Context, s Schema, p *Payload) ([]byte, string, error) {
	obj := make(map[string]any, len(p.Fields()))
	for _, f := range p.Fields() {
		if _, isImage := f.Value.(Image); isImage {
			return nil, "", fmt.Errorf("field %s: images cannot be sent as JSON", f.Name)
		}
		txt, ok := text(f.Value)
		if !ok {
			continue
		}

		if slices.Contains(s.Integer, f.Name) {
			v, err := strconv.Atoi(txt)
			if err != nil {
				return nil, "", fmt.Errorf("field %s: %w", f.Name, err)
			}
			obj[f.Name] = v
			continue
		}

		switch v := f.Value.(type) {
		case bool:
			obj[f.Name] = v
		case int, int64, float64, decimal.Decimal, *decimal.Decimal, *int64:
			obj[f.Name] = json.Number(txt)
		default:
			obj[f.Name] = txt
		}
	}

	body, err := json.Marshal(obj)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode JSON body: %w", err)
	}
	return body, "application/json", nil
}
