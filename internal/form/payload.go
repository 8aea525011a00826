package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Image references a photo held in the device photo store.
type Image struct {
	Key string
}

type Field struct {
	Name  string
	Value any
}

// Payload is an ordered field map. Values are strings, bools, ints, floats,
// decimals, Image references or nil.
type Payload struct {
	fields []Field
}

func NewPayload() *Payload {
	return &Payload{}
}

// Set assigns name, keeping its existing position when name already exists.
func (p *Payload) Set(name string, value any) *Payload {
	for i := range p.fields {
		if p.fields[i].Name == name {
			p.fields[i].Value = value
			return p
		}
	}
	p.fields = append(p.fields, Field{Name: name, Value: value})
	return p
}

func (p *Payload) Get(name string) (any, bool) {
	for _, f := range p.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (p *Payload) Fields() []Field {
	out := make([]Field, len(p.fields))
	copy(out, p.fields)
	return out
}

// Clone returns a copy that can be modified without touching p.
func (p *Payload) Clone() *Payload {
	return &Payload{fields: p.Fields()}
}

// text renders a value the way it is sent as a form field. ok is false for
// nil and empty values, which are never transmitted.
func text(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = strings.TrimSpace(x)
	case bool:
		s = strconv.FormatBool(x)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		s = x.String()
	case *decimal.Decimal:
		if x == nil {
			return "", false
		}
		s = x.String()
	case *int64:
		if x == nil {
			return "", false
		}
		s = strconv.FormatInt(*x, 10)
	case Image:
		s = x.Key
	default:
		return "", false
	}
	return s, s != ""
}

// FormatTimestamp renders t in UTC with millisecond precision, e.g.
// 2025-03-01T09:30:00.000Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
