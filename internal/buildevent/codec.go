package buildevent

import (
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
)

// Decode turns one frame into an event. It always returns a usable event:
// when the frame is not an object, or its type is missing or unknown, the
// frame is wrapped verbatim as a RawMessage and a decode error is returned
// alongside it.
func Decode(frame string) (Event, error) {
	if !gjson.Valid(frame) {
		return Raw(frame), ferrors.DecodeError("frame is not valid structured data").
			WithContext("frame", frame).
			Build()
	}
	doc := gjson.Parse(frame)
	if !doc.IsObject() {
		return Raw(frame), ferrors.DecodeError("frame is not an object").
			WithContext("frame", frame).
			Build()
	}

	typeField := doc.Get(FieldType)
	if !typeField.Exists() {
		return Raw(frame), ferrors.DecodeError("frame has no type field").
			WithContext("frame", frame).
			Build()
	}
	t, ok := ParseType(typeField.String())
	if !ok {
		return Raw(frame), ferrors.DecodeError("frame has an unrecognized type").
			WithContext("type", typeField.String()).
			WithContext("frame", frame).
			Build()
	}

	fields := make(map[string]string)
	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.String {
			fields[key.String()] = value.String()
		} else {
			fields[key.String()] = value.Raw
		}
		return true
	})

	importance := ImportanceNone
	if t == TypeBuildMessage {
		importance = ParseImportance(fields[FieldImportance])
	}
	return New(t, importance, fields), nil
}

// Encode writes the event in the structured encoding Decode accepts.
func Encode(e Event) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, FieldType, e.typ.String()); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		if k == FieldType || (k == FieldImportance && e.typ == TypeBuildMessage) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		// Keys are used literally, not as sjson paths.
		if out, err = sjson.SetBytes(out, escapePath(k), e.fields[k]); err != nil {
			return nil, err
		}
	}
	if e.typ == TypeBuildMessage {
		if out, err = sjson.SetBytes(out, FieldImportance, e.importance.String()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MarshalJSON encodes the event in its wire form.
func (e Event) MarshalJSON() ([]byte, error) {
	return Encode(e)
}

// UnmarshalJSON decodes the wire form, keeping the RawMessage fallback.
func (e *Event) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(string(data))
	*e = decoded
	if err != nil && !ferrors.HasCategory(err, ferrors.CategoryDecode) {
		return err
	}
	return nil
}

func escapePath(key string) string {
	special := func(r byte) bool {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			return true
		}
		return false
	}
	buf := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		if special(key[i]) {
			buf = append(buf, '\\')
		}
		buf = append(buf, key[i])
	}
	return string(buf)
}
