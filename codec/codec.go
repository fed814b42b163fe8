// Package codec handles the serialization of component values. All component
// types must round-trip through JSON.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Decode unmarshals bz into a fresh value of type T.
func Decode[T any](bz []byte) (T, error) {
	comp := new(T)
	if err := json.Unmarshal(bz, comp); err != nil {
		return *comp, eris.Wrap(err, "")
	}
	return *comp, nil
}

// Encode marshals the given component value.
func Encode(comp any) ([]byte, error) {
	bz, err := json.Marshal(comp)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}
