package ir

import (
	"encoding/json"
	"fmt"
	"math"
)

// Float is a float64 whose JSON form keeps non-finite values: NaN, +Inf and
// -Inf encode as the strings "NaN", "+Inf" and "-Inf". Integrals of
// misbehaving integrands propagate these, and encoding/json would otherwise
// refuse the whole document.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler. It accepts plain numbers and
// the three strings produced by MarshalJSON.
func (f *Float) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*f = Float(math.NaN())
		case "+Inf", "Inf":
			*f = Float(math.Inf(1))
		case "-Inf":
			*f = Float(math.Inf(-1))
		default:
			return fmt.Errorf("ir: invalid float %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// runJSON strips Run's methods so the JSON hooks below can reuse the
// default encoding for every other field.
type runJSON Run

// MarshalJSON encodes Integral and Error as Float.
func (r Run) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		runJSON
		Integral Float `json:"integral"`
		Error    Float `json:"error"`
	}{runJSON(r), Float(r.Integral), Float(r.Error)})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Run) UnmarshalJSON(data []byte) error {
	aux := struct {
		*runJSON
		Integral Float `json:"integral"`
		Error    Float `json:"error"`
	}{runJSON: (*runJSON)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Integral = float64(aux.Integral)
	r.Error = float64(aux.Error)
	return nil
}
