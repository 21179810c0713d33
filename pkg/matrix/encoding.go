package matrix

import (
	"encoding/json"

	"github.com/MattanMohel/net-rs/pkg/num"
)

// matrixJSON mirrors the model persistence format's matrix shape:
// {rows, cols, row-major buffer}.
type matrixJSON[N num.Num] struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	Buf  []N `json:"buf"`
}

// MarshalJSON encodes m as {rows, cols, buf}.
func (m Matrix[N]) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON[N]{Rows: m.rows, Cols: m.cols, Buf: m.buf})
}

// UnmarshalJSON decodes m from {rows, cols, buf}, validating that the
// buffer length agrees with the declared shape.
func (m *Matrix[N]) UnmarshalJSON(data []byte) error {
	var j matrixJSON[N]
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	decoded, err := FromRowMajor(j.Rows, j.Cols, j.Buf)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// vectorJSON mirrors the model persistence format's vector shape:
// {rows, buffer} — no cols field, since a Vector's column count is
// always 1.
type vectorJSON[N num.Num] struct {
	Rows int `json:"rows"`
	Buf  []N `json:"buf"`
}

// MarshalJSON encodes v as {rows, buf}.
func (v Vector[N]) MarshalJSON() ([]byte, error) {
	return json.Marshal(vectorJSON[N]{Rows: v.rows, Buf: v.buf})
}

// UnmarshalJSON decodes v from {rows, buf}.
func (v *Vector[N]) UnmarshalJSON(data []byte) error {
	var j vectorJSON[N]
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	decoded, err := VectorFromSlice(j.Buf)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
