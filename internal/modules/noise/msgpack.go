package noise

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"
)

// readoutWire is the compact encoding of a readout channel for snapshot
// artifacts: the qubit tuple plus the flattened row-major confusion matrix.
type readoutWire struct {
	Qubits    []int     `msgpack:"qubits"`
	Rows      int       `msgpack:"rows"`
	Data      []float64 `msgpack:"data"`
	Symmetric bool      `msgpack:"symmetric"`
}

var (
	_ msgpack.CustomEncoder = (*ReadoutErrorChannel)(nil)
	_ msgpack.CustomDecoder = (*ReadoutErrorChannel)(nil)
)

// EncodeMsgpack implements msgpack.CustomEncoder.
func (c *ReadoutErrorChannel) EncodeMsgpack(enc *msgpack.Encoder) error {
	rows, cols := c.confusion.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, c.confusion.At(i, j))
		}
	}
	return enc.Encode(readoutWire{
		Qubits:    c.Qubits(),
		Rows:      rows,
		Data:      data,
		Symmetric: c.Symmetric,
	})
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (c *ReadoutErrorChannel) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w readoutWire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	if w.Rows == 0 || len(w.Data)%w.Rows != 0 {
		return fmt.Errorf("malformed readout channel encoding: %d values for %d rows", len(w.Data), w.Rows)
	}
	c.qubits = w.Qubits
	c.confusion = mat.NewDense(w.Rows, len(w.Data)/w.Rows, w.Data)
	c.Symmetric = w.Symmetric
	return nil
}
