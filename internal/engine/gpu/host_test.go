package gpu

import (
	"errors"
	"testing"

	"github.com/Faultbox/skmesh/pkg/formats"
)

func TestHostDevice_CreateDestroy(t *testing.T) {
	d := NewHostDevice()

	var layout formats.VertexLayout
	layout.Begin().Add(formats.AttribPosition, 3, formats.AttribTypeFloat, false, false).End()

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	vb, err := d.CreateVertexBuffer(src, &layout)
	if err != nil {
		t.Fatalf("CreateVertexBuffer failed: %v", err)
	}
	ib, err := d.CreateIndexBuffer([]byte{0, 0, 1, 0, 2, 0})
	if err != nil {
		t.Fatalf("CreateIndexBuffer failed: %v", err)
	}
	if !vb.Valid() || !ib.Valid() {
		t.Fatalf("got invalid handles %v %v", vb, ib)
	}
	if vb.ID == ib.ID {
		t.Errorf("vertex and index handles share ID %d", vb.ID)
	}

	// device keeps its own copy
	src[0] = 0xff
	data, gotLayout, ok := d.VertexData(vb)
	if !ok {
		t.Fatal("VertexData: buffer not found")
	}
	if data[0] != 1 {
		t.Error("vertex buffer aliases caller data")
	}
	if gotLayout.Stride != 12 {
		t.Errorf("stored layout stride = %d, want 12", gotLayout.Stride)
	}

	s := d.Stats()
	if s.Created != 2 || s.Live != 2 || s.Bytes != 18 {
		t.Errorf("Stats() = %+v, want Created=2 Live=2 Bytes=18", s)
	}

	if err := d.DestroyVertexBuffer(vb); err != nil {
		t.Errorf("DestroyVertexBuffer failed: %v", err)
	}
	if err := d.DestroyIndexBuffer(ib); err != nil {
		t.Errorf("DestroyIndexBuffer failed: %v", err)
	}

	s = d.Stats()
	if s.Created != s.Destroyed || s.Live != 0 {
		t.Errorf("Stats() after destroy = %+v", s)
	}
}

func TestHostDevice_DestroyUnknown(t *testing.T) {
	d := NewHostDevice()

	if err := d.DestroyVertexBuffer(VertexBufferHandle{}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("DestroyVertexBuffer(invalid) = %v, want ErrInvalidHandle", err)
	}

	ib, _ := d.CreateIndexBuffer(nil)
	if err := d.DestroyIndexBuffer(ib); err != nil {
		t.Fatalf("first destroy failed: %v", err)
	}
	if err := d.DestroyIndexBuffer(ib); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("second destroy = %v, want ErrInvalidHandle", err)
	}
	if s := d.Stats(); s.Destroyed != 1 {
		t.Errorf("Destroyed = %d, want 1", s.Destroyed)
	}
}

func TestHandles_ZeroValueInvalid(t *testing.T) {
	if (VertexBufferHandle{}).Valid() {
		t.Error("zero VertexBufferHandle reports valid")
	}
	if (IndexBufferHandle{}).Valid() {
		t.Error("zero IndexBufferHandle reports valid")
	}
}
