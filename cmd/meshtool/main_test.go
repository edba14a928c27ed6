package main

import (
	"testing"

	"github.com/Faultbox/skmesh/internal/engine/mesh"
)

func TestCheckPrimitive(t *testing.T) {
	in := mesh.Instance{
		VertexCount: 4,
		IndexCount:  6,
		Indices:     []uint16{0, 1, 2, 2, 3, 0},
	}

	tests := []struct {
		name     string
		prim     mesh.Primitive
		problems int
	}{
		{"whole buffer", mesh.Primitive{IndexCount: 6, VertexCount: 4}, 0},
		{"second triangle", mesh.Primitive{StartIndex: 3, IndexCount: 3, VertexCount: 4}, 0},
		{"index range past end", mesh.Primitive{StartIndex: 3, IndexCount: 6}, 1},
		{"vertex range past end", mesh.Primitive{IndexCount: 3, StartVertex: 2, VertexCount: 4}, 2},
		{"base vertex pushes index out", mesh.Primitive{StartIndex: 3, IndexCount: 3, StartVertex: 1, VertexCount: 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkPrimitive(in, tt.prim)
			if len(got) != tt.problems {
				t.Errorf("got %d problems %v, want %d", len(got), got, tt.problems)
			}
		})
	}
}
