package mesh

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/skmesh/internal/engine/gpu"
	"github.com/Faultbox/skmesh/internal/logger"
)

// Open reads a compiled geometry file and decodes it. Decode is not
// attempted if the file cannot be read.
func Open(path string, dev gpu.Device, ramCopy bool) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh: %w", err)
	}

	m := New()
	if err := m.Decode(data, dev, ramCopy); err != nil {
		return nil, fmt.Errorf("decoding mesh %s: %w", path, err)
	}

	logger.Info("mesh loaded",
		zap.String("path", path),
		zap.Int("instances", len(m.instances)),
		zap.Int("vertices", m.VertexTotal()),
		zap.Int("indices", m.IndexTotal()),
	)
	return m, nil
}
