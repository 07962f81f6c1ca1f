package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/filex"
	"github.com/dmitrijs2005/securedrop/internal/logging"
)

// JSONRepository keeps a namespace in a single JSON object file.
//
// An absent or empty file is an empty namespace. An unparsable file is
// treated as empty with a warning, or rejected with common.ErrCorruptStore
// when strict is set.
type JSONRepository[T any] struct {
	path   string
	strict bool
	log    logging.Logger
}

func NewJSONRepository[T any](path string, strict bool, log logging.Logger) *JSONRepository[T] {
	return &JSONRepository[T]{path: path, strict: strict, log: log.With("store", filepath.Base(path))}
}

func (r *JSONRepository[T]) Load(ctx context.Context) (map[string]T, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]T), nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return make(map[string]T), nil
	}

	var out map[string]T
	if err := json.Unmarshal(data, &out); err != nil {
		if r.strict {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrCorruptStore, r.path, err)
		}
		r.log.Warn(ctx, "unparsable store treated as empty", "path", r.path, "error", err)
		return make(map[string]T), nil
	}
	if out == nil {
		out = make(map[string]T)
	}
	return out, nil
}

func (r *JSONRepository[T]) Save(ctx context.Context, data map[string]T) error {
	if data == nil {
		data = make(map[string]T)
	}

	b, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.path, err)
	}

	if _, err := filex.EnsureDir(filepath.Dir(r.path)); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(r.path, append(b, '\n'), 0o600); err != nil {
		return err
	}

	r.log.Debug(ctx, "store saved", "records", len(data))
	return nil
}
