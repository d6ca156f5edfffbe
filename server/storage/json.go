package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// LoadJSON decodes the document under key into dst. Missing or malformed
// documents are logged and dst is set to fallback instead. Any other read
// failure is returned and dst is left untouched, so callers never persist
// defaults over data they could not read. The returned bool reports whether
// stored data was used.
func LoadJSON[T any](ctx context.Context, kv KV, log *zap.Logger, key string, dst *T, fallback func() T) (bool, error) {
	raw, err := kv.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Info("no stored document, using defaults", zap.String("key", key))
		*dst = fallback()
		return false, nil
	case err != nil:
		log.Error("failed to read stored document", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("storage: read %q: %w", key, err)
	}

	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		log.Warn("malformed stored document, using defaults", zap.String("key", key), zap.Error(err))
		*dst = fallback()
		return false, nil
	}
	*dst = decoded
	return true, nil
}

func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
