package subscribers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketbot/internal/config"
	"marketbot/internal/transport"
	"marketbot/pkg/logx"
)

// ErrUnavailable wraps backend failures (unreachable Redis, corrupt file).
// Callers test for it with errors.Is; a broadcast run that hits it while
// resolving recipients ends early with zero sends.
var ErrUnavailable = errors.New("subscriber store unavailable")

// Store is the durable set of broadcast recipients. Add and Remove are
// idempotent; ListAll carries no ordering guarantee.
type Store interface {
	Add(ctx context.Context, id transport.Recipient) error
	Remove(ctx context.Context, id transport.Recipient) error
	ListAll(ctx context.Context) ([]transport.Recipient, error)
	Close() error
}

// Open initializes the configured backend. The driver is chosen once here;
// everything else depends only on Store.
func Open(cfg config.SubscribersConfig, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "redis":
		return openRedis(cfg, log)
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("unknown subscribers driver %q", cfg.Driver)
	}
}

// IsUnavailable reports whether err stems from an unreachable or corrupt
// backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}
