package partials

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Extensions lists the file extensions recognised as partials
var Extensions = []string{".hbs", ".handlebars"}

// Registrar is the part of the engine the loader registers into
type Registrar interface {
	RegisterPartial(name, text string)
}

// HashReader reads a whole Redis hash. *redis.Client satisfies it.
type HashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// HashWriter stores fields in a Redis hash. *redis.Client satisfies it.
type HashWriter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Loader loads partial libraries
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new loader
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadDir walks dir and reads every partial file below it.
//
// Files that cannot be read do not stop the walk: their errors are combined
// and returned next to the partials that were loaded.
func (l *Loader) LoadDir(dir string) (map[string]string, error) {
	return l.LoadFS(os.DirFS(dir), dir)
}

// LoadFS is LoadDir over an fs.FS. root only labels log entries and errors.
func (l *Loader) LoadFS(fsys fs.FS, root string) (map[string]string, error) {
	lib := make(map[string]string)
	var errs error

	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			errs = multierr.Append(errs, fmt.Errorf("failed to read %s: %w", path.Join(root, p), err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		name, ok := partialName(p)
		if !ok {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to read %s: %w", path.Join(root, p), err))
			return nil
		}

		if _, dup := lib[name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("duplicate partial %q at %s", name, path.Join(root, p)))
			return nil
		}
		lib[name] = string(data)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk partials directory %s: %w", root, walkErr)
	}

	l.logger.Info("loaded partials from directory",
		zap.String("dir", root),
		zap.Int("count", len(lib)),
		zap.Int("errors", len(multierr.Errors(errs))),
	)
	return lib, errs
}

// partialName strips a recognised extension from a slash separated path
func partialName(p string) (string, bool) {
	base := path.Base(p)
	for _, ext := range Extensions {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) {
			return strings.TrimSuffix(p, ext), true
		}
	}
	return "", false
}

// LoadRedis reads the partial library stored in the hash at key. A missing
// key yields an empty library.
func (l *Loader) LoadRedis(ctx context.Context, client HashReader, key string) (map[string]string, error) {
	lib, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load partials from %s: %w", key, err)
	}

	l.logger.Info("loaded partials from redis",
		zap.String("key", key),
		zap.Int("count", len(lib)),
	)
	return lib, nil
}

// SaveRedis stores lib in the hash at key, one field per partial
func (l *Loader) SaveRedis(ctx context.Context, client HashWriter, key string, lib map[string]string) error {
	if len(lib) == 0 {
		return nil
	}

	values := make([]interface{}, 0, 2*len(lib))
	for _, name := range Names(lib) {
		values = append(values, name, lib[name])
	}
	if err := client.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("failed to save partials to %s: %w", key, err)
	}

	l.logger.Debug("saved partials to redis", zap.String("key", key), zap.Int("count", len(lib)))
	return nil
}

// Register adds every partial of lib to r in name order
func Register(r Registrar, lib map[string]string) {
	for _, name := range Names(lib) {
		r.RegisterPartial(name, lib[name])
	}
}

// Merge combines libraries. Later libraries override earlier ones.
func Merge(libs ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, lib := range libs {
		for name, text := range lib {
			out[name] = text
		}
	}
	return out
}

// Names returns the partial names of lib, sorted
func Names(lib map[string]string) []string {
	names := make([]string, 0, len(lib))
	for name := range lib {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
