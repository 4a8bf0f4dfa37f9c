package lang

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// parseCache maps the hash of (name, options, source) to a *cacheEntry.
// Parsed trees are immutable, so entries are shared between callers.
//
//nolint:gochecknoglobals
var parseCache sync.Map

type cacheEntry struct {
	once  sync.Once
	block *Block
	errs  Errors
}

// ParseFile reads and parses the file at path.
func ParseFile(ctx context.Context, path string, opts ...Option) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return &Block{}, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	return ParseReader(ctx, path, f, opts...)
}

// ParseReader parses everything read from r as the contents of the file
// name. See [ParseString].
func ParseReader(
	ctx context.Context,
	name string,
	r io.Reader,
	opts ...Option,
) (*Block, error) {
	data, err := readAll(r)
	if err != nil {
		return &Block{}, ErrReadInput.Wrap(err).With(slog.String("file", name))
	}

	return parseCached(ctx, name, data, makeOptions(opts...))
}

func parseCached(ctx context.Context, name string, data []byte, o options) (*Block, error) {
	if !o.cache {
		b, errs := parse(ctx, name, data, o)

		return b, errs.Err()
	}

	key := cacheKey(name, data, o)

	value, hit := parseCache.LoadOrStore(key, new(cacheEntry))
	entry := value.(*cacheEntry) //nolint:forcetypeassert

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("file", name),
		slog.String("key", strconv.FormatUint(key, 36)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.block, entry.errs = parse(ctx, name, data, o)
	})

	return entry.block, entry.errs.Err()
}

func cacheKey(name string, data []byte, o options) uint64 {
	h := xxh3.New()

	_, _ = h.WriteString(name)
	_, _ = h.Write([]byte{0, boolByte(o.includes)})
	_, _ = h.Write(data)

	return h.Sum64()
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}

// ClearCache discards all cached parse results. Callers that re-read files
// changed on disk, including files pulled in by include, should call it
// first.
func ClearCache() {
	parseCache.Clear()
}

func readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readAll(f)
}

// readAll reads r through an asynchronous read-ahead buffer.
func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	return io.ReadAll(ra)
}
