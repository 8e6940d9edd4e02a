package weaviate

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"golang.org/x/sync/singleflight"
)

// DBVersionProvider resolves the server version once and caches it.
// Failures never surface as errors; they yield "".
type DBVersionProvider struct {
	meta Command[*MetaResponse]

	group    singleflight.Group
	mutex    sync.Mutex
	version  string
	resolved bool

	cache    Cache
	cacheKey string
	cacheTTL time.Duration
}

// NewDBVersionProvider wraps a meta command.
func NewDBVersionProvider(meta Command[*MetaResponse]) *DBVersionProvider {
	return &DBVersionProvider{meta: meta}
}

// WithCache shares the resolved version with other providers through cache under key.
// A nil cache is ignored.
func (p *DBVersionProvider) WithCache(cache Cache, key string, ttl time.Duration) *DBVersionProvider {
	if cache == nil {
		return p
	}

	if ttl <= 0 {
		ttl = constants.DefaultVersionCacheTTL
	}

	p.cache = cache
	p.cacheKey = "version:" + key
	p.cacheTTL = ttl

	return p
}

// Get returns the cached version, resolving it on first use.
func (p *DBVersionProvider) Get(ctx context.Context) string {
	return p.Refresh(ctx, false)
}

// Refresh re-fetches the version when force is set or nothing is cached yet.
// A failed forced refresh returns "" and keeps the previously cached version.
// Concurrent callers share one fetch; a caller whose ctx ends stops waiting and gets "".
func (p *DBVersionProvider) Refresh(ctx context.Context, force bool) string {
	if !force {
		if version, ok := p.cached(); ok {
			return version
		}
	}

	key := "resolve"
	if force {
		key = "refresh"
	}

	result := p.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.SharedFetchTimeout)
		defer cancel()

		return p.fetch(fetchCtx, force), nil
	})

	select {
	case <-ctx.Done():
		return ""
	case res := <-result:
		version, _ := res.Val.(string)

		return version
	}
}

func (p *DBVersionProvider) cached() (string, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.version, p.resolved
}

func (p *DBVersionProvider) fetch(ctx context.Context, force bool) string {
	if !force {
		if version, ok := p.cached(); ok {
			return version
		}

		if version, ok := p.fromCache(ctx); ok {
			p.store(version)

			return version
		}
	}

	meta, err := p.meta.Do(ctx)
	if err != nil || meta == nil || meta.Version == "" {
		return ""
	}

	p.store(meta.Version)
	p.toCache(ctx, meta.Version)

	return meta.Version
}

func (p *DBVersionProvider) store(version string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.version = version
	p.resolved = true
}

func (p *DBVersionProvider) fromCache(ctx context.Context) (string, bool) {
	if p.cache == nil {
		return "", false
	}

	entry, err := p.cache.Get(ctx, p.cacheKey)
	if err != nil || len(entry.Data) == 0 {
		return "", false
	}

	return string(entry.Data), true
}

func (p *DBVersionProvider) toCache(ctx context.Context, version string) {
	if p.cache == nil {
		return
	}

	_ = p.cache.Set(ctx, p.cacheKey, &CacheEntry{
		Data:      []byte(version),
		ExpiresAt: time.Now().Add(p.cacheTTL),
	})
}

// SupportResponse answers whether a server supports class-name namespaced endpoints.
type SupportResponse struct {
	Version  string
	Supports bool
	Warnings *VersionWarnings
}

// DBVersionSupport answers version-gated capability questions.
type DBVersionSupport struct {
	provider *DBVersionProvider
	logger   Logger
}

// NewDBVersionSupport creates a DBVersionSupport. A nil logger discards warnings.
func NewDBVersionSupport(provider *DBVersionProvider, logger Logger) *DBVersionSupport {
	if logger == nil {
		logger = noopLogger{}
	}

	return &DBVersionSupport{provider: provider, logger: logger}
}

// SupportsClassNameNamespacedEndpointsFuture resolves the server version and reports
// whether /objects/{className}/{id} style paths are available.
func (s *DBVersionSupport) SupportsClassNameNamespacedEndpointsFuture(ctx context.Context) *SupportResponse {
	version := s.provider.Get(ctx)

	return &SupportResponse{
		Version:  version,
		Supports: SupportsClassNameNamespacedEndpoints(version),
		Warnings: NewVersionWarnings(version, s.logger),
	}
}

// SupportsClassNameNamespacedEndpoints reports whether version is 1.14 or newer.
// Empty or unparsable versions are unsupported.
func SupportsClassNameNamespacedEndpoints(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return false
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}

	if major > constants.NamespacedEndpointsMajor {
		return true
	}

	return major == constants.NamespacedEndpointsMajor && minor >= constants.NamespacedEndpointsMinor
}
