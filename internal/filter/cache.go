package filter

import (
	"regexp"
	"sync"
)

// regexCache is the process-wide lazily-compiled regex cache. Guarded by a
// mutex held only for map mutation, never across compilation or matching
// (matching the regex-cache pattern used by the ruleset engine this was
// grounded on).
type regexCache struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

var globalRegexCache = &regexCache{cache: map[string]*regexp.Regexp{}}

func (c *regexCache) get(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	re, ok := c.cache[pattern]
	c.mu.Unlock()
	if ok {
		return re, nil
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache[pattern] = compiled
	c.mu.Unlock()
	return compiled, nil
}

func compileRegex(pattern string) (*regexp.Regexp, error) {
	return globalRegexCache.get(pattern)
}
