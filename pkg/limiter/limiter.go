// Package limiter provides a per-route token bucket rate limiter.
package limiter

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// LimiterIface abstracts bucket lookup so middleware stays decoupled from
// the keying strategy.
type LimiterIface interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) LimiterIface
}

// BucketRule configures one bucket: Key is a route prefix.
type BucketRule struct {
	Key          string
	FillInterval time.Duration
	Capacity     int64
	Quantum      int64
}

type MethodLimiter struct {
	buckets map[string]*ratelimit.Bucket
}

func NewMethodLimiter() LimiterIface {
	return &MethodLimiter{buckets: map[string]*ratelimit.Bucket{}}
}

// Key matches the longest configured prefix of the request path.
func (l *MethodLimiter) Key(c *gin.Context) string {
	path := c.Request.URL.Path
	match := ""
	for key := range l.buckets {
		if strings.HasPrefix(path, key) && len(key) > len(match) {
			match = key
		}
	}
	return match
}

func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	b, ok := l.buckets[key]
	return b, ok
}

func (l *MethodLimiter) AddBuckets(rules ...BucketRule) LimiterIface {
	for _, rule := range rules {
		if _, ok := l.buckets[rule.Key]; !ok {
			l.buckets[rule.Key] = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
		}
	}
	return l
}
