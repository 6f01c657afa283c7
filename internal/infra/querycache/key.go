package querycache

import (
	"fmt"
	"strings"

	"agentctl/internal/domain"
)

// Key identifies one memoized read: a resource namespace plus the
// serialized filter parameters. All keys in a namespace share freshness
// policy and are invalidated together.
type Key struct {
	Namespace string
	Params    string
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Namespace
	}
	return k.Namespace + "?" + k.Params
}

// ListKey builds the cache key for a filtered collection read. The
// serialization is deterministic so equal filters always share a key.
func ListKey(namespace string, opts domain.ListOptions) Key {
	var parts []string
	if opts.AgentID != "" {
		parts = append(parts, "agentId="+opts.AgentID)
	}
	if opts.Label != "" {
		parts = append(parts, "label="+opts.Label)
	}
	if opts.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", opts.Limit))
	}
	if opts.Status != "" {
		parts = append(parts, "status="+string(opts.Status))
	}
	return Key{Namespace: namespace, Params: strings.Join(parts, "&")}
}

// DetailKey builds the cache key for a single-record read.
func DetailKey(namespace, id string) Key {
	return Key{Namespace: namespace + "/" + id}
}

// inNamespace reports whether the key belongs to the given resource
// namespace: the namespace itself (list keys) or any detail key under it.
func (k Key) inNamespace(namespace string) bool {
	return k.Namespace == namespace || strings.HasPrefix(k.Namespace, namespace+"/")
}
