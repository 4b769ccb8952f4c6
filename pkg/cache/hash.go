package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer names cache entries.
type Keyer interface {
	// HeuristicKey names the estimate of a heuristic solver for one state.
	HeuristicKey(solver string, source, target, units int) string

	// ResultKey names a solved search result.
	ResultKey(source, target int, opts ResultKeyOpts) string
}

// ResultKeyOpts are the search options that change a result.
type ResultKeyOpts struct {
	Heuristic     string `json:"heuristic"`
	MaxIterations int    `json:"max_iterations"`
	AcceptTies    bool   `json:"accept_ties"`
}

// DefaultKeyer produces readable heuristic keys and hashed result keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HeuristicKey returns "heuristic:<solver>:<source>:<target>:<units>".
func (DefaultKeyer) HeuristicKey(solver string, source, target, units int) string {
	return fmt.Sprintf("heuristic:%s:%d:%d:%d", solver, source, target, units)
}

// ResultKey returns "result:<hash>" over the start and the options.
func (DefaultKeyer) ResultKey(source, target int, opts ResultKeyOpts) string {
	return hashKey("result", source, target, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
