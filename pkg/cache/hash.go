package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// PuzzleKeyOpts holds every option that changes generated geometry.
type PuzzleKeyOpts struct {
	OriginX, OriginY float64
	Width, Height    float64
	Rows, Cols       int
	TargetPieces     int
	MaxPieces        int
	Mode             string
	Seed             uint64
	DepthJitter      float64
	ShiftJitter      float64
	OffsetDistance   float64
	OffsetTimeout    time.Duration
	ScatterStrength  float64
	DegeneratePolicy string
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string
	Labels bool
}

// Keyer derives cache keys.
type Keyer interface {
	// PuzzleKey identifies a generated document.
	PuzzleKey(opts PuzzleKeyOpts) string

	// ArtifactKey identifies one rendered format of a document, given the
	// document's content hash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) PuzzleKey(opts PuzzleKeyOpts) string {
	return hashKey(KeyTypePuzzle, opts)
}

func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, docHash, opts)
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
