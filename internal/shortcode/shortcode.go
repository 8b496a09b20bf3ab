// Package shortcode generates memorable join codes of the form
// adjective-noun-NN, e.g. "brave-otter-42". Codes are convenience handles
// only; the game UUID stays the canonical identifier.
package shortcode

import (
	rand "math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var adjectives = []string{
	"amber", "bold", "brave", "bright", "brisk", "calm", "clever", "cosmic",
	"crimson", "dapper", "eager", "fancy", "fierce", "gentle", "golden",
	"happy", "humble", "jolly", "keen", "lively", "lucky", "mellow", "mighty",
	"noble", "plucky", "proud", "quick", "quiet", "rapid", "royal", "rustic",
	"silent", "silver", "smooth", "snappy", "sunny", "swift", "vivid",
	"witty", "zesty",
}

var nouns = []string{
	"badger", "bison", "camel", "cobra", "condor", "crane", "dingo",
	"falcon", "ferret", "gecko", "heron", "hornet", "ibex", "jackal",
	"jaguar", "koala", "lemur", "lynx", "macaw", "mantis", "marmot",
	"meerkat", "mongoose", "moose", "otter", "panda", "parrot", "puffin",
	"python", "raven", "salmon", "shark", "sparrow", "stork", "tapir",
	"toucan", "viper", "walrus", "wombat", "yak",
}

var codePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-[0-9]{2}$`)

// Generate returns a fresh adjective-noun-NN code from the given RNG.
func Generate(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString(adjectives[rng.IntN(len(adjectives))])
	b.WriteByte('-')
	b.WriteString(nouns[rng.IntN(len(nouns))])
	b.WriteByte('-')
	n := 10 + rng.IntN(90)
	b.WriteByte(byte('0' + n/10))
	b.WriteByte(byte('0' + n%10))
	return b.String()
}

// Fallback returns a collision-proof code derived from a fresh UUID, used
// when the generator cannot find an unclaimed word combination.
func Fallback() string {
	return uuid.NewString()[:8]
}

// Valid reports whether s looks like a generated code.
func Valid(s string) bool {
	return codePattern.MatchString(s)
}

// Normalize lowercases and trims a user-supplied code so lookups are
// case- and whitespace-insensitive.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
