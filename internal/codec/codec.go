// Package codec provides encode/decode interfaces for the persistence
// serialization pipeline. Codecs produce strings because the storage
// adapter contract is string-valued.
package codec

// Codec converts values to and from their stored string form.
type Codec interface {
	// Encode serializes v into its stored string form.
	Encode(v any) (string, error)
	// Decode deserializes raw into v (must be a pointer).
	Decode(raw string, v any) error
	// Name returns the codec identifier used for diagnostics.
	Name() string
}
