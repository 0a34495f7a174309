// Package rotation owns the non-repeating content rotation: the durable
// state record (episode counter plus used catalog indices), the Episode
// value handed to the renderer and publisher, and the pure selector that
// samples without replacement and resets transparently at cycle boundaries.
//
// State is passed by value through Select and persisted exactly once per
// run via an atomic write; nothing here mutates shared in-memory state.
package rotation
