// Package stores provides the per-domain store implementations for the
// Halcyon player daemon: master volume, playback transport state and the
// now-playing track. Each store embeds state.Cache for the synchronization
// contract and adds only its own remote pull; each exposes its registration
// identity as a package-level state.Descriptor.
package stores
