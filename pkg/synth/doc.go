// Package synth converts scenario text into a Flow by way of a language model.
//
// The pipeline is: build prompt, call the ports.Generator once, extract the
// JSON region, normalize it. Any failure along the way degrades to Fallback,
// so Synthesize always returns a renderable Flow. The reason for a fallback
// is kept in the returned Diagnostic and fed to the configured hooks.
package synth
