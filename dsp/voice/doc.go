// Package voice implements an articulatory voice synthesizer: an LF-model
// glottal source ([Glottis]) driving a Kelly-Lochbaum waveguide model of
// the vocal and nasal tracts ([Tract]). [Voc] wires both together with
// aspiration and fricative noise and renders audio one block at a time.
//
// The tract is a chain of cylindrical sections. Each junction scatters the
// right- and left-going waves with a reflection coefficient derived from
// the neighbouring cross-sectional areas; the nasal branch joins through a
// three-port junction. Articulation moves section diameters towards target
// profiles at a bounded speed once per block, and reflection coefficients
// are interpolated across the block so coefficient updates do not click.
//
// Each travelling wave sample is scaled by 0.999 per step and the rendered
// output is hard clipped to [-1.5, 1.5]. Both are empirically tuned limits
// that keep the model bounded for every diameter configuration.
//
// All per-section arrays are allocated from a memory pool for the largest
// section count given at construction, so the tract length can change at
// run time without allocating.
package voice
