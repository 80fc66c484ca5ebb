// Package frame runs a fixed, ordered sequence of phases once per frame.
//
// Every tick runs Setup, Read, Update and Render in that order. Each phase
// holds its own callbacks, either persistent (run every tick until
// cancelled) or one-shot (run once, then dropped). Work posted with Queue is
// drained at every phase boundary, so a long phase never holds off
// background updates for a whole frame.
//
// The scheduler owns the only tick subscription: the Driver is started once,
// lazily, by the first registration.
package frame
