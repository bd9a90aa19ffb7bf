// Package light renders the side and logo LED domains.
//
// Each domain owns a Context advanced by an Animator on every loop
// iteration. Animation time is accumulated from the elapsed time of the
// loop and consumed at a per-mode per-speed rate, so the animation speed
// doesn't depend on the loop interval. All color math is 8-bit and
// truncating.
package light
