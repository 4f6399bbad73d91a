// Package ladder provides nonlinear four-stage ladder lowpass filters: a
// diode ladder ([Diode]) and a transistor ladder ([Transistor]).
//
// The saturating stages make each sample an implicit equation. Instead of
// Newton iteration the filters linearize every nonlinearity around the
// current state with a Padé approximation of tanh(x)/x and then solve the
// resulting linear system exactly:
//
//   - Transistor: the stages only feed forward apart from the global
//     feedback, so the output has a closed form and the other stage outputs
//     follow by substitution.
//   - Diode: neighbouring stages load each other, giving a tridiagonal
//     system with one feedback corner term, eliminated in a single sweep and
//     back-substituted.
//
// Denominators are kept away from zero, and integrator states are saturated
// through a tanh soft clip every sample. This keeps the loop bounded at
// extreme resonance; it is empirically stable rather than proven so.
//
// Both filters draw their states from a memory pool and follow the same
// lifecycle as the linear filters: New, Tick, setters, Reset, Free.
package ladder
