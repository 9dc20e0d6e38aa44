// Package blocks provides the compensator block-type registry.
//
// Each block type is described by a [Descriptor]: parameter metadata plus a
// closed-form complex frequency response evaluated on an angular-frequency
// grid. The four builtin primitives are:
//
//   - gain: H = K
//   - leadlag: H = (aTs+1)/(Ts+1)
//   - sos: H = K·wn² / (s² + 2ζwn·s + wn²)
//   - real_pole_zero: H = K·(s+wz)/(s+wp)
//
// New primitives are added by registering a descriptor; dispatch never
// changes. [Registry.Lookup] is the only read path.
package blocks
